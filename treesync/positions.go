package treesync

import (
	"fmt"
	"reflect"
)

// Positions computes the position array of after relative to before: for each after
// element, the index of the before element with the same identity key, or
// AddedListItem if there is none. If several before elements share a key, the first one
// wins. A nil key compares the elements themselves, which must then be comparable.
func Positions[E any](before, after []E, key func(E) any) []int {
	if key == nil {
		key = func(e E) any { return e }
	}
	index := make(map[any]int, len(before))
	for i, e := range before {
		k := key(e)
		if _, found := index[k]; !found {
			index[k] = i
		}
	}
	positions := make([]int, len(after))
	for i, e := range after {
		if n, found := index[key(e)]; found {
			positions[i] = n
		} else {
			positions[i] = AddedListItem
		}
	}
	return positions
}

// decodePositions converts the payload of a position message to []int and checks that
// every entry refers to the before list.
func decodePositions(v any, beforeLen int) ([]int, error) {
	var positions []int
	switch pv := v.(type) {
	case []int:
		positions = pv
	case nil:
		return nil, fmt.Errorf("%w: missing position array", ErrMalformedListEncoding)
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice {
			return nil, fmt.Errorf("%w: position array is %T", ErrMalformedListEncoding, v)
		}
		positions = make([]int, rv.Len())
		for i := range positions {
			e := rv.Index(i).Interface()
			if e == nil {
				return nil, fmt.Errorf("%w: position %d is nil", ErrMalformedListEncoding, i)
			}
			n, err := CoerceTo[int](e)
			if err != nil {
				return nil, fmt.Errorf("%w: position %d: %w", ErrMalformedListEncoding, i, err)
			}
			positions[i] = n
		}
	}
	for i, n := range positions {
		if n < AddedListItem || n >= beforeLen {
			return nil, fmt.Errorf("%w: position %d refers to index %d of %d",
				ErrMalformedListEncoding, i, n, beforeLen)
		}
	}
	return positions, nil
}
