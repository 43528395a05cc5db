package treesync

import "reflect"

// Reference marks a value to be shared by reference. It is returned from field getters
// passed to GetAndSend.
type Reference struct {
	Value any
}

// AsRef marks v to be sent by reference: the first occurrence of v within the peer
// connection carries its full payload, later ones only its id.
func AsRef(v any) Reference {
	return Reference{Value: v}
}

func unwrapRef(v any) (any, bool) {
	if r, ok := v.(Reference); ok {
		return r.Value, true
	}
	return v, false
}

// normalize turns typed nils and empty slices into untyped nil, so that absence can be
// checked with == nil.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
	case reflect.Slice:
		if rv.Len() == 0 {
			return nil
		}
	}
	return v
}

// identical reports whether a and b are the same value. Pointers are compared by
// address, other comparable values with ==, slices by backing array and length, maps
// by pointer. Both arguments must be normalized.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

func sameSlice[E any](a, b []E) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}
