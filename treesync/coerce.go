package treesync

import (
	"encoding"
	"fmt"
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// Coerce converts an inline payload received from the wire to the type t.
// Payloads arrive loosely typed (numbers as uint64/int64/float64, structures as
// map[string]any), so the conversion tries in order: the exact type, numeric
// widening/narrowing, extraction from a structured payload, and finally pass-through
// for interface targets. A nil t means pass-through. Conversions that would lose
// information fail with ErrUnsupportedValueConversion.
func Coerce(v any, t reflect.Type) (any, error) {
	if v == nil || t == nil {
		return v, nil
	}
	vt := reflect.TypeOf(v)
	if vt == t {
		return v, nil
	}
	if t.Kind() == reflect.Interface {
		if vt.Implements(t) {
			return v, nil
		}
		return nil, unsupported(v, t)
	}
	rv := reflect.ValueOf(v)
	if isNumeric(vt.Kind()) && isNumeric(t.Kind()) {
		return convertNumeric(rv, t)
	}
	if vt.Kind() == t.Kind() && vt.ConvertibleTo(t) && vt.Kind() != reflect.Slice {
		// named types with the same underlying scalar type
		return rv.Convert(t).Interface(), nil
	}
	switch pv := v.(type) {
	case map[string]any:
		if isScalar(t.Kind()) {
			if inner, found := pv["value"]; found {
				return Coerce(inner, t)
			}
			return nil, unsupported(v, t)
		}
		return decodeStructured(pv, t)
	case string:
		if u, ok := fromText([]byte(pv), t); ok {
			return u.value, u.err
		}
	case []byte:
		if t.Kind() == reflect.String {
			return reflect.ValueOf(string(pv)).Convert(t).Interface(), nil
		}
		if u, ok := fromText(pv, t); ok {
			return u.value, u.err
		}
	}
	if vt.Kind() == reflect.Slice && t.Kind() == reflect.Slice {
		return convertSlice(rv, t)
	}
	return nil, unsupported(v, t)
}

// CoerceTo is Coerce with the target type given as a type parameter.
func CoerceTo[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	c, err := Coerce(v, reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	t, ok := c.(T)
	if !ok {
		return zero, unsupported(v, reflect.TypeOf((*T)(nil)).Elem())
	}
	return t, nil
}

func unsupported(v any, t reflect.Type) error {
	return fmt.Errorf("%w: %T to %s", ErrUnsupportedValueConversion, v, t)
}

func isNumeric(k reflect.Kind) bool {
	return isSigned(k) || isUnsigned(k) || k == reflect.Float32 || k == reflect.Float64
}

func isSigned(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUnsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isScalar(k reflect.Kind) bool {
	return isNumeric(k) || k == reflect.String || k == reflect.Bool
}

func convertNumeric(rv reflect.Value, t reflect.Type) (any, error) {
	out := reflect.New(t).Elem()
	src := rv.Kind()
	switch {
	case isSigned(t.Kind()):
		var i int64
		switch {
		case isSigned(src):
			i = rv.Int()
		case isUnsigned(src):
			u := rv.Uint()
			if u > math.MaxInt64 {
				return nil, unsupported(rv.Interface(), t)
			}
			i = int64(u)
		default:
			f := rv.Float()
			if f != math.Trunc(f) || f >= 1<<63 || f < math.MinInt64 {
				return nil, unsupported(rv.Interface(), t)
			}
			i = int64(f)
		}
		if out.OverflowInt(i) {
			return nil, unsupported(rv.Interface(), t)
		}
		out.SetInt(i)
	case isUnsigned(t.Kind()):
		var u uint64
		switch {
		case isSigned(src):
			i := rv.Int()
			if i < 0 {
				return nil, unsupported(rv.Interface(), t)
			}
			u = uint64(i)
		case isUnsigned(src):
			u = rv.Uint()
		default:
			f := rv.Float()
			if f != math.Trunc(f) || f < 0 || f >= 1<<64 {
				return nil, unsupported(rv.Interface(), t)
			}
			u = uint64(f)
		}
		if out.OverflowUint(u) {
			return nil, unsupported(rv.Interface(), t)
		}
		out.SetUint(u)
	default:
		var f float64
		switch {
		case isSigned(src):
			f = float64(rv.Int())
		case isUnsigned(src):
			f = float64(rv.Uint())
		default:
			f = rv.Float()
		}
		if out.OverflowFloat(f) {
			return nil, unsupported(rv.Interface(), t)
		}
		out.SetFloat(f)
	}
	return out.Interface(), nil
}

type textResult struct {
	value any
	err   error
}

// fromText decodes text into t if t (or *t) implements encoding.TextUnmarshaler.
// This covers enums sent by name and identifiers such as UUIDs.
func fromText(text []byte, t reflect.Type) (textResult, bool) {
	var ptr reflect.Value
	switch {
	case reflect.PointerTo(t).Implements(textUnmarshalerType):
		ptr = reflect.New(t)
	case t.Kind() == reflect.Pointer && t.Implements(textUnmarshalerType):
		ptr = reflect.New(t.Elem())
	default:
		return textResult{}, false
	}
	if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText(text); err != nil {
		return textResult{err: fmt.Errorf("%w: %q to %s: %w", ErrUnsupportedValueConversion, text, t, err)}, true
	}
	if t.Kind() == reflect.Pointer {
		return textResult{value: ptr.Interface()}, true
	}
	return textResult{value: ptr.Elem().Interface()}, true
}

func decodeStructured(m map[string]any, t reflect.Type) (any, error) {
	st := t
	if t.Kind() == reflect.Pointer {
		st = t.Elem()
	}
	if st.Kind() != reflect.Struct && st.Kind() != reflect.Map {
		return nil, unsupported(m, t)
	}
	out := reflect.New(st)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.TextUnmarshallerHookFunc(),
		Result:     out.Interface(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedValueConversion, t, err)
	}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedValueConversion, t, err)
	}
	if t.Kind() == reflect.Pointer {
		return out.Interface(), nil
	}
	return out.Elem().Interface(), nil
}

func convertSlice(rv reflect.Value, t reflect.Type) (any, error) {
	out := reflect.MakeSlice(t, rv.Len(), rv.Len())
	for i := 0; i < rv.Len(); i++ {
		e, err := Coerce(rv.Index(i).Interface(), t.Elem())
		if err != nil {
			return nil, err
		}
		if e != nil {
			out.Index(i).Set(reflect.ValueOf(e))
		}
	}
	return out.Interface(), nil
}
