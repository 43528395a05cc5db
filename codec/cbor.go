package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Inline message payloads are loosely typed values which must survive a trip to a peer
// that may be written in another language. They are encoded with CBOR using Core
// Deterministic Encoding, so the same value always produces the same bytes.
var (
	valueEncMode cbor.EncMode
	valueDecMode cbor.DecMode
)

func init() {
	var err error
	encOptions := cbor.CoreDetEncOptions()
	// enums and identifiers travel as their text form
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	// types like uuid.UUID implement both, binary takes precedence unless disabled
	encOptions.BinaryMarshaler = cbor.BinaryMarshalerNone
	valueEncMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	valueDecMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// MarshalValue encodes an inline value.
func MarshalValue(v any) ([]byte, error) {
	b, err := valueEncMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal value %T: %w", v, err)
	}
	return b, nil
}

// UnmarshalValue decodes an inline value. If v is a pointer to an empty interface,
// integers decode as uint64 or int64, floats as float64, arrays as []any and maps as
// map[string]any.
func UnmarshalValue(data []byte, v any) error {
	if err := valueDecMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	return nil
}
