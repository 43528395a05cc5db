// Package wire implements the binary encoding of treesync messages and a conduit
// transferring message batches over a stream.
package wire

import (
	"errors"
	"fmt"

	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-treesync/codec"
	"github.com/spacemeshos/go-treesync/treesync"
)

const (
	maxTypeIDSize = 1024
	// MaxValueSize is the hard limit on the size of an encoded inline value.
	MaxValueSize = 16 << 20
	maxTraceSize = 64 << 10
)

const (
	hasValueType = 1 << iota
	hasValue
	hasRef
	hasTrace
)

var (
	// ErrValueTooLarge is returned when an inline value exceeds the configured limit.
	ErrValueTooLarge = errors.New("value too large")
	// ErrBadMessage is returned for messages that can't be decoded.
	ErrBadMessage = errors.New("bad message")
)

// Limits bound the resources used to decode a frame.
type Limits struct {
	MaxMessages  int
	MaxValueSize int
}

// DefaultLimits returns the default decoding limits.
func DefaultLimits() Limits {
	return Limits{
		MaxMessages:  65536,
		MaxValueSize: 1 << 20,
	}
}

// EncodeMessage encodes a single message. The layout is: state byte, presence bitmask
// byte, then the present fields in order: type id (byte slice), value (CBOR, byte slice),
// ref (compact), trace (CBOR, byte slice).
func EncodeMessage(enc *scale.Encoder, m treesync.Message, limits Limits) (total int, err error) {
	var (
		flags      byte
		value, trc []byte
	)
	if m.ValueType != "" {
		flags |= hasValueType
	}
	if m.Value != nil {
		flags |= hasValue
		if value, err = codec.MarshalValue(m.Value); err != nil {
			return 0, err
		}
		if len(value) > limits.MaxValueSize {
			return 0, fmt.Errorf("%w: %d bytes", ErrValueTooLarge, len(value))
		}
	}
	if m.Ref < 0 {
		panic("BUG: EncodeMessage: negative ref")
	} else if m.Ref != 0 {
		flags |= hasRef
	}
	if m.Trace != nil {
		flags |= hasTrace
		if trc, err = codec.MarshalValue(m.Trace); err != nil {
			return 0, err
		}
	}
	{
		n, err := scale.EncodeByte(enc, byte(m.State))
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByte(enc, flags)
		if err != nil {
			return total, err
		}
		total += n
	}
	if flags&hasValueType != 0 {
		n, err := scale.EncodeByteSliceWithLimit(enc, []byte(m.ValueType), maxTypeIDSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	if flags&hasValue != 0 {
		n, err := scale.EncodeByteSliceWithLimit(enc, value, MaxValueSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	if flags&hasRef != 0 {
		n, err := scale.EncodeCompact64(enc, uint64(m.Ref))
		if err != nil {
			return total, err
		}
		total += n
	}
	if flags&hasTrace != 0 {
		n, err := scale.EncodeByteSliceWithLimit(enc, trc, maxTraceSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeMessage decodes a message encoded by EncodeMessage. Inline values are decoded
// loosely typed: integers as uint64 or int64, arrays as []any, maps as map[string]any.
func DecodeMessage(dec *scale.Decoder, limits Limits) (m treesync.Message, total int, err error) {
	var flags byte
	{
		field, n, err := scale.DecodeByte(dec)
		if err != nil {
			return m, total, err
		}
		total += n
		m.State = treesync.State(field)
	}
	{
		field, n, err := scale.DecodeByte(dec)
		if err != nil {
			return m, total, err
		}
		total += n
		flags = field
	}
	if flags&^(hasValueType|hasValue|hasRef|hasTrace) != 0 {
		return m, total, fmt.Errorf("%w: unknown flags %02x", ErrBadMessage, flags)
	}
	if flags&hasValueType != 0 {
		field, n, err := scale.DecodeByteSliceWithLimit(dec, maxTypeIDSize)
		if err != nil {
			return m, total, err
		}
		total += n
		if len(field) == 0 {
			return m, total, fmt.Errorf("%w: empty type id", ErrBadMessage)
		}
		m.ValueType = string(field)
	}
	if flags&hasValue != 0 {
		field, n, err := scale.DecodeByteSliceWithLimit(dec, MaxValueSize)
		if err != nil {
			return m, total, err
		}
		total += n
		if len(field) > limits.MaxValueSize {
			return m, total, fmt.Errorf("%w: %d bytes", ErrValueTooLarge, len(field))
		}
		if err := codec.UnmarshalValue(field, &m.Value); err != nil {
			return m, total, fmt.Errorf("%w: %w", ErrBadMessage, err)
		}
		if m.Value == nil {
			return m, total, fmt.Errorf("%w: null value", ErrBadMessage)
		}
	}
	if flags&hasRef != 0 {
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return m, total, err
		}
		total += n
		if field == 0 || field > uint64(maxRef) {
			return m, total, fmt.Errorf("%w: bad ref %d", ErrBadMessage, field)
		}
		m.Ref = int(field)
	}
	if flags&hasTrace != 0 {
		field, n, err := scale.DecodeByteSliceWithLimit(dec, maxTraceSize)
		if err != nil {
			return m, total, err
		}
		total += n
		if err := codec.UnmarshalValue(field, &m.Trace); err != nil {
			return m, total, fmt.Errorf("%w: trace: %w", ErrBadMessage, err)
		}
	}
	return m, total, nil
}

const maxRef = int(^uint(0) >> 1)
