package wire

import (
	"fmt"

	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-treesync/treesync"
)

// FrameType identifies the kind of a frame on the stream.
type FrameType byte

const (
	// FrameTypeBatch carries a batch of messages.
	FrameTypeBatch FrameType = iota + 1
	// FrameTypeDone marks the end of a traversal.
	FrameTypeDone
)

func (t FrameType) String() string {
	switch t {
	case FrameTypeBatch:
		return "batch"
	case FrameTypeDone:
		return "done"
	}
	return fmt.Sprintf("<unknown %02x>", byte(t))
}

// Frame is the payload of a batch frame.
type Frame struct {
	Messages []treesync.Message
	Limits   Limits
}

var (
	_ scale.Encodable = &Frame{}
	_ scale.Decodable = &Frame{}
)

// EncodeScale implements scale.Encodable.
func (f *Frame) EncodeScale(enc *scale.Encoder) (total int, err error) {
	if len(f.Messages) == 0 {
		panic("BUG: Frame: empty batch")
	}
	if len(f.Messages) > f.Limits.MaxMessages {
		return 0, fmt.Errorf("too many messages in a batch: %d > %d", len(f.Messages), f.Limits.MaxMessages)
	}
	{
		n, err := scale.EncodeCompact32(enc, uint32(len(f.Messages)))
		if err != nil {
			return total, err
		}
		total += n
	}
	for _, m := range f.Messages {
		n, err := EncodeMessage(enc, m, f.Limits)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale.Decodable.
func (f *Frame) DecodeScale(dec *scale.Decoder) (total int, err error) {
	var count int
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		if field == 0 || uint64(field) > uint64(f.Limits.MaxMessages) {
			return total, fmt.Errorf("%w: bad message count %d", ErrBadMessage, field)
		}
		count = int(field)
	}
	f.Messages = make([]treesync.Message, count)
	for i := range f.Messages {
		m, n, err := DecodeMessage(dec, f.Limits)
		if err != nil {
			return total, fmt.Errorf("message %d: %w", i, err)
		}
		total += n
		f.Messages[i] = m
	}
	return total, nil
}
