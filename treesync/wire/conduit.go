package wire

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/spacemeshos/go-treesync/codec"
	"github.com/spacemeshos/go-treesync/treesync"
)

// ErrDone is returned by NextBatch when the peer has finished the traversal.
var ErrDone = errors.New("end of traversal")

type ConduitOption func(c *Conduit)

// WithLimits sets the limits on frames sent and received.
func WithLimits(l Limits) ConduitOption {
	return func(c *Conduit) {
		c.limits = l
	}
}

func WithLogger(log *zap.Logger) ConduitOption {
	return func(c *Conduit) {
		c.log = log
	}
}

type countingReader struct {
	r io.Reader
	n int
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += n
	return n, err
}

// Conduit transfers message batches over an ordered reliable stream. Each frame is a
// frame type byte followed by the scale-encoded payload.
// A Conduit is used by a single sender and a single receiver goroutine.
type Conduit struct {
	w      io.Writer
	r      *countingReader
	limits Limits
	log    *zap.Logger
	sent   int
}

var _ treesync.Conduit = &Conduit{}

// NewConduit creates a Conduit over the stream.
func NewConduit(stream io.ReadWriter, opts ...ConduitOption) *Conduit {
	c := &Conduit{
		w:      stream,
		r:      &countingReader{r: stream},
		limits: DefaultLimits(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.limits.MaxMessages <= 0 || c.limits.MaxValueSize <= 0 {
		panic("BUG: Conduit: bad limits")
	}
	return c
}

// BytesSent returns the number of bytes written to the stream.
func (c *Conduit) BytesSent() int {
	return c.sent
}

// BytesReceived returns the number of bytes read from the stream.
func (c *Conduit) BytesReceived() int {
	return c.r.n
}

func (c *Conduit) send(t FrameType, payload codec.Encodable) error {
	data := []byte{byte(t)}
	if payload != nil {
		b, err := codec.Encode(payload)
		if err != nil {
			return fmt.Errorf("encode %s frame: %w", t, err)
		}
		data = append(data, b...)
	}
	n, err := c.w.Write(data)
	c.sent += n
	if err != nil {
		return fmt.Errorf("write %s frame: %w", t, err)
	}
	return nil
}

// SendBatch implements treesync.Conduit. A batch larger than MaxMessages is split into
// several frames.
func (c *Conduit) SendBatch(batch []treesync.Message) error {
	for len(batch) > 0 {
		n := min(len(batch), c.limits.MaxMessages)
		if err := c.send(FrameTypeBatch, &Frame{Messages: batch[:n], Limits: c.limits}); err != nil {
			return err
		}
		c.log.Debug("sent batch", zap.Int("count", n))
		batch = batch[n:]
	}
	return nil
}

// SendDone notifies the peer that the traversal is complete.
func (c *Conduit) SendDone() error {
	return c.send(FrameTypeDone, nil)
}

func (c *Conduit) nextFrame() (FrameType, error) {
	var b [1]byte
	if _, err := io.ReadFull(c.r, b[:]); err != nil {
		return 0, err
	}
	t := FrameType(b[0])
	switch t {
	case FrameTypeBatch, FrameTypeDone:
		return t, nil
	default:
		return 0, fmt.Errorf("invalid frame code %02x", b[0])
	}
}

// NextBatch implements treesync.Conduit. It returns io.EOF if the stream ends
// cleanly before a frame starts and ErrDone if the peer has finished the traversal.
func (c *Conduit) NextBatch() ([]treesync.Message, error) {
	t, err := c.nextFrame()
	switch {
	case err != nil:
		return nil, err
	case t == FrameTypeDone:
		return nil, ErrDone
	}
	f := Frame{Limits: c.limits}
	if _, err := codec.DecodeFrom(c.r, &f); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("decode batch frame: %w", err)
	}
	c.log.Debug("received batch", zap.Int("count", len(f.Messages)))
	return f.Messages, nil
}

// ReceiveDone reads the frame marking the end of the traversal.
func (c *Conduit) ReceiveDone() error {
	t, err := c.nextFrame()
	switch {
	case errors.Is(err, io.EOF):
		return io.ErrUnexpectedEOF
	case err != nil:
		return err
	case t != FrameTypeDone:
		return fmt.Errorf("%w: expected end of traversal, got %s frame", ErrBadMessage, t)
	}
	return nil
}
