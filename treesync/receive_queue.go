package treesync

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"go.uber.org/zap"
)

type ReceiveOption func(q *ReceiveQueue)

// WithBatch pre-delivers a batch of messages. It is consumed before anything is
// pulled.
func WithBatch(batch []Message) ReceiveOption {
	return func(q *ReceiveQueue) {
		q.buf = batch
	}
}

func WithReceiveLogger(log *zap.Logger) ReceiveOption {
	return func(q *ReceiveQueue) {
		q.log = log
	}
}

// ReceiveQueue consumes the messages produced by a SendQueue on the peer and rebuilds
// the after tree from the local copy of the before tree.
// ReceiveQueue is not safe for concurrent use.
type ReceiveQueue struct {
	reg      *Registry
	refs     *RefTable
	pull     PullFunc
	log      *zap.Logger
	buf      []Message
	path     []string
	received int
	trace    any
}

// NewReceiveQueue creates a ReceiveQueue. The pull function is invoked each time the
// buffered messages are exhausted. A nil pull function means that all the messages are
// supplied using WithBatch.
func NewReceiveQueue(reg *Registry, refs *RefTable, pull PullFunc, opts ...ReceiveOption) *ReceiveQueue {
	q := &ReceiveQueue{
		reg:  reg,
		refs: refs,
		pull: pull,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Received returns the number of messages consumed so far.
func (q *ReceiveQueue) Received() int {
	return q.received
}

func (q *ReceiveQueue) take() (Message, error) {
	for len(q.buf) == 0 {
		if q.pull == nil {
			return Message{}, q.fail(io.ErrUnexpectedEOF)
		}
		batch, err := q.pull()
		switch {
		case errors.Is(err, io.EOF):
			return Message{}, q.fail(io.ErrUnexpectedEOF)
		case err != nil:
			return Message{}, fmt.Errorf("pull: %w", err)
		case len(batch) == 0:
			return Message{}, q.fail(io.ErrUnexpectedEOF)
		}
		q.log.Debug("pulled batch", zap.Int("count", len(batch)))
		q.buf = batch
	}
	msg := q.buf[0]
	q.buf = q.buf[1:]
	q.received++
	if msg.Trace != nil {
		q.trace = msg.Trace
	}
	return msg, nil
}

// fail annotates an error with the current descent path.
func (q *ReceiveQueue) fail(err error) error {
	where := "/" + strings.Join(q.path, "/")
	if q.trace != nil {
		return fmt.Errorf("at %s (sender %v): %w", where, q.trace, err)
	}
	return fmt.Errorf("at %s: %w", where, err)
}

// Done returns an error if there are unconsumed messages left in the buffer.
func (q *ReceiveQueue) Done() error {
	if len(q.buf) != 0 {
		return fmt.Errorf("%w: %d trailing messages starting with %s",
			ErrUnexpectedState, len(q.buf), q.buf[0])
	}
	return nil
}

// ReceiveRoot receives the root object of a tree and checks that the whole message
// stream was consumed.
func (q *ReceiveQueue) ReceiveRoot(before any) (any, error) {
	after, err := q.receive(before, nil, nil)
	if err != nil {
		q.buf = nil
		q.path = q.path[:0]
		return nil, err
	}
	if err := q.Done(); err != nil {
		return nil, err
	}
	return after, nil
}

// Receive mirrors SendQueue.Send. If onChange is not nil, it is invoked to receive the
// fields of an added or changed object, with before being the previous value or an
// empty instance of the added type. Otherwise the codec registered for the type of
// before is used, or the inline value is converted to the type of before.
func (q *ReceiveQueue) Receive(before any, onChange func(any) (any, error)) (any, error) {
	return q.receive(before, onChange, nil)
}

// ReceiveList mirrors SendQueue.SendList.
func (q *ReceiveQueue) ReceiveList(before []any, onChange func(any) (any, error)) ([]any, error) {
	return ReceiveList(q, before, onChange)
}

func (q *ReceiveQueue) receive(before any, onChange, mapping func(any) (any, error)) (any, error) {
	before = normalize(before)
	msg, err := q.take()
	if err != nil {
		return nil, err
	}
	switch msg.State {
	case NoChange:
		return before, nil
	case Delete:
		return nil, nil
	case Add:
		if msg.IsBackReference() {
			v, found := q.refs.Lookup(msg.Ref)
			if !found {
				return nil, q.fail(fmt.Errorf("%w: %d", ErrUnknownReference, msg.Ref))
			}
			return v, nil
		}
		before = nil
		if msg.ValueType != "" && msg.Value == nil {
			if before, err = q.reg.New(msg.ValueType); err != nil {
				return nil, q.fail(err)
			}
			if msg.Ref != 0 {
				q.refs.Register(msg.Ref, before)
			}
		}
	case Change:
	default:
		return nil, q.fail(fmt.Errorf("%w: %s", ErrUnexpectedState, msg.State))
	}
	after, err := q.change(msg, before, onChange, mapping)
	if msg.State == Add && msg.Ref != 0 {
		if err != nil || after == nil {
			q.refs.Forget(msg.Ref)
		} else {
			q.refs.Register(msg.Ref, after)
		}
	}
	if err != nil {
		return nil, err
	}
	return after, nil
}

func (q *ReceiveQueue) change(msg Message, before any, onChange, mapping func(any) (any, error)) (any, error) {
	var (
		v   any
		err error
	)
	info := q.reg.lookup(before)
	switch {
	case onChange != nil:
		v, err = q.descend(msg, before, onChange)
	case msg.Value == nil && info != nil && info.codec != nil:
		v, err = q.descend(msg, before, func(b any) (any, error) {
			return info.codec.ReceiveFields(b, q)
		})
	case msg.Value == nil:
		return nil, q.fail(fmt.Errorf("%w: %s without a value for %T", ErrUnexpectedState, msg.State, before))
	case mapping != nil:
		v, err = q.value(msg, nil)
	default:
		v, err = q.value(msg, before)
	}
	if err != nil || mapping == nil {
		return normalize(v), err
	}
	if v, err = mapping(v); err != nil {
		return nil, q.fail(err)
	}
	return normalize(v), nil
}

func (q *ReceiveQueue) descend(msg Message, before any, f func(any) (any, error)) (any, error) {
	name := msg.ValueType
	if name == "" {
		name = fmt.Sprintf("%T", before)
	}
	q.path = append(q.path, name)
	defer func() { q.path = q.path[:len(q.path)-1] }()
	return f(before)
}

// value converts an inline value to the type named by the message or, failing that, to
// the type of before.
func (q *ReceiveQueue) value(msg Message, before any) (any, error) {
	var t reflect.Type
	switch {
	case msg.ValueType != "":
		var found bool
		if t, found = q.reg.TypeFromID(msg.ValueType); !found {
			return nil, q.fail(fmt.Errorf("%w: %q", ErrTypeIdentifierUnresolved, msg.ValueType))
		}
	case before != nil:
		t = reflect.TypeOf(before)
	}
	v, err := Coerce(msg.Value, t)
	if err != nil {
		return nil, q.fail(err)
	}
	return v, nil
}

func wrapReceive[T any](f func(T) (T, error)) func(any) (any, error) {
	if f == nil {
		return nil
	}
	return func(v any) (any, error) {
		t, err := CoerceTo[T](v)
		if err != nil {
			return nil, err
		}
		r, err := f(t)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

// Receive mirrors SendField and SendFieldRef, converting the received value to T.
func Receive[T any](q *ReceiveQueue, before T, onChange func(T) (T, error)) (T, error) {
	v, err := q.receive(before, wrapReceive(onChange), nil)
	if err != nil {
		var zero T
		return zero, err
	}
	t, err := CoerceTo[T](v)
	if err != nil {
		return t, q.fail(err)
	}
	return t, nil
}

// ReceiveAndGet receives a value of type U, as it was sent by the peer, and maps it to
// the local representation T. The mapping is only applied to added or changed values.
func ReceiveAndGet[T, U any](q *ReceiveQueue, before T, mapping func(U) (T, error)) (T, error) {
	v, err := q.receive(before, nil, func(raw any) (any, error) {
		u, err := CoerceTo[U](raw)
		if err != nil {
			return nil, err
		}
		t, err := mapping(u)
		if err != nil {
			return nil, err
		}
		return t, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, err := CoerceTo[T](v)
	if err != nil {
		return t, q.fail(err)
	}
	return t, nil
}

// ReceiveList mirrors SendList and SendListRef.
func ReceiveList[E any](q *ReceiveQueue, before []E, onChange func(E) (E, error)) ([]E, error) {
	msg, err := q.take()
	if err != nil {
		return nil, err
	}
	switch msg.State {
	case NoChange:
		return before, nil
	case Delete:
		return nil, nil
	case Add:
		before = nil
	case Change:
	default:
		return nil, q.fail(fmt.Errorf("%w: list %s", ErrUnexpectedState, msg.State))
	}
	pm, err := q.take()
	if err != nil {
		return nil, err
	}
	if pm.State != Change {
		return nil, q.fail(fmt.Errorf("%w: position message is %s", ErrMalformedListEncoding, pm.State))
	}
	positions, err := decodePositions(pm.Value, len(before))
	if err != nil {
		return nil, q.fail(err)
	}
	f := wrapReceive(onChange)
	after := make([]E, len(positions))
	for i, n := range positions {
		var b any
		if n != AddedListItem {
			b = before[n]
		}
		v, err := q.receive(b, f, nil)
		if err != nil {
			return nil, err
		}
		if after[i], err = CoerceTo[E](v); err != nil {
			return nil, q.fail(err)
		}
	}
	return after, nil
}
