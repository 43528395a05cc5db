package treesync

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// DefaultBatchSize is the default number of messages per drained batch.
const DefaultBatchSize = 1000

type SendOption func(q *SendQueue)

// WithBatchSize sets the maximum number of messages per batch. A batch size of 1
// drains every message separately.
func WithBatchSize(n int) SendOption {
	return func(q *SendQueue) {
		q.batchSize = n
	}
}

// WithTrace makes the queue attach the current descent path to each message.
func WithTrace(trace bool) SendOption {
	return func(q *SendQueue) {
		q.trace = trace
	}
}

func WithSendLogger(log *zap.Logger) SendOption {
	return func(q *SendQueue) {
		q.log = log
	}
}

// SendQueue walks a (before, after) pair of trees and produces the messages describing
// the difference. Messages are buffered and handed to the drain function in batches.
// SendQueue is not safe for concurrent use.
type SendQueue struct {
	reg       *Registry
	refs      *RefTable
	drain     DrainFunc
	batchSize int
	trace     bool
	log       *zap.Logger
	batch     []Message
	// before is the before counterpart of the object whose fields are being sent
	before any
	path   []string
	sent   int
}

// NewSendQueue creates a SendQueue.
func NewSendQueue(reg *Registry, refs *RefTable, drain DrainFunc, opts ...SendOption) *SendQueue {
	q := &SendQueue{
		reg:       reg,
		refs:      refs,
		drain:     drain,
		batchSize: DefaultBatchSize,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.batchSize <= 0 {
		panic("BUG: SendQueue: bad batch size")
	}
	q.batch = make([]Message, 0, min(q.batchSize, DefaultBatchSize))
	return q
}

// Sent returns the number of messages queued so far.
func (q *SendQueue) Sent() int {
	return q.sent
}

func (q *SendQueue) put(msg Message) error {
	if q.trace {
		msg.Trace = q.tracePath()
	}
	q.batch = append(q.batch, msg)
	q.sent++
	if len(q.batch) >= q.batchSize {
		return q.Flush()
	}
	return nil
}

func (q *SendQueue) tracePath() string {
	if len(q.path) == 0 {
		return "/"
	}
	return "/" + strings.Join(q.path, "/")
}

// Flush drains the pending messages, if any.
func (q *SendQueue) Flush() error {
	if len(q.batch) == 0 {
		return nil
	}
	batch := slices.Clone(q.batch)
	q.batch = q.batch[:0]
	q.log.Debug("drain batch", zap.Int("count", len(batch)))
	if err := q.drain(batch); err != nil {
		return fmt.Errorf("drain: %w", err)
	}
	return nil
}

// SendRoot sends the difference between the root objects of two trees and flushes the
// queue. On error, the pending messages are discarded.
func (q *SendQueue) SendRoot(after, before any) error {
	if err := q.send(after, before, nil, false); err != nil {
		q.batch = q.batch[:0]
		q.before = nil
		q.path = q.path[:0]
		return err
	}
	return q.Flush()
}

// Send describes the change from before to after. If onChange is not nil, it is invoked
// to describe the fields of an added or changed object, otherwise the codec registered
// for the type of after is used. Values without a codec are sent inline.
func (q *SendQueue) Send(after, before any, onChange func(any) error) error {
	return q.send(after, before, onChange, false)
}

// Add describes a new object regardless of the current state of the peer.
func (q *SendQueue) Add(after any, onChange func(any) error) error {
	return q.add(normalize(after), onChange, false)
}

// GetAndSend extracts a field from parent, which is the after object currently being
// sent, and from its before counterpart and sends the change. The getter may return a
// value wrapped with AsRef to share it by reference.
func (q *SendQueue) GetAndSend(parent any, get func(any) any, onChange func(any) error) error {
	after, asRef := unwrapRef(get(parent))
	var before any
	if q.before != nil {
		before, _ = unwrapRef(get(q.before))
	}
	return q.send(after, before, onChange, asRef)
}

// SendList describes the change of a list. Elements are matched by the identity key.
func (q *SendQueue) SendList(after, before []any, key func(any) any, onChange func(any) error) error {
	return sendList(q, after, before, key, onChange, false)
}

func (q *SendQueue) send(after, before any, onChange func(any) error, asRef bool) error {
	after, afterRef := unwrapRef(after)
	before, _ = unwrapRef(before)
	asRef = asRef || afterRef
	after = normalize(after)
	before = normalize(before)
	switch {
	case identical(after, before):
		return q.put(Message{State: NoChange})
	case after == nil:
		return q.put(Message{State: Delete})
	case asRef || before == nil || reflect.TypeOf(after) != reflect.TypeOf(before):
		return q.add(after, onChange, asRef)
	}
	info := q.reg.lookup(after)
	msg := Message{State: Change}
	if info != nil {
		msg.ValueType = info.id
	}
	if isInline(info, onChange) {
		msg.Value = after
		return q.put(msg)
	}
	if err := q.put(msg); err != nil {
		return err
	}
	return q.descend(after, before, info, onChange)
}

func isInline(info *typeInfo, onChange func(any) error) bool {
	return onChange == nil && (info == nil || info.codec == nil)
}

func (q *SendQueue) add(after any, onChange func(any) error, asRef bool) error {
	if after == nil {
		return q.put(Message{State: Delete})
	}
	msg := Message{State: Add}
	if asRef {
		id, existing := q.refs.Assign(after)
		if existing {
			return q.put(Message{State: Add, Ref: id})
		}
		msg.Ref = id
	}
	info := q.reg.lookup(after)
	if info != nil {
		msg.ValueType = info.id
	}
	if isInline(info, onChange) {
		msg.Value = after
		return q.put(msg)
	}
	if msg.Ref != 0 && msg.ValueType == "" {
		// would be indistinguishable from a back-reference
		panic(fmt.Sprintf("BUG: SendQueue: %T shared by reference must be registered", after))
	}
	if err := q.put(msg); err != nil {
		return err
	}
	return q.descend(after, nil, info, onChange)
}

func (q *SendQueue) descend(after, before any, info *typeInfo, onChange func(any) error) error {
	saved := q.before
	q.before = before
	defer func() { q.before = saved }()
	if q.trace {
		name := fmt.Sprintf("%T", after)
		if info != nil {
			name = info.id
		}
		q.path = append(q.path, name)
		defer func() { q.path = q.path[:len(q.path)-1] }()
	}
	if onChange != nil {
		return onChange(after)
	}
	return info.codec.SendFields(after, q)
}

func sendList[E any](
	q *SendQueue,
	after, before []E,
	key func(E) any,
	onChange func(E) error,
	asRef bool,
) error {
	switch {
	case sameSlice(after, before):
		return q.put(Message{State: NoChange})
	case len(after) == 0:
		return q.put(Message{State: Delete})
	}
	// a missing before list is diffed as an empty one
	if err := q.put(Message{State: Change}); err != nil {
		return err
	}
	positions := Positions(before, after, key)
	if err := q.put(Message{State: Change, Value: positions}); err != nil {
		return err
	}
	f := wrapSend(onChange)
	for i, e := range after {
		var b any
		if n := positions[i]; n != AddedListItem {
			b = before[n]
		}
		if err := q.send(e, b, f, asRef); err != nil {
			return err
		}
	}
	return nil
}

func wrapSend[T any](f func(T) error) func(any) error {
	if f == nil {
		return nil
	}
	return func(v any) error {
		return f(v.(T))
	}
}

func beforeField[P, F any](q *SendQueue, get func(P) F) any {
	if p, ok := q.before.(P); ok {
		return get(p)
	}
	return nil
}

// SendField sends a field of parent, which is the after object currently being sent.
// It is intended to be used in codecs.
func SendField[P, F any](q *SendQueue, parent P, get func(P) F, onChange func(F) error) error {
	return q.send(get(parent), beforeField(q, get), wrapSend(onChange), false)
}

// SendFieldRef is like SendField, but shares the field value by reference.
func SendFieldRef[P, F any](q *SendQueue, parent P, get func(P) F, onChange func(F) error) error {
	return q.send(get(parent), beforeField(q, get), wrapSend(onChange), true)
}

// SendList sends a list field of parent. Elements are matched by the identity key.
func SendList[P, E any](
	q *SendQueue,
	parent P,
	get func(P) []E,
	key func(E) any,
	onChange func(E) error,
) error {
	return sendListField(q, parent, get, key, onChange, false)
}

// SendListRef is like SendList, but shares each element by reference.
func SendListRef[P, E any](
	q *SendQueue,
	parent P,
	get func(P) []E,
	key func(E) any,
	onChange func(E) error,
) error {
	return sendListField(q, parent, get, key, onChange, true)
}

func sendListField[P, E any](
	q *SendQueue,
	parent P,
	get func(P) []E,
	key func(E) any,
	onChange func(E) error,
	asRef bool,
) error {
	var before []E
	if p, ok := q.before.(P); ok {
		before = get(p)
	}
	return sendList(q, get(parent), before, key, onChange, asRef)
}
