package treesync

//go:generate mockgen -typed -package=treesync -destination=./mocks.go -source=./interface.go

// Codec describes the fields of one kind of value in terms of queue primitives.
// SendFields is invoked after the value's own ADD or CHANGE message was queued and
// describes each field with SendField, SendList and friends. ReceiveFields mirrors it
// field by field and returns the reconstructed value. For a newly added value before is
// an empty shell of the registered type.
//
// A value added by reference has its shell registered before ReceiveFields runs, so
// back-references met while receiving its fields resolve to that shell. Types whose
// values can reach themselves through references must fill the shell in place and
// return it; a codec that builds a new value leaves such back-references pointing at the
// empty shell.
type Codec interface {
	SendFields(after any, q *SendQueue) error
	ReceiveFields(before any, q *ReceiveQueue) (any, error)
}

// Conduit transfers message batches to and from the peer.
type Conduit interface {
	// SendBatch sends a batch of messages to the peer.
	SendBatch(batch []Message) error
	// NextBatch returns the next non-empty batch of messages from the peer,
	// or io.EOF if the stream has ended.
	NextBatch() ([]Message, error)
}

// DrainFunc receives batches of messages produced by SendQueue. The batch is owned by
// the callee.
type DrainFunc func(batch []Message) error

// PullFunc supplies the next batch of messages to ReceiveQueue.
type PullFunc func() ([]Message, error)
