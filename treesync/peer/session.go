// Package peer runs tree sync traversals between two peers connected by a conduit.
package peer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/spacemeshos/go-treesync/treesync"
)

// ErrSessionBroken is returned by a session that failed a traversal and wasn't reset.
var ErrSessionBroken = errors.New("sync session broken")

type SessionOption func(s *Session)

func WithConfig(cfg Config) SessionOption {
	return func(s *Session) {
		s.cfg = cfg
	}
}

func WithLogger(log *zap.Logger) SessionOption {
	return func(s *Session) {
		s.log = log
	}
}

// WithClock sets the clock used to measure traversals.
func WithClock(clock clockwork.Clock) SessionOption {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithID sets the session id. A random one is used by default.
func WithID(id uuid.UUID) SessionOption {
	return func(s *Session) {
		s.id = id
	}
}

type byteCounter interface {
	BytesSent() int
	BytesReceived() int
}

// Session is one side of a sync relationship. It owns the reference table that both
// peers keep in lockstep across traversals. Traversals on a session are serialized.
// After a failed traversal the tables of the peers can't be trusted anymore and the
// session refuses further traversals until Reset is called on both sides.
type Session struct {
	id    uuid.UUID
	reg   *treesync.Registry
	cfg   Config
	log   *zap.Logger
	clock clockwork.Clock

	mu     sync.Mutex
	refs   *treesync.RefTable
	broken error
}

// NewSession creates a session for the types registered in reg.
func NewSession(reg *treesync.Registry, opts ...SessionOption) *Session {
	s := &Session{
		id:    uuid.New(),
		reg:   reg,
		cfg:   DefaultConfig(),
		log:   zap.NewNop(),
		clock: clockwork.NewRealClock(),
		refs:  treesync.NewRefTable(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.Stringer("session", s.id))
	return s
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Refs returns the reference table of the session.
func (s *Session) Refs() *treesync.RefTable {
	return s.refs
}

// Reset clears the reference table and the broken state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs.Reset()
	s.broken = nil
	s.log.Debug("session reset")
}

func (s *Session) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if s.broken != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrSessionBroken, s.broken)
	}
	if s.cfg.Timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		return ctx, cancel, nil
	}
	ctx, cancel := context.WithCancel(ctx)
	return ctx, cancel, nil
}

func wireBytesOf(c Conduit, dir string) int {
	bc, ok := c.(byteCounter)
	switch {
	case !ok:
		return 0
	case dir == dirSend:
		return bc.BytesSent()
	default:
		return bc.BytesReceived()
	}
}

func (s *Session) finish(dir string, c Conduit, start time.Time, wireStart, count int, err error) error {
	elapsed := s.clock.Since(start)
	traversalDuration.WithLabelValues(dir).Observe(elapsed.Seconds())
	messages.WithLabelValues(dir).Add(float64(count))
	wireBytes.WithLabelValues(dir).Add(float64(wireBytesOf(c, dir) - wireStart))
	sent, received := s.refs.Len()
	if dir == dirSend {
		refTableSize.WithLabelValues(dir).Set(float64(sent))
	} else {
		refTableSize.WithLabelValues(dir).Set(float64(received))
	}
	if err != nil {
		traversals.WithLabelValues(dir, outcomeFail).Inc()
		s.broken = err
		s.log.Warn("traversal failed",
			zap.String("dir", dir),
			zap.Int("messages", count),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return err
	}
	traversals.WithLabelValues(dir, outcomeOK).Inc()
	s.log.Debug("traversal done",
		zap.String("dir", dir),
		zap.Int("messages", count),
		zap.Duration("duration", elapsed))
	return nil
}

// Send sends the difference between after and before to the peer and marks the end of
// the traversal. The context is checked before each batch is sent.
func (s *Session) Send(ctx context.Context, c Conduit, after, before any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	start := s.clock.Now()
	wireStart := wireBytesOf(c, dirSend)
	drain := func(batch []treesync.Message) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		batches.WithLabelValues(dirSend).Inc()
		return c.SendBatch(batch)
	}
	q := treesync.NewSendQueue(s.reg, s.refs, drain,
		treesync.WithBatchSize(s.cfg.BatchSize),
		treesync.WithTrace(s.cfg.Trace),
		treesync.WithSendLogger(s.log))
	err = q.SendRoot(after, before)
	if err == nil {
		err = c.SendDone()
	}
	return s.finish(dirSend, c, start, wireStart, q.Sent(), err)
}

// Receive applies the difference sent by the peer to before and returns the new tree.
// before must be equivalent to the tree the peer diffed against.
func (s *Session) Receive(ctx context.Context, c Conduit, before any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	start := s.clock.Now()
	wireStart := wireBytesOf(c, dirReceive)
	pull := func() ([]treesync.Message, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch, err := c.NextBatch()
		if err == nil {
			batches.WithLabelValues(dirReceive).Inc()
		}
		return batch, err
	}
	q := treesync.NewReceiveQueue(s.reg, s.refs, pull, treesync.WithReceiveLogger(s.log))
	after, err := q.ReceiveRoot(before)
	if err == nil {
		err = c.ReceiveDone()
	}
	if err := s.finish(dirReceive, c, start, wireStart, q.Received(), err); err != nil {
		return nil, err
	}
	return after, nil
}
