package peer

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/go-treesync/treesync"
	"github.com/spacemeshos/go-treesync/treesync/wire"
)

type label struct {
	Text string
}

type node struct {
	Name     string
	Weight   int
	Label    *label
	Children []*node
}

func nodeKey(n *node) any { return n.Name }

var nodeCodec = treesync.CodecFuncs[*node]{
	Send: func(after *node, q *treesync.SendQueue) error {
		if err := treesync.SendField(q, after, func(n *node) string { return n.Name }, nil); err != nil {
			return err
		}
		if err := treesync.SendField(q, after, func(n *node) int { return n.Weight }, nil); err != nil {
			return err
		}
		if err := treesync.SendFieldRef(q, after, func(n *node) *label { return n.Label }, nil); err != nil {
			return err
		}
		return treesync.SendList(q, after, func(n *node) []*node { return n.Children }, nodeKey, nil)
	},
	Receive: func(before *node, q *treesync.ReceiveQueue) (*node, error) {
		name, err := treesync.Receive(q, before.Name, nil)
		if err != nil {
			return nil, err
		}
		weight, err := treesync.Receive(q, before.Weight, nil)
		if err != nil {
			return nil, err
		}
		lbl, err := treesync.Receive(q, before.Label, nil)
		if err != nil {
			return nil, err
		}
		children, err := treesync.ReceiveList(q, before.Children, nil)
		if err != nil {
			return nil, err
		}
		return &node{Name: name, Weight: weight, Label: lbl, Children: children}, nil
	},
}

func testRegistry() *treesync.Registry {
	reg := treesync.NewRegistry()
	treesync.RegisterType[*node](reg, "node", nodeCodec)
	treesync.RegisterType[*label](reg, "label", nil)
	return reg
}

func newSession(t *testing.T, opts ...SessionOption) *Session {
	opts = append([]SessionOption{WithLogger(zaptest.NewLogger(t))}, opts...)
	return NewSession(testRegistry(), opts...)
}

// transfer syncs after from a to b where each side holds its own copy of the
// previous tree.
func transfer(t *testing.T, a, b *Session, after, before, peerBefore *node) *node {
	t.Helper()
	r, w := io.Pipe()
	src := wire.NewConduit(readWriter{Reader: strings.NewReader(""), Writer: w})
	dst := wire.NewConduit(readWriter{Reader: r, Writer: io.Discard})
	var eg errgroup.Group
	eg.Go(func() error {
		err := a.Send(context.Background(), src, after, before)
		w.CloseWithError(err)
		return err
	})
	got, err := b.Receive(context.Background(), dst, peerBefore)
	r.CloseWithError(err)
	require.NoError(t, err)
	require.NoError(t, eg.Wait())
	if got == nil {
		return nil
	}
	return got.(*node)
}

func sampleTree() *node {
	shared := &label{Text: "shared"}
	return &node{
		Name:  "root",
		Label: shared,
		Children: []*node{
			{Name: "a", Weight: 1, Label: shared},
			{Name: "b", Weight: -2},
		},
	}
}

func TestPipe(t *testing.T) {
	a := newSession(t)
	b := newSession(t)
	tree := sampleTree()
	got, err := Pipe(context.Background(), a, b, tree, nil)
	require.NoError(t, err)
	require.Equal(t, tree, got)
	require.NotSame(t, tree, got)
	sent, _ := a.Refs().Len()
	_, received := b.Refs().Len()
	require.Equal(t, 1, sent)
	require.Equal(t, 1, received)
}

func TestSuccessiveTraversals(t *testing.T) {
	a := newSession(t)
	b := newSession(t)
	v1 := sampleTree()
	got1 := transfer(t, a, b, v1, nil, nil)
	require.Equal(t, v1, got1)
	require.Same(t, got1.Label, got1.Children[0].Label)

	v2 := *v1
	v2.Children = append([]*node{{Name: "c", Label: v1.Label}}, v1.Children[1:]...)
	got2 := transfer(t, a, b, &v2, v1, got1)
	require.Equal(t, &v2, got2)
	// unchanged subtrees and shared values are preserved on the receiving side
	require.Same(t, got1.Children[1], got2.Children[1])
	require.Same(t, got1.Label, got2.Label)
	require.Same(t, got1.Label, got2.Children[0].Label)

	got3 := transfer(t, a, b, &v2, &v2, got2)
	require.Same(t, got2, got3)

	require.Nil(t, transfer(t, a, b, nil, &v2, got2))
}

func TestPipeSendFailureBreaksBothSides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxValueSize = 16
	a := newSession(t, WithConfig(cfg))
	b := newSession(t)
	tree := &node{Name: "root", Label: &label{Text: strings.Repeat("x", 64)}}
	failed := testutil.ToFloat64(traversals.WithLabelValues(dirReceive, outcomeFail))

	_, err := Pipe(context.Background(), a, b, tree, nil)
	require.ErrorIs(t, err, wire.ErrValueTooLarge)
	require.Equal(t, failed+1, testutil.ToFloat64(traversals.WithLabelValues(dirReceive, outcomeFail)))

	_, err = Pipe(context.Background(), a, b, tree, nil)
	require.ErrorIs(t, err, ErrSessionBroken)

	a.Reset()
	b.Reset()
	a.cfg = DefaultConfig()
	got, err := Pipe(context.Background(), a, b, tree, nil)
	require.NoError(t, err)
	require.Equal(t, tree, got)
}

func TestReceiveBroken(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := NewMockConduit(ctrl)
	s := newSession(t)
	errPull := errors.New("connection reset")

	c.EXPECT().NextBatch().Return(nil, errPull)
	_, err := s.Receive(context.Background(), c, nil)
	require.ErrorIs(t, err, errPull)

	_, err = s.Receive(context.Background(), c, nil)
	require.ErrorIs(t, err, ErrSessionBroken)
	require.ErrorIs(t, err, errPull)

	s.Reset()
	c.EXPECT().NextBatch().Return([]treesync.Message{{State: treesync.Delete}}, nil)
	c.EXPECT().ReceiveDone().Return(nil)
	got, err := s.Receive(context.Background(), c, &node{Name: "x"})
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestReceiveTrailingMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := NewMockConduit(ctrl)
	s := newSession(t)
	c.EXPECT().NextBatch().Return([]treesync.Message{
		{State: treesync.NoChange},
		{State: treesync.NoChange},
	}, nil)
	_, err := s.Receive(context.Background(), c, nil)
	require.ErrorIs(t, err, treesync.ErrUnexpectedState)
}

func TestReceiveMissingDone(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := NewMockConduit(ctrl)
	s := newSession(t)
	c.EXPECT().NextBatch().Return([]treesync.Message{{State: treesync.NoChange}}, nil)
	c.EXPECT().ReceiveDone().Return(wire.ErrBadMessage)
	_, err := s.Receive(context.Background(), c, nil)
	require.ErrorIs(t, err, wire.ErrBadMessage)
	_, err = s.Receive(context.Background(), c, nil)
	require.ErrorIs(t, err, ErrSessionBroken)
}

func TestSendCanceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := NewMockConduit(ctrl)
	s := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Send(ctx, c, sampleTree(), nil)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, s.Send(context.Background(), c, sampleTree(), nil), ErrSessionBroken)
}

func TestSendTrace(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := NewMockConduit(ctrl)
	cfg := DefaultConfig()
	cfg.Trace = true
	cfg.BatchSize = 2
	s := newSession(t, WithConfig(cfg))
	var msgs []treesync.Message
	c.EXPECT().SendBatch(gomock.Any()).DoAndReturn(func(batch []treesync.Message) error {
		require.LessOrEqual(t, len(batch), 2)
		msgs = append(msgs, batch...)
		return nil
	}).AnyTimes()
	c.EXPECT().SendDone().Return(nil)
	require.NoError(t, s.Send(context.Background(), c, &node{Name: "x"}, nil))
	require.Equal(t, []treesync.Message{
		{State: treesync.Add, ValueType: "node", Trace: "/"},
		{State: treesync.Add, Value: "x", Trace: "/node"},
		{State: treesync.Add, Value: 0, Trace: "/node"},
		{State: treesync.NoChange, Trace: "/node"},
		{State: treesync.NoChange, Trace: "/node"},
	}, msgs)
}

func TestTraversalLog(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := NewMockConduit(ctrl)
	core, logs := observer.New(zapcore.DebugLevel)
	clock := clockwork.NewFakeClock()
	id := uuid.New()
	s := NewSession(testRegistry(), WithLogger(zap.New(core)), WithClock(clock), WithID(id))
	require.Equal(t, id, s.ID())

	c.EXPECT().SendBatch(gomock.Any()).DoAndReturn(func([]treesync.Message) error {
		clock.Advance(3 * time.Second)
		return nil
	})
	c.EXPECT().SendDone().Return(nil)
	require.NoError(t, s.Send(context.Background(), c, sampleTree(), nil))

	entries := logs.FilterMessage("traversal done").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, id.String(), fields["session"])
	require.Equal(t, dirSend, fields["dir"])
	require.Equal(t, 3*time.Second, fields["duration"])
}
