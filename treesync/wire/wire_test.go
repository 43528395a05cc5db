package wire

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/spacemeshos/go-scale"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/go-treesync/codec"
	"github.com/spacemeshos/go-treesync/treesync"
)

func TestMessageEncoding(t *testing.T) {
	for _, tc := range []struct {
		name string
		msg  treesync.Message
		want treesync.Message
	}{
		{
			name: "no change",
			msg:  treesync.Message{State: treesync.NoChange},
			want: treesync.Message{State: treesync.NoChange},
		},
		{
			name: "back reference",
			msg:  treesync.Message{State: treesync.Add, Ref: 300},
			want: treesync.Message{State: treesync.Add, Ref: 300},
		},
		{
			name: "shell",
			msg:  treesync.Message{State: treesync.Add, ValueType: "lst.Ident", Ref: 1},
			want: treesync.Message{State: treesync.Add, ValueType: "lst.Ident", Ref: 1},
		},
		{
			name: "positions",
			msg:  treesync.Message{State: treesync.Change, Value: []int{2, 0, -1}},
			want: treesync.Message{
				State: treesync.Change,
				Value: []any{uint64(2), uint64(0), int64(-1)},
			},
		},
		{
			name: "scalar with trace",
			msg:  treesync.Message{State: treesync.Change, Value: "x", Trace: "/lst.Unit"},
			want: treesync.Message{State: treesync.Change, Value: "x", Trace: "/lst.Unit"},
		},
		{
			name: "structured",
			msg: treesync.Message{
				State:     treesync.Add,
				ValueType: "lst.Position",
				Value:     struct{ Line, Column int }{Line: 1, Column: 2},
			},
			want: treesync.Message{
				State:     treesync.Add,
				ValueType: "lst.Position",
				Value:     map[string]any{"Line": uint64(1), "Column": uint64(2)},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var b bytes.Buffer
			n, err := EncodeMessage(scale.NewEncoder(&b), tc.msg, DefaultLimits())
			require.NoError(t, err)
			require.Equal(t, b.Len(), n)
			got, n, err := DecodeMessage(scale.NewDecoder(&b), DefaultLimits())
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
			require.Zero(t, b.Len())
			require.NotZero(t, n)
		})
	}
}

func TestMessageDecodingErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		data []byte
		err  error
	}{
		{name: "truncated", data: []byte{byte(treesync.Add)}},
		{name: "unknown flags", data: []byte{byte(treesync.Add), 0x80}, err: ErrBadMessage},
		{name: "empty type id", data: []byte{byte(treesync.Add), hasValueType, 0}, err: ErrBadMessage},
		{name: "zero ref", data: []byte{byte(treesync.Add), hasRef, 0}, err: ErrBadMessage},
		{name: "null value", data: []byte{byte(treesync.Add), hasValue, 4, 0xf6}, err: ErrBadMessage},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := DecodeMessage(scale.NewDecoder(bytes.NewReader(tc.data)), DefaultLimits())
			require.Error(t, err)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
			}
		})
	}
}

func TestValueSizeLimit(t *testing.T) {
	limits := Limits{MaxMessages: 10, MaxValueSize: 16}
	msg := treesync.Message{State: treesync.Change, Value: strings.Repeat("x", 100)}
	var b bytes.Buffer
	_, err := EncodeMessage(scale.NewEncoder(&b), msg, limits)
	require.ErrorIs(t, err, ErrValueTooLarge)

	_, err = EncodeMessage(scale.NewEncoder(&b), msg, DefaultLimits())
	require.NoError(t, err)
	_, _, err = DecodeMessage(scale.NewDecoder(&b), limits)
	require.ErrorIs(t, err, ErrValueTooLarge)
}

func pipeConduits(t *testing.T, opts ...ConduitOption) (*Conduit, *Conduit) {
	r1, w1 := io.Pipe()
	r2, w2 := io.Pipe()
	t.Cleanup(func() {
		r1.Close()
		r2.Close()
	})
	opts = append(opts, WithLogger(zaptest.NewLogger(t)))
	a := NewConduit(readWriter{Reader: r1, Writer: w2}, opts...)
	b := NewConduit(readWriter{Reader: r2, Writer: w1}, opts...)
	return a, b
}

func TestConduit(t *testing.T) {
	a, b := pipeConduits(t, WithLimits(Limits{MaxMessages: 2, MaxValueSize: 1024}))
	batch := []treesync.Message{
		{State: treesync.Change, ValueType: "lst.Unit"},
		{State: treesync.NoChange},
		{State: treesync.Change, Value: "x"},
	}
	var eg errgroup.Group
	eg.Go(func() error {
		if err := a.SendBatch(batch); err != nil {
			return err
		}
		return a.SendDone()
	})
	got, err := b.NextBatch()
	require.NoError(t, err)
	require.Equal(t, batch[:2], got)
	got, err = b.NextBatch()
	require.NoError(t, err)
	require.Equal(t, batch[2:], got)
	_, err = b.NextBatch()
	require.ErrorIs(t, err, ErrDone)
	require.NoError(t, eg.Wait())
	require.Equal(t, a.BytesSent(), b.BytesReceived())
	require.NotZero(t, a.BytesSent())
}

func TestConduitReceiveDone(t *testing.T) {
	var b bytes.Buffer
	c := NewConduit(readWriter{Reader: &b, Writer: &b})
	require.NoError(t, c.SendDone())
	require.NoError(t, c.SendBatch([]treesync.Message{{State: treesync.NoChange}}))
	require.NoError(t, c.ReceiveDone())
	require.ErrorIs(t, c.ReceiveDone(), ErrBadMessage)
}

type readWriter struct {
	io.Reader
	io.Writer
}

func TestConduitEOF(t *testing.T) {
	c := NewConduit(readWriter{Reader: bytes.NewReader(nil), Writer: io.Discard})
	_, err := c.NextBatch()
	require.ErrorIs(t, err, io.EOF)
	require.ErrorIs(t, c.ReceiveDone(), io.ErrUnexpectedEOF)

	c = NewConduit(readWriter{Reader: bytes.NewReader([]byte{byte(FrameTypeBatch), 4}), Writer: io.Discard})
	_, err = c.NextBatch()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestConduitInvalidFrame(t *testing.T) {
	c := NewConduit(readWriter{Reader: bytes.NewReader([]byte{0x42}), Writer: io.Discard})
	_, err := c.NextBatch()
	require.ErrorContains(t, err, "invalid frame code 42")
}

func TestConduitTooManyMessages(t *testing.T) {
	var b bytes.Buffer
	big := NewConduit(readWriter{Reader: &b, Writer: &b})
	require.NoError(t, big.SendBatch(make([]treesync.Message, 3)))
	small := NewConduit(readWriter{Reader: &b, Writer: io.Discard},
		WithLimits(Limits{MaxMessages: 2, MaxValueSize: 16}))
	_, err := small.NextBatch()
	require.ErrorIs(t, err, ErrBadMessage)
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestConduitWriteError(t *testing.T) {
	c := NewConduit(readWriter{Reader: bytes.NewReader(nil), Writer: failingWriter{}})
	require.ErrorIs(t, c.SendBatch([]treesync.Message{{State: treesync.Delete}}), errWrite)
}

func TestFrameType(t *testing.T) {
	require.Equal(t, "batch", FrameTypeBatch.String())
	require.Equal(t, "done", FrameTypeDone.String())
	require.Equal(t, "<unknown 07>", FrameType(7).String())
}

func TestConduitGarbage(t *testing.T) {
	f := fuzz.NewWithSeed(1001).NilChance(0).NumElements(1, 64)
	for i := 0; i < 1000; i++ {
		var data []byte
		f.Fuzz(&data)
		data[0] = byte(FrameTypeBatch)
		c := NewConduit(readWriter{Reader: bytes.NewReader(data), Writer: io.Discard})
		require.NotPanics(t, func() {
			for {
				if _, err := c.NextBatch(); err != nil {
					return
				}
			}
		})
	}
}

func TestFrameCodec(t *testing.T) {
	f := Frame{
		Messages: []treesync.Message{
			{State: treesync.Add, ValueType: "lst.Unit", Ref: 1},
			{State: treesync.Change, Value: []int{0, -1}},
		},
		Limits: DefaultLimits(),
	}
	data, err := codec.Encode(&f)
	require.NoError(t, err)

	got := Frame{Limits: DefaultLimits()}
	require.NoError(t, codec.Decode(data, &got))
	require.Len(t, got.Messages, 2)
	require.Equal(t, f.Messages[0], got.Messages[0])

	require.Error(t, codec.Decode(data[:len(data)-1], &Frame{Limits: DefaultLimits()}))
	require.ErrorIs(t,
		codec.Decode(data, &Frame{Limits: Limits{MaxMessages: 1, MaxValueSize: 16}}),
		ErrBadMessage)
	require.Panics(t, func() { codec.Encode(&Frame{Limits: DefaultLimits()}) })
}
