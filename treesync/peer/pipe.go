package peer

import (
	"bytes"
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/go-treesync/treesync/wire"
)

type readWriter struct {
	io.Reader
	io.Writer
}

// Pipe syncs the difference between after and before from session a to session b over
// an in-memory wire stream and returns the tree received by b. Both sides start from
// before.
func Pipe(ctx context.Context, a, b *Session, after, before any) (any, error) {
	r, w := io.Pipe()
	src := wire.NewConduit(readWriter{Reader: bytes.NewReader(nil), Writer: w},
		wire.WithLimits(a.cfg.Limits()), wire.WithLogger(a.log))
	dst := wire.NewConduit(readWriter{Reader: r, Writer: io.Discard},
		wire.WithLimits(b.cfg.Limits()), wire.WithLogger(b.log))
	var (
		eg       errgroup.Group
		received any
	)
	eg.Go(func() error {
		err := a.Send(ctx, src, after, before)
		w.CloseWithError(err)
		return err
	})
	eg.Go(func() error {
		var err error
		received, err = b.Receive(ctx, dst, before)
		r.CloseWithError(err)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return received, nil
}
