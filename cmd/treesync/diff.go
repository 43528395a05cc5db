package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/go-treesync/treesync"
	"github.com/spacemeshos/go-treesync/treesync/wire"
)

// recorder counts the messages sent through a conduit.
type recorder struct {
	*wire.Conduit
	counts [treesync.EndOfObject + 1]int
	total  int
}

func (r *recorder) SendBatch(batch []treesync.Message) error {
	for _, m := range batch {
		if m.State.Valid() {
			r.counts[m.State]++
		}
		r.total++
	}
	return r.Conduit.SendBatch(batch)
}

func (r *recorder) summary(w io.Writer) {
	fmt.Fprintf(w, "messages: %d, bytes: %d\n", r.total, r.BytesSent())
	for s, n := range r.counts {
		if n != 0 {
			fmt.Fprintf(w, "  %-13s %d\n", treesync.State(s), n)
		}
	}
}

func newDiffCmd(a *app) *cobra.Command {
	var before, after, out string
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "write the message stream turning one tree into another",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.loadUnit(before)
			if err != nil {
				return err
			}
			u, err := a.loadUnit(after)
			if err != nil {
				return err
			}
			f, err := a.fs.Create(out)
			if err != nil {
				return fmt.Errorf("create stream file: %w", err)
			}
			defer f.Close()
			s := a.newSession("diff")
			r := &recorder{Conduit: wire.NewConduit(f,
				wire.WithLimits(a.conf.Sync.Limits()),
				wire.WithLogger(a.log.Named("wire")))}
			if err := s.Send(cmd.Context(), r, u, b); err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close stream file: %w", err)
			}
			a.log.Info("stream written", zap.String("path", out), zap.Int("messages", r.total))
			r.summary(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "tree to diff against, empty for none")
	cmd.Flags().StringVar(&after, "after", "", "new version of the tree")
	cmd.Flags().StringVarP(&out, "out", "o", "", "stream file to write")
	cmd.MarkFlagRequired("after")
	cmd.MarkFlagRequired("out")
	return cmd
}
