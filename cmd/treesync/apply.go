package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/go-treesync/lst"
	"github.com/spacemeshos/go-treesync/treesync/wire"
)

func newApplyCmd(a *app) *cobra.Command {
	var before, in, out string
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "apply a message stream to a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.loadUnit(before)
			if err != nil {
				return err
			}
			f, err := a.fs.Open(in)
			if err != nil {
				return fmt.Errorf("open stream file: %w", err)
			}
			defer f.Close()
			s := a.newSession("apply")
			c := wire.NewConduit(f,
				wire.WithLimits(a.conf.Sync.Limits()),
				wire.WithLogger(a.log.Named("wire")))
			got, err := s.Receive(cmd.Context(), c, b)
			if err != nil {
				return err
			}
			u, _ := got.(*lst.Unit)
			if u == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "tree deleted")
				return nil
			}
			if out == "" {
				return lst.Save(cmd.OutOrStdout(), u)
			}
			w, err := a.fs.Create(out)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer w.Close()
			if err := lst.Save(w, u); err != nil {
				return err
			}
			a.log.Info("tree written", zap.String("path", out), zap.Int("bytes", c.BytesReceived()))
			return w.Close()
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "tree the stream was computed against, empty for none")
	cmd.Flags().StringVarP(&in, "in", "i", "", "stream file to read")
	cmd.Flags().StringVarP(&out, "out", "o", "", "file to write the resulting tree to, stdout by default")
	cmd.MarkFlagRequired("in")
	return cmd
}
