package main

import (
	"errors"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/spacemeshos/go-treesync/lst"
	"github.com/spacemeshos/go-treesync/treesync/peer"
)

var errMismatch = errors.New("received tree differs from the sent one")

func newRoundtripCmd(a *app) *cobra.Command {
	var before, after string
	cmd := &cobra.Command{
		Use:   "roundtrip",
		Short: "sync a tree between two in-memory peers and verify the result",
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
			src, dst := a.newSession("sender"), a.newSession("receiver")
			if b != nil {
				// bring the receiver to the before state first
				if _, err := peer.Pipe(cmd.Context(), src, dst, b, nil); err != nil {
					return fmt.Errorf("initial sync: %w", err)
				}
			}
			got, err := peer.Pipe(cmd.Context(), src, dst, u, b)
			if err != nil {
				return err
			}
			received, _ := got.(*lst.Unit)
			want, err := lst.Fingerprint(u)
			if err != nil {
				return err
			}
			fp, err := lst.Fingerprint(received)
			if err != nil {
				return err
			}
			if fp != want {
				fmt.Fprintf(cmd.OutOrStdout(), "mismatch (-sent +received):\n%s", cmp.Diff(u, received))
				return errMismatch
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok %x\n", fp[:8])
			return nil
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "tree both peers start from, empty for none")
	cmd.Flags().StringVar(&after, "after", "", "tree to send")
	cmd.MarkFlagRequired("after")
	return cmd
}
