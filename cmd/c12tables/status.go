// cmd/c12tables/status.go
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamzrod/c12tables/internal/status"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var pending bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Decode table 3 (end device mode and status)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, closeFn, err := openSession(opts)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := context.Background()
			ms, err := s.ModeStatus(ctx)
			if err != nil {
				return err
			}
			flags, err := ms.Flags(ctx, status.DefaultMfgLayout)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(flags) == 0 {
				fmt.Fprintln(w, "no flags set")
			}
			for _, f := range flags {
				fmt.Fprintf(w, "%-26s %s\n", f, status.English.Describe(f))
			}

			if !pending {
				return nil
			}
			ps, err := s.PendingStatus(ctx)
			if err != nil {
				return err
			}
			entries, err := ps.Pending(ctx)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(w, "pending %s event=%d self-read=%t demand-reset=%t\n",
					e.Table, e.EventCode(), e.SelfRead(), e.DemandReset())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pending, "pending", false, "Also decode table 4 (pending status)")
	return cmd
}
