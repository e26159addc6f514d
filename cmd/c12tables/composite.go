// cmd/c12tables/composite.go
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamzrod/c12tables/internal/composite"
)

func newCompositeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "composite",
		Short: "List the subsystems of manufacturer table 2048",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, closeFn, err := openSession(opts)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := context.Background()
			c, err := s.Composite(ctx)
			if err != nil {
				return err
			}
			h, err := c.Header(ctx)
			if err != nil {
				return err
			}
			l, err := c.Layout(ctx)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "layout: %s\n", l.Name)
			for sub := composite.Subsystem(0); sub < composite.SubsystemCount; sub++ {
				if h.Present(sub) {
					fmt.Fprintf(w, "%-24s offset %d\n", sub, h.Offset(sub))
				}
			}
			return nil
		},
	}
}
