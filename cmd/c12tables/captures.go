// cmd/c12tables/captures.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tamzrod/c12tables/internal/transport/replay"
)

func newCapturesCmd() *cobra.Command {
	var (
		path string
		drop string
	)

	cmd := &cobra.Command{
		Use:   "captures",
		Short: "List or drop the captures in a replay store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return fmt.Errorf("--path required")
			}
			log, err := newLogger(defaultLogConfig(), os.Stderr)
			if err != nil {
				return err
			}
			store, err := replay.Open(path, log)
			if err != nil {
				return err
			}
			defer store.Close()

			if drop != "" {
				return store.Drop(drop)
			}

			captures, err := store.Captures()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, c := range captures {
				ids, err := store.Tables(c)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s tables=%v\n", c, ids)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "Replay store directory (required)")
	cmd.Flags().StringVar(&drop, "drop", "", "Delete this capture instead of listing")
	return cmd
}
