// cmd/c12tables/read.go
package main

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

func newReadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read <table-id>",
		Short: "Read one table and hex-dump it",
		Example: `  c12tables read 0
  c12tables read 0x800 --config site.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTableID(args[0])
			if err != nil {
				return err
			}
			_, s, closeFn, err := openSession(opts)
			if err != nil {
				return err
			}
			defer closeFn()

			img, err := s.ReadTable(context.Background(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "table %d (%d bytes)\n", id, len(img))
			fmt.Fprint(cmd.OutOrStdout(), hex.Dump(img))
			return nil
		},
	}
}
