// cmd/c12tables/header.go
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newHeaderCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "header",
		Short: "Decode table 0 (general configuration)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, closeFn, err := openSession(opts)
			if err != nil {
				return err
			}
			defer closeFn()

			h, err := s.GeneralConfig().Header(context.Background())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "manufacturer:   %s\n", h.Manufacturer)
			fmt.Fprintf(w, "standard:       v%d.%d\n", h.StdVersion, h.StdRevision)
			fmt.Fprintf(w, "big endian:     %t\n", h.Format.BigEndian)
			fmt.Fprintf(w, "time format:    %s\n", h.Format.TimeFormat)
			fmt.Fprintf(w, "dimensions:     %+v\n", h.Dims)
			fmt.Fprintf(w, "tables used:    %v\n", h.Tables.IDs())
			fmt.Fprintf(w, "tables write:   %v\n", h.Writable.IDs())
			fmt.Fprintf(w, "procedures:     %v\n", h.Procedures.IDs())
			return nil
		},
	}
}
