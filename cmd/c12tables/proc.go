// cmd/c12tables/proc.go
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/c12tables/internal/procedure"
)

func newProcCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "proc <name|number> [hex-params]",
		Short: "Invoke a procedure through tables 7 and 8",
		Example: `  c12tables proc warm-start
  c12tables proc remote-reset 01`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProcedure(args[0])
			if err != nil {
				return err
			}
			var params []byte
			if len(args) == 2 {
				if params, err = hex.DecodeString(args[1]); err != nil {
					return fmt.Errorf("invalid params: %w", err)
				}
			}

			_, s, closeFn, err := openSession(opts)
			if err != nil {
				return err
			}
			defer closeFn()

			resp, err := s.Call(context.Background(), id, params)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}

func newSetTimeCmd(opts *rootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "set-time",
		Short: "Set the device clock (procedure 10)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ts := time.Now().UTC()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				ts = t
			}

			_, s, closeFn, err := openSession(opts)
			if err != nil {
				return err
			}
			defer closeFn()

			resp, err := s.SetDateTime(context.Background(), procedure.SetDateTimeParams{
				SetTime: true,
				SetDate: true,
				Time:    ts,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "RFC 3339 time to set (default: now)")
	return cmd
}

func parseProcedure(s string) (uint16, error) {
	if id, ok := procedure.Lookup(s); ok {
		return id, nil
	}
	n, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("unknown procedure %q", s)
	}
	return uint16(n), nil
}
