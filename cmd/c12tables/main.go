// cmd/c12tables/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "c12tables",
		Short: "ANSI C12.19 table reader over a PSEM gateway",
		Long: `c12tables reads and writes C12.19 meter tables through a Modbus
register gateway, or through a recorded capture.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "c12tables.yaml", "Path to the YAML config")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newReadCmd(opts))
	rootCmd.AddCommand(newHeaderCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newCompositeCmd(opts))
	rootCmd.AddCommand(newProcCmd(opts))
	rootCmd.AddCommand(newSetTimeCmd(opts))
	rootCmd.AddCommand(newPollCmd(opts))
	rootCmd.AddCommand(newCapturesCmd())
	return rootCmd
}
