// Package main provides the entry point for the csmareport CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for csmareport.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csmareport",
		Short: "Chart and summarize CSMA/CA Wi-Fi simulation results",
		Long: `csmareport reads the per-node-count results of a CSMA/CA ad-hoc Wi-Fi
simulation, draws the throughput, PDR, delay and collision charts, and
prints a performance summary.

Every report run is stored in a local history database so that results
of the same simulation can be compared over time.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write log records as JSON")

	// Add subcommands
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
