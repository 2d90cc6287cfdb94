// Package main provides the entry point for the courtcrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for courtcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courtcrawl",
		Short: "CourtListener case-law crawler",
		Long: `courtcrawl extracts legal-case data from the CourtListener REST API.

It walks the docket → cluster → opinion hierarchy, paced to stay within
the API's request-rate policy, and flattens every resolved opinion into
one record suitable for downstream analysis. Partial failures are skipped
per node; a run never loses already-fetched work.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().String("config", "", "Path to YAML config file")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().Bool("pretty", false, "Human-readable console log output")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
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
