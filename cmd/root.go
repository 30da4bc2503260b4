// Package cmd defines the CLI commands for the riftline executable.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "riftline",
		Short: "Concurrent League of Legends match-graph crawler",
		Long: `riftline crawls the League of Legends match/player graph through the
rate-limited Riot API, one worker per credential, and persists normalized
match, participant, and mastery records to Postgres for downstream analytics.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./riftline.yaml)")

	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute is the entry point called by main.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
