// Package cli implements the revlog command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/sprite-ai/revlog/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "revlog",
	Short: "Portable, append-only code review activity logs",
	Long: `revlog reads, writes, and reasons about review log files: append-only
records of code review activity that travel with the code instead of
living in a forge's database.

A log round-trips between YAML, JSON, and XML, derives its current
state (status, reviewers, resolved threads) from the raw event stream,
and merges with divergent copies without losing history.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Init(cfgFile)
	},
}

var cfgFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/revlog/config.yaml)")
	rootCmd.AddCommand(
		validateCmd,
		convertCmd,
		statusCmd,
		showCmd,
		reviewCmd,
		commentCmd,
		resolveCmd,
		retractCmd,
		mergeCmd,
		checkCmd,
		serveCmd,
		versionCmd,
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
