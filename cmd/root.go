// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/github-insights/internal/config"
	"github.com/naka-gawa/github-insights/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "github-insights",
	Short: "Aggregated statistics over the GitHub repositories of a principal.",
	Long: `github-insights aggregates repository, user and team statistics over every
repository visible to a GitHub principal. Run "serve" for the HTTP API or
"stats" to print a single report as JSON.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}

// newLogger builds the logger from cfg. --verbose forces the debug level.
func newLogger(cmd *cobra.Command, cfg config.LoggerConfig) (*zap.SugaredLogger, error) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Level = "debug"
	}
	return logger.NewWithConfig(cfg)
}
