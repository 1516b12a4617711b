package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/github-insights/internal/config"
	"github.com/naka-gawa/github-insights/internal/gateway"
	"github.com/naka-gawa/github-insights/internal/usecase"
)

// Reports printable by the stats command.
const (
	reportRepositories = "repositories"
	reportUsers        = "users"
	reportTeams        = "teams"
)

var statsCmd = &cobra.Command{
	Use:       "stats {repositories|users|teams}",
	Short:     "Aggregates GitHub statistics and outputs them as JSON",
	Long:      `Aggregates one report for the principal of GITHUB_TOKEN and prints it in JSON format.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{reportRepositories, reportUsers, reportTeams},
	RunE: func(cmd *cobra.Command, args []string) error {
		ghCfg := config.LoadGitHubConfigFromEnv()
		if ghCfg.Token == "" {
			return errors.New("GITHUB_TOKEN environment variable is not set")
		}
		logger, err := newLogger(cmd, config.CLILoggerConfig())
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		org, _ := cmd.Flags().GetString("org")
		if org == "" {
			org = ghCfg.DefaultOrg
		}
		aggCfg := config.LoadAggregationConfigFromEnv()
		if concurrency, _ := cmd.Flags().GetInt("concurrency"); concurrency > 0 {
			aggCfg.Concurrency = concurrency
		}

		fetcher, err := gateway.NewGitHubGateway(ghCfg.Token, gateway.Config{RateLimitMaxSleep: ghCfg.RateLimitMaxSleep}, logger)
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		report, err := runReport(ctx, args[0], org, fetcher, aggregationOptions(aggCfg), logger)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), report)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringP("org", "o", "", "Organization of the teams report (defaults to DEFAULT_ORG)")
	statsCmd.Flags().IntP("concurrency", "c", 0, "Repositories processed at once (defaults to AGGREGATION_CONCURRENCY)")
	statsCmd.Flags().Duration("timeout", 10*time.Minute, "Abort the aggregation after this long")
}

// runReport computes one report.
func runReport(ctx context.Context, report, org string, fetcher gateway.Fetcher, opts usecase.Options, logger *zap.SugaredLogger) (interface{}, error) {
	switch report {
	case reportRepositories:
		return usecase.NewRepositoryAggregator(fetcher, logger, opts).Statistics(ctx)
	case reportUsers:
		return usecase.NewUserAggregator(fetcher, logger, opts).Statistics(ctx)
	case reportTeams:
		if org == "" {
			return nil, errors.New("--org or DEFAULT_ORG is required for the teams report")
		}
		return usecase.NewTeamRoster(fetcher, logger).Fetch(ctx, org)
	default:
		return nil, fmt.Errorf("unknown report %q", report)
	}
}

// writeJSON prints v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}
