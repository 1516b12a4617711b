package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/github-insights/internal/apidoc"
	"github.com/naka-gawa/github-insights/internal/config"
	"github.com/naka-gawa/github-insights/internal/gateway"
	"github.com/naka-gawa/github-insights/internal/handler"
	"github.com/naka-gawa/github-insights/internal/middleware"
	"github.com/naka-gawa/github-insights/internal/session"
	"github.com/naka-gawa/github-insights/internal/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP API",
	Long: `Starts the HTTP API. Configuration is read from the environment; see
GITHUB_CLIENT_ID, GITHUB_CLIENT_SECRET, SECRET_KEY and DEFAULT_ORG.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadFromEnv()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger, err := newLogger(cmd, cfg.Logger)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// aggregationOptions maps configuration onto the aggregator options.
func aggregationOptions(cfg config.AggregationConfig) usecase.Options {
	opts := usecase.DefaultOptions()
	opts.Concurrency = cfg.Concurrency
	opts.BotPrefixes = cfg.BotPrefixes
	return opts
}

// newRouter assembles the gin engine with every route of the API.
func newRouter(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) (*gin.Engine, error) {
	if _, err := apidoc.Load(ctx); err != nil {
		return nil, err
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.Logger(logger), session.Middleware(cfg.Session))

	handler.New(handler.Config{
		Factory:       gateway.NewFactory(gateway.Config{RateLimitMaxSleep: cfg.GitHub.RateLimitMaxSleep}, logger),
		FallbackToken: cfg.GitHub.Token,
		DefaultOrg:    cfg.GitHub.DefaultOrg,
		Options:       aggregationOptions(cfg.Aggregation),
		Logger:        logger,
	}).RegisterRoutes(r)
	session.NewOAuth(cfg.GitHub, logger).RegisterRoutes(r)
	apidoc.RegisterRoutes(r)
	return r, nil
}

func serve(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) error {
	router, err := newRouter(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("server starting", "address", srv.Addr, "default_org", cfg.GitHub.DefaultOrg)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Infow("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Infow("server exited")
	return nil
}
