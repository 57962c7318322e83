package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/njchilds90/diffeq/internal/cache"
	"github.com/njchilds90/diffeq/internal/config"
	"github.com/njchilds90/diffeq/internal/logging"
	"github.com/njchilds90/diffeq/internal/metrics"
	"github.com/njchilds90/diffeq/internal/server"
	"github.com/njchilds90/diffeq/render"
)

// NewServeCmd is the HTTP server command, also used as the root of the
// standalone server binary.
func NewServeCmd() *cobra.Command {
	cmd := newServeCmd()
	cmd.Use = "diffeq-server"
	cmd.SilenceUsage = true
	return cmd
}

func newServeCmd() *cobra.Command {
	var (
		port    int
		envFile string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis endpoints over HTTP",
		Long: `Start the HTTP server.

Settings come from DIFFEQ_* environment variables, optionally loaded from a
.env file. --port overrides DIFFEQ_PORT.

Examples:
  diffeq serve              # Start on DIFFEQ_PORT (default 5001)
  diffeq serve --port 8080  # Start on port 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			cfg, err := config.Load(files...)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr()))
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 5001, "Port to listen on")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Environment file to load (default .env)")
	return cmd
}

func runServer(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	render.Setup()

	store, err := openCache(ctx, cfg.Cache, log)
	if err != nil {
		return err
	}
	defer store.Close()

	rec := openMetrics(ctx, cfg, log)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rec.Close(shutdownCtx); err != nil {
			log.Warn("flushing metrics failed", "error", err)
		}
	}()

	return server.New(cfg, log, store, rec).Start(ctx)
}

// openCache builds the memory cache, layered over SQLite when a path is set.
// The SQLite layer is swept for expired rows until ctx ends.
func openCache(ctx context.Context, cfg config.Cache, log *slog.Logger) (cache.Store, error) {
	mem := cache.NewMemory(cfg.Size, cfg.TTL)
	if cfg.Path == "" {
		return mem, nil
	}
	disk, err := cache.OpenSQLite(cfg.Path, cfg.TTL)
	if err != nil {
		return nil, err
	}
	go disk.RunCleanup(ctx, cfg.Cleanup, log)
	log.Info("response cache on disk", "path", cfg.Path, "ttl", cfg.TTL)
	return cache.NewLayered(mem, disk), nil
}

// openMetrics falls back to a no-op recorder when no collector is configured
// or the exporter cannot be built.
func openMetrics(ctx context.Context, cfg *config.Config, log *slog.Logger) metrics.Recorder {
	if !cfg.Otel.Enabled() {
		return metrics.NewNoOp()
	}
	rec, err := metrics.NewOTel(ctx, metrics.Config{
		Endpoint: cfg.Otel.Endpoint,
		Insecure: cfg.Otel.Insecure,
		Version:  cfg.Version,
	})
	if err != nil {
		log.Warn("metrics disabled", "error", err)
		return metrics.NewNoOp()
	}
	log.Info("exporting metrics", "endpoint", cfg.Otel.Endpoint)
	return rec
}
