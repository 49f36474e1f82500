// File: cmd/serve.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/einfill/internal/observability"
	"github.com/xkilldash9x/einfill/internal/orchestrator"
	"github.com/xkilldash9x/einfill/internal/records"
	"github.com/xkilldash9x/einfill/internal/server"
	"github.com/xkilldash9x/einfill/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service that accepts filing requests.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parentCtx context.Context) error {
	logger := observability.GetLogger()

	ctx, stop := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, cleanup, err := buildRunner(ctx, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := server.New(cfg.Server, runner, logger)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening.", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return <-errCh
}

// buildRunner wires the orchestrator with whichever optional sinks the
// configuration enables.
func buildRunner(ctx context.Context, logger *zap.Logger) (*orchestrator.Runner, func(), error) {
	cleanup := func() {}

	var blobs storage.BlobStore
	if cfg.Storage.Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, cfg.Storage, logger)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to initialize blob storage: %w", err)
		}
		blobs = s3Store
	} else {
		logger.Info("No storage bucket configured; artifact uploads disabled.")
	}

	var history *records.Store
	if cfg.Database.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to create database pool: %w", err)
		}
		cleanup = pool.Close

		history, err = records.New(ctx, pool, logger)
		if err != nil {
			return nil, cleanup, err
		}
		if err := history.EnsureSchema(ctx); err != nil {
			return nil, cleanup, err
		}
	} else {
		logger.Info("No database configured; run history disabled.")
	}

	factory := orchestrator.NewBrowserFactory(cfg, logger)
	return orchestrator.NewRunner(factory, blobs, history, logger), cleanup, nil
}
