package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/zotsearch/internal/domain"
	"github.com/kailas-cloud/zotsearch/internal/metrics"
	chiTransport "github.com/kailas-cloud/zotsearch/internal/transport/chi"
	"github.com/kailas-cloud/zotsearch/internal/version"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Serve the search tools over HTTP and run the automatic sync once at startup when it is due.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	a, err := newApp(ctx, opts, "")
	if err != nil {
		return err
	}
	defer a.Close()

	a.logger.Info("Starting zotsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", opts.env),
		zap.Int("http_port", a.cfg.HTTP.Port),
		zap.String("db_driver", a.cfg.Database.Driver),
		zap.String("collection", a.cfg.Search.Collection),
	)

	metrics.RegisterHTTPMetrics()
	server := chiTransport.NewServer(a.search, a.updater, a, a.health, a.logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.HTTP.Port),
		Handler:      server.Router(a.cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		a.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		a.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	// A failing startup sync is logged and never takes the server down.
	eg.Go(func() error {
		report, ran, err := a.updater.RunIfDue(egCtx)
		switch {
		case errors.Is(err, domain.ErrSyncInProgress):
			a.logger.Info("Startup sync skipped, another run is in progress")
		case err != nil:
			a.logger.Warn("Startup sync check failed", zap.Error(err))
		case ran && report.Failed():
			a.logger.Warn("Startup sync failed", zap.String("error", report.Error))
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return err
	}
	a.logger.Info("Server stopped gracefully")
	return nil
}
