package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/lossreport/internal/cache"
	"github.com/ppiankov/lossreport/internal/observability"
	"github.com/ppiankov/lossreport/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes section generation and the review workflow over HTTP.

Endpoints:
  POST /api/generate-section   generate one section (also POST /)
  GET  /api/sections           section catalog
  POST /api/sessions           start a review from a fact sheet
  GET  /api/sessions/{id}      current draft and progress
  POST /api/sessions/{id}/regenerate
  POST /api/sessions/{id}/accept
  GET  /api/sessions/{id}/document
  GET  /healthz, /readyz, /metrics

Example:
  lossreport serve --addr :8080 --llm-provider anthropic`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	metrics := observability.NewMetrics()
	a, err := newApp(metrics, os.Stderr, true)
	if err != nil {
		return err
	}

	store := cache.NewMemoryStore(a.cfg.Session.TTL, a.cfg.Session.CleanupInterval, metrics)
	srv := server.NewServer(a.cfg.Server, server.Deps{
		Generator: a.pipeline,
		Sessions:  store,
		Ready:     providerReadiness(a),
		Metrics:   metrics,
	}, a.logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// providerReadiness probes the provider until one probe succeeds, then
// reports ready without further calls.
func providerReadiness(a *app) server.ReadinessFunc {
	var ok atomic.Bool
	return func(ctx context.Context) error {
		if ok.Load() {
			return nil
		}
		if !a.provider.IsAvailable(ctx) {
			return fmt.Errorf("%s provider is not reachable", a.provider.Name())
		}
		ok.Store(true)
		return nil
	}
}
