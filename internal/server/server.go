// Package server exposes section generation and the review workflow over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/lossreport/internal/cache"
	"github.com/ppiankov/lossreport/internal/model"
	"github.com/ppiankov/lossreport/internal/observability"
	"github.com/ppiankov/lossreport/internal/workflow"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ReadinessFunc adapts a function to ReadinessChecker.
type ReadinessFunc func(ctx context.Context) error

// CheckReadiness calls f.
func (f ReadinessFunc) CheckReadiness(ctx context.Context) error { return f(ctx) }

// Deps are the collaborators the server routes to.
type Deps struct {
	Generator workflow.Generator
	Sessions  cache.SessionStore
	Ready     ReadinessChecker
	Metrics   *observability.Metrics
}

// Server is the HTTP surface: the generate-section endpoint, the session
// workflow API, and health, readiness and metrics routes.
type Server struct {
	httpServer *http.Server
	generator  workflow.Generator
	machine    *workflow.Machine
	sessions   cache.SessionStore
	maxBody    int64
	logger     *slog.Logger
}

// NewServer creates the server and registers its routes.
func NewServer(cfg model.ServerConfig, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	if deps.Ready == nil {
		deps.Ready = ReadinessFunc(func(context.Context) error { return nil })
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 3 * time.Minute
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      withCORS(withRequestLog(mux, logger)),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: writeTimeout,
			IdleTimeout:  60 * time.Second,
		},
		generator: deps.Generator,
		machine:   workflow.NewMachine(deps.Generator, workflow.WithMetrics(deps.Metrics), workflow.WithLogger(logger)),
		sessions:  deps.Sessions,
		maxBody:   maxBody,
		logger:    logger,
	}

	mux.HandleFunc("/{$}", s.handleGenerateSection)
	mux.HandleFunc("/api/generate-section", s.handleGenerateSection)
	mux.HandleFunc("GET /api/sections", s.handleSections)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /api/sessions/{id}/regenerate", s.handleRegenerate)
	mux.HandleFunc("POST /api/sessions/{id}/accept", s.handleAccept)
	mux.HandleFunc("GET /api/sessions/{id}/document", s.handleDocument)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
