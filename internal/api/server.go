// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	handlerapi "github.com/uodit05/algo-trade-test-1/internal/api/handler/api"
	"github.com/uodit05/algo-trade-test-1/internal/api/middleware"
	"github.com/uodit05/algo-trade-test-1/internal/metrics"
	"github.com/uodit05/algo-trade-test-1/internal/scanner"
	"github.com/uodit05/algo-trade-test-1/internal/session"
	"github.com/uodit05/algo-trade-test-1/internal/storage/archive"
	"github.com/uodit05/algo-trade-test-1/internal/storage/signal"
	"github.com/uodit05/algo-trade-test-1/internal/strategy"
)

// Server is the HTTP control surface for the simulator.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	hub        *Hub
}

// Config holds server configuration
type Config struct {
	Host   string
	Port   int
	APIKey string
}

// Deps are the collaborators the server exposes over HTTP. Archive and
// Signals may be nil; their routes are then not registered.
type Deps struct {
	Manager  *session.Manager
	Registry *strategy.Registry
	Scanner  *scanner.Scanner
	Signals  signal.Store
	Archive  *archive.Archive
	Metrics  *metrics.Registry
	Hub      *Hub
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Deps, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()

	s := &Server{
		logger: logger,
		mux:    mux,
		hub:    deps.Hub,
	}

	handler := s.setupRoutes(cfg, deps)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes and the middleware chain.
func (s *Server) setupRoutes(cfg Config, deps Deps) http.Handler {
	sessionHandler := handlerapi.NewSessionHandler(deps.Manager)
	strategiesHandler := handlerapi.NewStrategiesHandler(deps.Registry)

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/api/start", sessionHandler.Start)
	apiMux.HandleFunc("/api/stop", sessionHandler.Stop)
	apiMux.HandleFunc("/api/status", sessionHandler.Status)
	apiMux.HandleFunc("/api/summary", sessionHandler.Summary)
	apiMux.HandleFunc("/api/strategy", sessionHandler.Strategy)
	apiMux.HandleFunc("/api/strategies", strategiesHandler.List)

	if deps.Scanner != nil {
		scanHandler := handlerapi.NewScanHandler(deps.Scanner)
		apiMux.HandleFunc("/api/scan", scanHandler.Scan)
	}
	if deps.Signals != nil {
		signalsHandler := handlerapi.NewSignalsHandler(deps.Signals)
		apiMux.HandleFunc("/api/signals", signalsHandler.List)
	}
	if deps.Archive != nil {
		runsHandler := handlerapi.NewRunsHandler(deps.Archive)
		apiMux.HandleFunc("/api/runs", runsHandler.List)
		apiMux.HandleFunc("/api/runs/", runsHandler.Get)
	}

	// Authenticated API routes
	s.mux.Handle("/api/", middleware.APIKeyAuth(cfg.APIKey)(apiMux))

	// Open routes
	s.mux.HandleFunc("/api/health", s.handleHealth)
	if s.hub != nil {
		s.mux.HandleFunc("/ws", s.hub.ServeWS)
	}
	if deps.Metrics != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	var handler http.Handler = s.mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	}
	handler = metrics.LoggingMiddleware(s.logger)(handler)
	return handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Handler returns the server's root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
