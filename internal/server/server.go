// Package server exposes the codec over HTTP.
//
// Routes:
//
//	POST /v1/decode              structure body → JSON building
//	POST /v1/encode?version=N    JSON body → structure (compress=true for zstd)
//	POST /v1/inspect             structure body → summary
//	POST /v1/graph?format=svg    structure body → DOT or SVG block graph
//	GET  /v1/types               block type table
//	POST /v1/structures          archive a structure, returns its record
//	GET  /v1/structures/{id}     archived bytes (format=json decodes them)
//	GET  /healthz
//	GET  /metrics
//
// Errors are returned as {"error": {"code": ..., "message": ...}}.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/structio/pkg/buildinfo"
	"github.com/matzehuels/structio/pkg/pipeline"
	"github.com/matzehuels/structio/pkg/store"
)

// DefaultMaxBody bounds request bodies when Config.MaxBody is zero.
const DefaultMaxBody = 32 << 20

const shutdownTimeout = 10 * time.Second

// Config configures a Server.
type Config struct {
	Addr    string
	MaxBody int64

	// Gatherer backs /metrics. Nil means the default registry.
	Gatherer prometheus.Gatherer
	Logger   *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	cfg    Config
	logger *log.Logger
}

// New creates a server. st may be nil, which disables the archive routes.
func New(runner *pipeline.Runner, st store.Store, cfg Config) *Server {
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = DefaultMaxBody
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, store: st, cfg: cfg, logger: logger}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Get()})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/decode", s.handleDecode)
		r.Post("/encode", s.handleEncode)
		r.Post("/inspect", s.handleInspect)
		r.Post("/graph", s.handleGraph)
		r.Get("/types", s.handleTypes)
		if s.store != nil {
			r.Post("/structures", s.handlePutStructure)
			r.Get("/structures/{id}", s.handleGetStructure)
		}
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
