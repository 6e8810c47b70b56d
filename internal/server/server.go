// Package server exposes the codec over HTTP.
//
// Routes:
//
//	POST   /v1/encode        text body → binary stream
//	POST   /v1/decode        binary body → JSON (or ?format=text|dot|svg)
//	POST   /v1/lists         text body → stored list, returns its id
//	GET    /v1/lists/{id}    stored binary stream (or ?format=json|text|dot|svg)
//	DELETE /v1/lists/{id}    remove a stored list
//	GET    /v1/stats         hook counters
//	GET    /healthz          liveness
//	GET    /version          build information
//
// Errors are JSON objects {"code": ..., "message": ...}. Malformed input is
// 400, oversized input 413, unknown ids 404, anything else 500.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/randlist/pkg/list"
	"github.com/matzehuels/randlist/pkg/observability"
	"github.com/matzehuels/randlist/pkg/pipeline"
	"github.com/matzehuels/randlist/pkg/store"
)

// Defaults for [Config].
const (
	DefaultAddr            = "127.0.0.1:8080"
	DefaultMaxBody         = 64 << 20
	DefaultShutdownTimeout = 10 * time.Second
)

// Config configures the server.
type Config struct {
	Addr     string `toml:"addr"`
	MaxBody  int64  `toml:"max_body"`
	MaxNodes int    `toml:"-"`
	// KeyPrefix namespaces the ids of lists created through the API.
	KeyPrefix string `toml:"key_prefix"`
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxBody <= 0 {
		c.MaxBody = DefaultMaxBody
	}
	if c.MaxNodes <= 0 || c.MaxNodes > list.MaxNodes {
		c.MaxNodes = list.MaxNodes
	}
}

// Server serves the HTTP API.
type Server struct {
	cfg      Config
	runner   *pipeline.Runner
	store    store.Store
	logger   *log.Logger
	counters *observability.Counters
}

// New creates a server on top of st and registers counting hooks whose
// totals are served at /v1/stats.
func New(cfg Config, st store.Store, logger *log.Logger) *Server {
	cfg.setDefaults()
	if logger == nil {
		logger = log.Default()
	}
	if cfg.KeyPrefix != "" {
		st = store.NewScopedStore(st, cfg.KeyPrefix)
	}

	counters := observability.NewCounters()
	observability.SetPipelineHooks(counters)
	observability.SetStoreHooks(counters)
	observability.SetHTTPHooks(counters)

	runner := pipeline.NewRunner(st, logger)
	runner.MaxNodes = cfg.MaxNodes

	return &Server{
		cfg:      cfg,
		runner:   runner,
		store:    st,
		logger:   logger,
		counters: counters,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/encode", s.handleEncode)
		r.Post("/decode", s.handleDecode)
		r.Get("/stats", s.handleStats)

		r.Post("/lists", s.handleCreateList)
		r.Get("/lists/{id}", s.handleGetList)
		r.Delete("/lists/{id}", s.handleDeleteList)
	})
	return r
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
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

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Counters returns the hook counters served at /v1/stats.
func (s *Server) Counters() *observability.Counters { return s.counters }

// logRequests logs every request and reports it to the HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		observability.HTTP().OnResponse(r.Context(), r.Method, route, ww.Status(), elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
