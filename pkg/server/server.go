// Package server exposes a core.DocumentStore over HTTP, with a websocket
// live feed per collection and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/jotter/pkg/api"
	"github.com/aretw0/jotter/pkg/core"
)

// Store is what the server needs from the backing store.
type Store interface {
	core.DocumentStore
	core.Lister
}

// Server serves a Store over HTTP.
type Server struct {
	store           Store
	logger          *slog.Logger
	registry        *prometheus.Registry
	metrics         *metrics
	router          *mux.Router
	upgrader        websocket.Upgrader
	maxBodyBytes    int64
	writeTimeout    time.Duration
	shutdownTimeout time.Duration

	mu        sync.Mutex
	live      map[string]int
	startedAt time.Time
	addr      string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRegistry registers metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithMaxBodyBytes caps the size of a document upload.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

// WithShutdownTimeout bounds graceful shutdown in Run.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// New creates a server for store.
func New(store Store, opts ...Option) *Server {
	s := &Server{
		store:           store,
		logger:          slog.Default(),
		maxBodyBytes:    1 << 20,
		writeTimeout:    10 * time.Second,
		shutdownTimeout: 5 * time.Second,
		live:            make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = newMetrics(s.registry)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// Clients are CLIs and other servers, not browsers.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.metrics.instrument)

	r.HandleFunc(api.RouteHealth, s.handleHealth).Methods(http.MethodGet)
	r.Handle(api.RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	r.HandleFunc(api.RouteDocuments, s.handleList).Methods(http.MethodGet)
	r.HandleFunc(api.RouteDocument, s.handleUpsert).Methods(http.MethodPut)
	r.HandleFunc(api.RouteDocument, s.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc(api.RouteLive, s.handleLive).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Handler returns the HTTP handler, for use with httptest or a custom http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.startedAt = time.Now()
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("store server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()

		s.logger.Info("store server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) trackLive(collection string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live[collection] += delta
	if s.live[collection] <= 0 {
		delete(s.live, collection)
	}
	s.metrics.LiveSubscriptions.Add(float64(delta))
}
