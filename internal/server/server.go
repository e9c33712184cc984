// Package server exposes a catalog snapshot over a read-only HTTP JSON
// API. Reload builds a new snapshot and swaps it in atomically.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tayloree/order-catalog/internal/catalog"
	"github.com/tayloree/order-catalog/internal/category"
	"github.com/tayloree/order-catalog/internal/logger"
	"github.com/tayloree/order-catalog/internal/names"
)

// ErrNoSources is returned by Reload when the server has no loader.
var ErrNoSources = errors.New("no sources configured")

// SnapshotLoader builds a fresh snapshot from the configured sources.
type SnapshotLoader interface {
	Load(ctx context.Context) (*catalog.Snapshot, error)
}

// Options configures a Server.
type Options struct {
	Loader     SnapshotLoader
	Parser     *names.Parser
	Classifier *category.Classifier
	Logger     *logger.Logger
	Registry   *prometheus.Registry
}

// Server serves one snapshot at a time.
type Server struct {
	loader     SnapshotLoader
	parser     *names.Parser
	classifier *category.Classifier
	log        *logger.Logger
	metrics    *Metrics
	registry   *prometheus.Registry

	snap     atomic.Pointer[catalog.Snapshot]
	reloadMu sync.Mutex
}

// New builds a server with an empty snapshot. Call Reload or Install
// before serving real data.
func New(opts Options) *Server {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{
		loader:     opts.Loader,
		parser:     opts.Parser,
		classifier: opts.Classifier,
		log:        opts.Logger,
		metrics:    NewMetrics(reg),
		registry:   reg,
	}
	if s.parser == nil {
		s.parser = names.New(names.DefaultOptions())
	}
	if s.classifier == nil {
		s.classifier = category.Default()
	}
	s.Install(catalog.Aggregate(nil))
	return s
}

// Snapshot returns the snapshot currently served.
func (s *Server) Snapshot() *catalog.Snapshot { return s.snap.Load() }

// Install makes snap the served snapshot.
func (s *Server) Install(snap *catalog.Snapshot) {
	s.snap.Store(snap)
	s.metrics.ObserveSnapshot(snap)
}

// Reload builds a new snapshot and installs it. On failure the previous
// snapshot keeps being served. Concurrent reloads run one at a time.
func (s *Server) Reload(ctx context.Context) (*catalog.Snapshot, error) {
	if s.loader == nil {
		return nil, ErrNoSources
	}
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	snap, err := s.loader.Load(ctx)
	s.metrics.IncReload(err == nil)
	if err != nil {
		s.log.Error(ctx, "reload failed", err)
		return nil, err
	}
	s.Install(snap)
	return snap, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		recoverer(s.log),
		requestID(s.log),
		logging(s.log, s.metrics),
	)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/groups", s.handleGroups)
		r.Get("/groups/{key}", s.handleGroup)
		r.Get("/groups/{key}/chart", s.handleChart)
		r.Get("/categories", s.handleCategories)
		r.Get("/parse", s.handleParse)
		r.Post("/reload", s.handleReload)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(s.log.WithField(ctx, "addr", addr), "server.listen")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
