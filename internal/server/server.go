// Package server exposes the page catalog, page snapshots, the contact
// form and the live feed over HTTP.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-drift/nodeward/internal/config"
	"github.com/go-drift/nodeward/pkg/contact"
	"github.com/go-drift/nodeward/pkg/content"
	"github.com/go-drift/nodeward/pkg/errors"
	"github.com/go-drift/nodeward/pkg/monitor"
)

// Options wires a Server's dependencies.
type Options struct {
	Config  config.ServerConfig
	Content config.ContentConfig
	Logger  *zap.Logger
	// Catalog is served until a reload replaces it. Nil uses the embedded
	// catalog.
	Catalog *content.Catalog
	Feed    *monitor.Feed
	Hub     *monitor.Hub
	Store   contact.Store
	// Registerer receives the server's metrics. Nil uses a private
	// registry. A nil Gatherer falls back to Registerer when it is also a
	// Gatherer.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Server is the nodeward HTTP API.
type Server struct {
	log     *zap.Logger
	cfg     config.ServerConfig
	content config.ContentConfig

	catalog atomic.Pointer[content.Catalog]
	feed    *monitor.Feed
	hub     *monitor.Hub
	store   contact.Store

	metrics *serverMetrics
	handler http.Handler
}

// New builds a Server. Store is required.
func New(opts Options) (*Server, error) {
	const op = "server.New"
	if opts.Store == nil {
		return nil, errors.Configuration(op, fmt.Errorf("nil contact store"))
	}
	s := &Server{
		log:     opts.Logger,
		cfg:     opts.Config,
		content: opts.Content,
		feed:    opts.Feed,
		hub:     opts.Hub,
		store:   opts.Store,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.feed == nil {
		s.feed = monitor.NewFeed(0)
	}
	if s.hub == nil {
		s.hub = monitor.NewHub(monitor.WithLogger(s.log), monitor.WithAllowedOrigins(opts.Config.AllowedOrigins...))
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = content.Default()
	}
	s.catalog.Store(catalog)

	registerer, gatherer := opts.Registerer, opts.Gatherer
	if registerer == nil {
		reg := prometheus.NewRegistry()
		registerer, gatherer = reg, reg
	}
	if gatherer == nil {
		g, ok := registerer.(prometheus.Gatherer)
		if !ok {
			return nil, errors.Configuration(op, fmt.Errorf("registerer without a gatherer"))
		}
		gatherer = g
	}
	m, err := newMetrics(registerer, func() float64 { return float64(s.hub.Clients()) })
	if err != nil {
		return nil, errors.Configuration(op, fmt.Errorf("register metrics: %w", err))
	}
	s.metrics = m

	router := mux.NewRouter()
	s.routes(router, gatherer)
	s.handler = s.wrap(router)

	s.log.Info("API created", zap.Strings("allowedOrigins", opts.Config.AllowedOrigins))
	return s, nil
}

func (s *Server) wrap(h http.Handler) http.Handler {
	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(h)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Catalog returns the catalog currently served.
func (s *Server) Catalog() *content.Catalog { return s.catalog.Load() }

// Feed returns the live feed.
func (s *Server) Feed() *monitor.Feed { return s.feed }

// ReloadContent replaces the served catalog with the file at path. The
// old catalog stays in place if the new one does not load.
func (s *Server) ReloadContent(path string) error {
	c, err := content.LoadFile(path)
	if err != nil {
		return err
	}
	s.catalog.Store(c)
	s.log.Info("content reloaded", zap.String("path", path), zap.String("version", c.Version))
	return nil
}

// Run serves on ln until ctx is cancelled, then shuts down gracefully.
// When content watching is enabled the catalog file is reloaded on change.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.New("server.Run", errors.KindTransport, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := srv.Shutdown(sctx)
		s.hub.Close()
		if err != nil {
			_ = srv.Close()
			return errors.New("server.Shutdown", errors.KindTransport, err)
		}
		s.log.Info("server stopped")
		return nil
	})
	if s.content.Watch && s.content.Path != "" {
		g.Go(func() error {
			return config.Watch(gctx, s.content.Path, func() {
				if err := s.ReloadContent(s.content.Path); err != nil {
					s.log.Warn("content reload failed", zap.Error(err))
				}
			})
		})
	}
	return g.Wait()
}
