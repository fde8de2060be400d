// Package server exposes resolved framework catalogs over HTTP.
//
// The server runs in one of two modes. In live mode every request resolves
// the configured definition files through the pipeline runner, so edits to
// the files show up on the next request; the content-hash keyed catalog
// cache keeps repeat resolutions cheap. In import mode the server serves a
// frozen catalog loaded from a JSON export, and the lineage endpoint is
// unavailable because a frozen catalog no longer carries raw entries.
//
// Routes:
//
//	GET  /healthz                        liveness and build version
//	GET  /api/v1/frameworks              resolved catalog (ETag on document hash)
//	GET  /api/v1/frameworks/{name}       single definition, case-insensitive
//	GET  /api/v1/frameworks/{name}/image docker image reference
//	GET  /api/v1/lineage                 inheritance diagram (?format=dot|svg|png)
//	GET  /api/v1/snapshots            published snapshots (store required)
//	POST /api/v1/snapshots            publish the current catalog
//	GET  /api/v1/snapshots/latest     most recent snapshot
//	GET  /api/v1/snapshots/{id}       snapshot by id
//	DELETE /api/v1/snapshots/{id}     remove a snapshot
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/benchdef/pkg/framework"
	"github.com/matzehuels/benchdef/pkg/pipeline"
	"github.com/matzehuels/benchdef/pkg/store"
)

// Default listener settings.
const (
	DefaultAddr         = "127.0.0.1:8080"
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 60 * time.Second
)

// Config holds the HTTP listener settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
}

// Deps carries the server's collaborators. Either Runner (live mode) or
// Frozen (import mode) must be set; Store and Logger are optional.
type Deps struct {
	Runner  *pipeline.Runner
	Options pipeline.Options
	Frozen  *framework.Catalog
	Store   store.Store
	Logger  *log.Logger
}

// Server serves resolved framework catalogs over HTTP.
type Server struct {
	cfg    Config
	logger *log.Logger
	runner *pipeline.Runner
	opts   pipeline.Options
	frozen *framework.Catalog
	store  store.Store

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates a server from the given configuration and collaborators.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Runner == nil && deps.Frozen == nil {
		return nil, errors.New("server needs a pipeline runner or an imported catalog")
	}
	cfg.setDefaults()
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
		runner: deps.Runner,
		opts:   deps.Options,
		frozen: deps.Frozen,
		store:  deps.Store,
	}, nil
}

// Handler builds the router. It is exported so tests can drive the server
// through httptest without binding a socket.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logging)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/frameworks", s.handleListFrameworks)
		r.Get("/frameworks/{name}", s.handleGetFramework)
		r.Get("/frameworks/{name}/image", s.handleGetFrameworkImage)
		r.Get("/lineage", s.handleLineage)
		if s.store != nil {
			r.Get("/snapshots", s.handleListSnapshots)
			r.Post("/snapshots", s.handlePublishSnapshot)
			r.Get("/snapshots/latest", s.handleLatestSnapshot)
			r.Get("/snapshots/{id}", s.handleGetSnapshot)
			r.Delete("/snapshots/{id}", s.handleDeleteSnapshot)
		}
	})
	return r
}

// Start binds the TCP listener and begins serving in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return errors.New("server already started")
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.listener = listener

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	if ctx != nil {
		srv.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = srv

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve failed", "error", err)
		}
	}()

	s.logger.Info("listening", "addr", listener.Addr().String())
	return nil
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return nil
	}
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	err := s.server.Shutdown(ctx)
	s.server = nil
	s.listener = nil
	return err
}

// Addr returns the bound address once the server has started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// catalog returns the catalog to serve for this request.
func (s *Server) catalog(ctx context.Context) (*framework.Catalog, error) {
	if s.frozen != nil {
		return s.frozen, nil
	}
	doc, err := s.runner.LoadDocument(ctx, s.opts)
	if err != nil {
		return nil, err
	}
	return s.runner.Resolve(ctx, doc, s.opts)
}
