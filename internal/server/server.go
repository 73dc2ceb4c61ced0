// Package server wires the content pipeline to HTTP.
//
// Every content route answers in one of two modes. A request carrying the
// fragment header (HX-Request by default) gets the route's HTML fragment. Any
// other request is a full navigation and gets the Shell, whose content
// element fetches the same route as a fragment once loaded.
package server

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/conneroisu/folio/internal/config"
	"github.com/conneroisu/folio/internal/content"
	fhttp "github.com/conneroisu/folio/internal/http"
	"github.com/conneroisu/folio/internal/logging"
	"github.com/conneroisu/folio/internal/markdown"
	"github.com/conneroisu/folio/internal/middleware"
	"github.com/conneroisu/folio/internal/site"
)

// Options carries the dependencies New does not build from configuration.
// Nil fields fall back to the directories named in the configuration.
type Options struct {
	// Content is rooted at the content root.
	Content afero.Fs
	// Assets is rooted at the assets directory.
	Assets afero.Fs
	Logger logging.Logger
}

// Server is the composition root: it owns the router, the pipeline and, in
// development, the live reload hub.
type Server struct {
	config   *config.Config
	store    *content.Store
	pipeline *site.Pipeline
	sections site.Sections
	assets   http.FileSystem
	logger   logging.Logger

	router *fhttp.Router
	routes http.Handler
	hub    *Hub

	shutdownOnce sync.Once
}

// New builds a server for cfg.
func New(cfg *config.Config, opts Options) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server: config cannot be nil")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	contentFs := opts.Content
	if contentFs == nil {
		fs, err := dirFs(cfg.Content.Root)
		if err != nil {
			return nil, fmt.Errorf("content root: %w", err)
		}
		contentFs = fs
	}

	assetsFs := opts.Assets
	if assetsFs == nil {
		fs, err := dirFs(cfg.Assets.Dir)
		if err != nil {
			return nil, fmt.Errorf("assets dir: %w", err)
		}
		assetsFs = fs
	}

	sections, err := site.NewSections(cfg.Content)
	if err != nil {
		return nil, fmt.Errorf("content sections: %w", err)
	}

	store := content.NewStore(contentFs)
	s := &Server{
		config:   cfg,
		store:    store,
		pipeline: site.NewPipeline(store, markdown.NewRenderer(), logger),
		sections: sections,
		assets:   afero.NewHttpFs(assetsFs),
		logger:   logger.WithComponent("server"),
	}

	if cfg.Development.LiveReload {
		s.hub = NewHub(logger)
	}

	chain := middleware.NewMiddlewareChain(middleware.MiddlewareDependencies{
		Config: cfg,
		Logger: logger,
	})
	s.router = fhttp.NewRouter(cfg, s, chain)
	s.routes = s.router.Routes()

	return s, nil
}

// dirFs returns a read-only filesystem rooted at dir.
func dirFs(dir string) (afero.Fs, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), abs)), nil
}

// Handler returns the complete HTTP handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.router.Handler()
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.router.GetAddr()
}

// Start serves until ctx is cancelled, then shuts down gracefully. With live
// reload on, it also watches the content and asset directories.
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.hub != nil {
		stop, err := s.watchContent(ctx)
		if err != nil {
			return fmt.Errorf("starting live reload: %w", err)
		}
		defer stop()
	}

	s.logger.Info(ctx, "server starting",
		"addr", s.config.Address(),
		"environment", s.config.Server.Environment,
		"content_root", s.config.Content.Root,
		"live_reload", s.hub != nil)

	err := s.router.Start(ctx)
	s.closeHub()

	if err != nil {
		return err
	}
	s.logger.Info(context.WithoutCancel(ctx), "server stopped")
	return nil
}

// Shutdown stops the server and closes live reload connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeHub()
	return s.router.Shutdown(ctx)
}

func (s *Server) closeHub() {
	s.shutdownOnce.Do(func() {
		if s.hub != nil {
			s.hub.Close()
		}
	})
}
