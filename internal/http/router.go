// Package http owns the listener and the route table. Handlers and
// middleware are injected so the router only deals with routing and server
// lifecycle.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/conneroisu/folio/internal/config"
)

// Router handles HTTP server lifecycle and route registration.
//
// Invariants:
//   - config, mux, handlers and httpServer are non-nil after construction
//   - isShutdown and listenAddr are guarded by serverMutex
type Router struct {
	config     *config.Config
	httpServer *http.Server
	mux        *http.ServeMux
	handler    http.Handler

	serverMutex sync.RWMutex
	isShutdown  bool
	listenAddr  string

	handlers Handlers
}

// Handlers is every endpoint the site serves.
type Handlers interface {
	HandleHome(w http.ResponseWriter, r *http.Request)
	HandlePosts(w http.ResponseWriter, r *http.Request)
	HandlePost(w http.ResponseWriter, r *http.Request)
	HandleProjects(w http.ResponseWriter, r *http.Request)
	HandleProject(w http.ResponseWriter, r *http.Request)
	HandleAbout(w http.ResponseWriter, r *http.Request)
	HandleTag(w http.ResponseWriter, r *http.Request)
	HandleHealth(w http.ResponseWriter, r *http.Request)
	HandleNotFound(w http.ResponseWriter, r *http.Request)

	// Assets serves static files below config.Assets.Prefix.
	Assets() http.Handler
	// LiveReload serves the reload socket, or is nil when live reload is off.
	LiveReload() http.Handler
}

// MiddlewareProvider interface for middleware chain injection
type MiddlewareProvider interface {
	Apply(handler http.Handler) http.Handler
}

// NewRouter creates a router with every route registered.
//
// Panics if any dependency is nil; those are programming errors.
func NewRouter(cfg *config.Config, handlers Handlers, middlewareProvider MiddlewareProvider) *Router {
	if cfg == nil {
		panic("Router: config cannot be nil")
	}
	if handlers == nil {
		panic("Router: handlers cannot be nil")
	}
	if middlewareProvider == nil {
		panic("Router: middlewareProvider cannot be nil")
	}

	router := &Router{
		config:   cfg,
		mux:      http.NewServeMux(),
		handlers: handlers,
	}
	router.registerRoutes()

	router.handler = middlewareProvider.Apply(router.mux)
	router.httpServer = &http.Server{
		Addr:              cfg.Address(),
		Handler:           router.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return router
}

// registerRoutes registers all HTTP routes with their handlers.
func (r *Router) registerRoutes() {
	r.mux.HandleFunc("GET /{$}", r.handlers.HandleHome)
	r.mux.HandleFunc("GET /posts", r.handlers.HandlePosts)
	r.mux.HandleFunc("GET /post/{id}", r.handlers.HandlePost)
	r.mux.HandleFunc("GET /projects", r.handlers.HandleProjects)
	r.mux.HandleFunc("GET /project/{id}", r.handlers.HandleProject)
	r.mux.HandleFunc("GET /about", r.handlers.HandleAbout)
	r.mux.HandleFunc("GET /tag/{tag}", r.handlers.HandleTag)
	r.mux.HandleFunc("GET /health", r.handlers.HandleHealth)

	r.mux.Handle("GET "+r.config.Assets.Prefix, r.handlers.Assets())

	if liveReload := r.handlers.LiveReload(); liveReload != nil {
		r.mux.Handle("GET /ws", liveReload)
	}

	r.mux.HandleFunc("/", r.handlers.HandleNotFound)
}

// Routes returns the bare route table, for internal re-dispatch that must
// not pass through the middleware chain twice.
func (r *Router) Routes() http.Handler {
	return r.mux
}

// Handler returns the route table wrapped in the middleware chain.
func (r *Router) Handler() http.Handler {
	return r.handler
}

// Start listens on the configured address and serves until ctx is cancelled
// or the server fails. On cancellation it shuts down gracefully within
// config.Server.ShutdownTimeout.
func (r *Router) Start(ctx context.Context) error {
	r.serverMutex.RLock()
	server := r.httpServer
	isShutdown := r.isShutdown
	r.serverMutex.RUnlock()

	if isShutdown {
		return fmt.Errorf("Router.Start: router has been shut down")
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("Router.Start: listen on %s: %w", server.Addr, err)
	}

	r.serverMutex.Lock()
	r.listenAddr = listener.Addr().String()
	r.serverMutex.Unlock()

	errChan := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("Router: server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		// ctx is already done; shutdown needs its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), r.config.Server.ShutdownTimeout)
		defer cancel()
		return r.Shutdown(shutdownCtx)

	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return err
	}
}

// Shutdown stops accepting connections and waits for in-flight requests. It
// is idempotent.
func (r *Router) Shutdown(ctx context.Context) error {
	r.serverMutex.Lock()
	defer r.serverMutex.Unlock()

	if r.isShutdown {
		return nil
	}
	r.isShutdown = true

	if err := r.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("Router.Shutdown: server shutdown failed: %w", err)
	}
	return nil
}

// GetAddr returns the bound address once listening, else the configured one.
func (r *Router) GetAddr() string {
	r.serverMutex.RLock()
	defer r.serverMutex.RUnlock()

	if r.listenAddr != "" {
		return r.listenAddr
	}
	return r.httpServer.Addr
}
