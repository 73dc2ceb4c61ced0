// Package middleware holds the HTTP middleware stack wrapped around every
// route: request ids, request logging, panic recovery and security headers.
package middleware

import (
	"fmt"
	"net/http"

	"github.com/conneroisu/folio/internal/config"
	"github.com/conneroisu/folio/internal/logging"
)

// MiddlewareChain manages the HTTP middleware stack.
//
// Middlewares run in the order they were added: the first one added is the
// outermost wrapper and sees the request first.
type MiddlewareChain struct {
	config      *config.Config
	logger      logging.Logger
	middlewares []Middleware
}

// Middleware represents a single middleware function
type Middleware func(http.Handler) http.Handler

// MiddlewareDependencies contains all dependencies needed for middleware construction
type MiddlewareDependencies struct {
	Config *config.Config
	Logger logging.Logger
}

// NewMiddlewareChain creates a chain holding the default stack.
//
// Panics if deps.Config is nil.
func NewMiddlewareChain(deps MiddlewareDependencies) *MiddlewareChain {
	if deps.Config == nil {
		panic("MiddlewareChain: config cannot be nil")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	chain := &MiddlewareChain{
		config:      deps.Config,
		logger:      logger.WithComponent("http"),
		middlewares: make([]Middleware, 0, 4),
	}
	chain.buildDefaultStack()

	return chain
}

// buildDefaultStack constructs the standard middleware stack
func (mc *MiddlewareChain) buildDefaultStack() {
	// Outermost: every later middleware logs through the request logger.
	mc.AddMiddleware(RequestID(mc.logger))
	mc.AddMiddleware(Logging(mc.config.Site.FragmentHeader))
	mc.AddMiddleware(Recovery())
	mc.AddMiddleware(SecurityHeaders())
}

// AddMiddleware appends middleware as the new innermost wrapper.
func (mc *MiddlewareChain) AddMiddleware(middleware Middleware) {
	mc.middlewares = append(mc.middlewares, middleware)
}

// Apply wraps handler in every middleware of the chain.
//
// Panics if handler or any middleware is nil.
func (mc *MiddlewareChain) Apply(handler http.Handler) http.Handler {
	if handler == nil {
		panic("MiddlewareChain.Apply: handler cannot be nil")
	}

	wrapped := handler
	for i := len(mc.middlewares) - 1; i >= 0; i-- {
		middleware := mc.middlewares[i]
		if middleware == nil {
			panic(fmt.Sprintf("MiddlewareChain.Apply: middleware at index %d is nil", i))
		}
		wrapped = middleware(wrapped)
	}

	return wrapped
}

// count returns the number of middlewares in the chain.
func (mc *MiddlewareChain) count() int {
	return len(mc.middlewares)
}
