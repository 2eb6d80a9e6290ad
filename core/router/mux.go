package router

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/sessionkit/core/handler"
)

// mux adapts typed handlers onto a chi routing tree.
// Middleware is bound when a route is registered, so Use must precede routes.
type mux[C handler.Context] struct {
	tree         chi.Router
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request) C
	hasRoutes    bool
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		tree:         chi.NewRouter(),
		errorHandler: defaultErrorHandler[C],
	}

	for _, opt := range opts {
		opt(m)
	}

	// Auto-detect Context type if no factory provided
	if m.newContext == nil {
		m.newContext = func(w http.ResponseWriter, r *http.Request) C {
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(NewContext(w, r)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}

	m.tree.NotFound(m.serve(func(C) handler.Response {
		return failWith(routingError{err: ErrNotFound, status: http.StatusNotFound})
	}))
	m.tree.MethodNotAllowed(m.serve(func(C) handler.Response {
		return failWith(routingError{err: ErrMethodNotAllowed, status: http.StatusMethodNotAllowed})
	}))

	return m
}

func failWith(err error) handler.Response {
	return func(http.ResponseWriter, *http.Request) error { return err }
}

// ServeHTTP implements http.Handler interface.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.tree.ServeHTTP(w, r)
}

// serve turns a typed handler into an http.HandlerFunc. Panics and render
// errors are routed to the error handler unless a response was already written.
func (m *mux[C]) serve(h handler.HandlerFunc[C]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww := &responseWriter{ResponseWriter: w}
		ctx := m.newContext(ww, r)

		defer func() {
			if rec := recover(); rec != nil {
				if !ww.Written() {
					m.errorHandler(ctx, toPanicError(rec))
				}
			}
		}()

		resp := h(ctx)
		if resp == nil {
			m.errorHandler(ctx, ErrNilResponse)
			return
		}

		if err := resp(ww, ctx.Request()); err != nil {
			if !ww.Written() {
				m.errorHandler(ctx, err)
			}
		}
	}
}

// Get registers a handler for GET requests.
func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodGet, pattern, h)
}

// Post registers a handler for POST requests.
func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPost, pattern, h)
}

// Put registers a handler for PUT requests.
func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPut, pattern, h)
}

// Delete registers a handler for DELETE requests.
func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodDelete, pattern, h)
}

// Patch registers a handler for PATCH requests.
func (m *mux[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPatch, pattern, h)
}

// Handle registers a handler for all HTTP methods.
func (m *mux[C]) Handle(pattern string, h handler.HandlerFunc[C]) {
	m.handle("", pattern, h)
}

// Use appends middleware to the router.
func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	if m.hasRoutes {
		panic("router: all middlewares must be defined before routes on a mux")
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

// With creates a new inline router with additional middleware.
func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	return &mux[C]{
		tree:         m.tree,
		middlewares:  append(slices.Clone(m.middlewares), middlewares...),
		errorHandler: m.errorHandler,
		newContext:   m.newContext,
	}
}

// Group creates a new inline router for grouping routes.
func (m *mux[C]) Group(fn func(r Router[C])) Router[C] {
	im := m.With()
	if fn != nil {
		fn(im)
	}
	return im
}

// Route creates a new sub-router mounted at the given pattern.
func (m *mux[C]) Route(pattern string, fn func(r Router[C])) Router[C] {
	if fn == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilSubrouter, pattern))
	}

	sub := &mux[C]{
		tree:         chi.NewRouter(),
		middlewares:  slices.Clone(m.middlewares),
		errorHandler: m.errorHandler,
		newContext:   m.newContext,
	}
	sub.tree.NotFound(m.serve(func(C) handler.Response {
		return failWith(routingError{err: ErrNotFound, status: http.StatusNotFound})
	}))
	sub.tree.MethodNotAllowed(m.serve(func(C) handler.Response {
		return failWith(routingError{err: ErrMethodNotAllowed, status: http.StatusMethodNotAllowed})
	}))

	fn(sub)
	m.tree.Mount(pattern, sub.tree)
	m.hasRoutes = true
	return sub
}

func (m *mux[C]) handle(method, pattern string, fn handler.HandlerFunc[C]) {
	if len(pattern) == 0 || pattern[0] != '/' {
		panic(fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern))
	}

	h := m.serve(handler.Chain(m.middlewares, fn))
	if method == "" {
		m.tree.HandleFunc(pattern, h)
	} else {
		m.tree.MethodFunc(method, pattern, h)
	}
	m.hasRoutes = true
}
