package router

import (
	"net/http"

	"github.com/dmitrymomot/sessionkit/core/handler"
)

// Router is the main routing interface for handling HTTP requests.
type Router[C handler.Context] interface {
	http.Handler

	// HTTP method handlers
	Get(pattern string, h handler.HandlerFunc[C])
	Post(pattern string, h handler.HandlerFunc[C])
	Put(pattern string, h handler.HandlerFunc[C])
	Delete(pattern string, h handler.HandlerFunc[C])
	Patch(pattern string, h handler.HandlerFunc[C])

	// Handle registers a handler for all HTTP methods.
	Handle(pattern string, h handler.HandlerFunc[C])

	// Middleware
	Use(middlewares ...handler.Middleware[C])
	With(middlewares ...handler.Middleware[C]) Router[C]

	// Grouping
	Group(fn func(r Router[C])) Router[C]
	Route(pattern string, fn func(r Router[C])) Router[C]
}

// New creates a new router with the given options.
func New[C handler.Context](opts ...Option[C]) Router[C] {
	return newMux[C](opts...)
}
