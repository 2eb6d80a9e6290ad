// Package handler provides the core request-processing types shared by the
// router, the middleware and the session stores.
//
// A handler receives a request context and returns a Response. The Response is a
// deferred render function: nothing is written until the router executes it, so
// middleware can decorate headers (for example Set-Cookie) or short-circuit the
// request by returning a Response that yields an error.
//
//	// Response renders HTTP responses
//	type Response func(w http.ResponseWriter, r *http.Request) error
//
//	// Type-safe handler with custom context
//	type HandlerFunc[C Context] func(ctx C) Response
//
//	// Middleware for handler composition
//	type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]
//
// # Context Interface
//
// Context extends context.Context with HTTP access:
//
//	type Context interface {
//		context.Context
//		Request() *http.Request
//		ResponseWriter() http.ResponseWriter
//		Param(key string) string
//		SetValue(key, val any)
//	}
//
// Because Context is a context.Context, it can be passed straight into blocking
// calls (session backends, databases) and cancellation of the request propagates.
//
// # Error Handling
//
// A handler that wants to fail returns a Response producing an error:
//
//	func profile(ctx handler.Context) handler.Response {
//		return response.Error(response.ErrForbidden)
//	}
//
// The router passes the error to its ErrorHandler, which turns it into an HTTP
// response (see package response).
//
// # Middleware Chains
//
// Chain composes middleware around an endpoint so the first middleware runs first:
//
//	h := handler.Chain([]handler.Middleware[*router.Context]{requestID, logging}, endpoint)
package handler
