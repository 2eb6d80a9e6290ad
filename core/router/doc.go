// Package router adapts typed handlers (handler.HandlerFunc[C]) onto a
// go-chi routing tree.
//
// Routing itself is delegated to chi; this package adds the typed request
// context, middleware composition over handler.Middleware, panic recovery and a
// single error handler that turns failed responses into HTTP errors.
//
//	r := router.New[*router.Context](
//		router.WithErrorHandler(response.JSONErrorHandler[*router.Context]),
//	)
//	r.Use(middleware.RequestID[*router.Context]())
//	r.Get("/users/{id}", func(ctx *router.Context) handler.Response {
//		return response.String(ctx.Param("id"))
//	})
//	http.ListenAndServe(":8080", r)
//
// Custom context types are supported through WithContextFactory.
package router
