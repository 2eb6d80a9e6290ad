// Package middleware provides session-aware handlers and HTTP middleware
// built on core/handler.
//
// # Sessions
//
// WithSession looks up the session through a session.Store and hands the
// request to one of two continuations:
//
//	r.Get("/status", middleware.WithSession(store,
//		middleware.NotLoggedIn[*router.Context](),           // {"loggedIn":false}
//		middleware.LoggedIn[*router.Context, UserSession](), // {"loggedIn":true}
//	))
//
//	r.Post("/profile", middleware.RequireLogin(store,
//		middleware.RequireCSRFToken(updateProfile),
//	))
//
//	r.Post("/logout", middleware.RequireLogin(store, middleware.Logout[*router.Context](store)))
//
// Session errors are translated by SessionError: a missing session is 401, a
// token that fails verification is 400 "Invalid session", a CSRF failure is 403
// with "Missing CSRF Token" or "Invalid CSRF Token", and a backend failure is a
// generic 500 whose cause is only logged. WithSessionErrorHandler replaces the
// translation.
//
// RequireCSRFToken reads the CSRF-Token header and compares it with the
// session token in constant time. Clients fetch the token from a CSRFToken
// route after logging in.
//
// LoadSession is the middleware form: it stores a found session in the request
// context for GetSession and lets anonymous requests through.
//
// # Metrics
//
// NewSessionMetrics registers Prometheus counters for lookup outcomes
// (authenticated, anonymous, invalid, error), CSRF rejections and logouts, plus a
// lookup duration histogram. Pass it with WithSessionMetrics.
//
// # Request ID and logging
//
// RequestID tags requests with a UUID and sets X-Request-ID. RequestIDExtractor
// plugs the id into loggers built with core/logger. Logging writes one access
// log record per request and redacts Cookie, Set-Cookie and CSRF headers when
// headers are logged.
//
// SecurityHeaders sets nosniff, frame and referrer headers, HSTS on TLS
// requests, and Cache-Control: no-store unless the handler chose a policy.
package middleware
