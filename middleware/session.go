package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionkit/core/handler"
	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/core/response"
	"github.com/dmitrymomot/sessionkit/core/session"
)

// AuthenticatedFunc handles a request that carries a session.
type AuthenticatedFunc[C handler.Context, T any] func(ctx C, sess T) handler.Response

// SessionConfig holds the fallback behaviour shared by the session handlers.
type SessionConfig struct {
	// Logger for structured logging (default: discards everything)
	Logger *slog.Logger
	// ErrorHandler turns session errors into responses
	// (default: response.Error(SessionError(err)))
	ErrorHandler func(ctx handler.Context, err error) handler.Response
	// Metrics records lookup outcomes and CSRF rejections (default: nil, disabled)
	Metrics *SessionMetrics
	// Strategy labels logs and metrics (default: "session")
	Strategy string
}

// SessionOption configures the session handlers.
type SessionOption func(*SessionConfig)

// WithSessionLogger sets the logger.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(c *SessionConfig) { c.Logger = l }
}

// WithSessionErrorHandler replaces the default error translation.
func WithSessionErrorHandler(h func(ctx handler.Context, err error) handler.Response) SessionOption {
	return func(c *SessionConfig) { c.ErrorHandler = h }
}

// WithSessionMetrics enables Prometheus metrics.
func WithSessionMetrics(m *SessionMetrics) SessionOption {
	return func(c *SessionConfig) { c.Metrics = m }
}

// WithStrategy sets the strategy label used in logs and metrics, e.g. "opaque" or "swt".
func WithStrategy(name string) SessionOption {
	return func(c *SessionConfig) { c.Strategy = name }
}

func newSessionConfig(opts []SessionOption) SessionConfig {
	var cfg SessionConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	if cfg.Strategy == "" {
		cfg.Strategy = "session"
	}
	if cfg.ErrorHandler == nil {
		log := cfg.Logger
		cfg.ErrorHandler = func(ctx handler.Context, err error) handler.Response {
			if errors.Is(err, session.ErrStorage) {
				log.ErrorContext(ctx, "session storage failed",
					logger.Component("session"),
					logger.Path(ctx.Request().URL.Path),
					logger.Error(err),
				)
			}
			return response.Error(SessionError(err))
		}
	}
	return cfg
}

// SessionError maps session errors to HTTP errors:
//
//   - session.ErrNotLoggedIn: 401
//   - session.ErrInvalidInput: 400 "Invalid session"
//   - session.ErrMissingCSRFToken: 403 "Missing CSRF Token"
//   - session.ErrInvalidCSRFToken: 403 "Invalid CSRF Token"
//   - session.ErrAccessDenied: 403
//   - session.ErrStorage: 500 with the generic message
//
// HTTP errors pass through unchanged; anything else is returned as is and
// rendered as a generic 500 by the response package.
func SessionError(err error) error {
	var httpErr response.HTTPError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, session.ErrNotLoggedIn):
		return response.ErrUnauthorized
	case errors.Is(err, session.ErrInvalidInput):
		return response.ErrBadRequest.WithMessage("Invalid session")
	case errors.Is(err, session.ErrMissingCSRFToken):
		return response.ErrForbidden.WithMessage("Missing CSRF Token")
	case errors.Is(err, session.ErrInvalidCSRFToken):
		return response.ErrForbidden.WithMessage("Invalid CSRF Token")
	case errors.Is(err, session.ErrAccessDenied):
		return response.ErrForbidden
	case errors.Is(err, session.ErrStorage):
		return response.ErrInternalServerError
	}
	return err
}

// WithSession dispatches a request to authenticated when the store finds a
// session and to anonymous otherwise. Lookup errors go to the configured
// ErrorHandler: an invalid token is a 400, a backend failure a 500.
//
//	r.Get("/profile", middleware.WithSession(store,
//		middleware.NotLoggedIn[*router.Context](),
//		showProfile,
//	))
func WithSession[C handler.Context, T any](
	store session.Store[T],
	anonymous handler.HandlerFunc[C],
	authenticated AuthenticatedFunc[C, T],
	opts ...SessionOption,
) handler.HandlerFunc[C] {
	if store == nil {
		panic("session middleware: store is required")
	}
	if anonymous == nil || authenticated == nil {
		panic("session middleware: both continuations are required")
	}
	cfg := newSessionConfig(opts)

	return func(ctx C) handler.Response {
		start := time.Now()
		sess, ok, err := store.Lookup(ctx)
		took := time.Since(start)

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return response.Error(ctxErr)
			}
			outcome := OutcomeError
			if errors.Is(err, session.ErrInvalidInput) {
				outcome = OutcomeInvalid
			}
			cfg.Metrics.observeLookup(cfg.Strategy, outcome, took)
			return cfg.ErrorHandler(ctx, err)
		}

		if !ok {
			cfg.Metrics.observeLookup(cfg.Strategy, OutcomeAnonymous, took)
			return anonymous(ctx)
		}
		cfg.Metrics.observeLookup(cfg.Strategy, OutcomeAuthenticated, took)
		return authenticated(ctx, sess)
	}
}

// RequireLogin is WithSession with a 401 for requests without a session.
func RequireLogin[C handler.Context, T any](store session.Store[T], authenticated AuthenticatedFunc[C, T], opts ...SessionOption) handler.HandlerFunc[C] {
	cfg := newSessionConfig(opts)
	anonymous := func(ctx C) handler.Response {
		return cfg.ErrorHandler(ctx, session.ErrNotLoggedIn)
	}
	return WithSession[C, T](store, anonymous, authenticated, opts...)
}

// RequireCSRFToken rejects requests whose CSRF-Token header does not match
// the session token. The comparison is constant time.
func RequireCSRFToken[C handler.Context, T session.Session](next AuthenticatedFunc[C, T], opts ...SessionOption) AuthenticatedFunc[C, T] {
	cfg := newSessionConfig(opts)

	return func(ctx C, sess T) handler.Response {
		if err := session.VerifyCSRFToken(ctx.Request(), sess); err != nil {
			reason := "invalid"
			if errors.Is(err, session.ErrMissingCSRFToken) {
				reason = "missing"
			}
			cfg.Metrics.csrfRejected(reason)
			cfg.Logger.WarnContext(ctx, "csrf check failed",
				logger.Component("session"),
				logger.Method(ctx.Request().Method),
				logger.Path(ctx.Request().URL.Path),
				logger.Result(reason),
			)
			return cfg.ErrorHandler(ctx, err)
		}
		return next(ctx, sess)
	}
}

// Logout deletes the session and answers 204 No Content.
func Logout[C handler.Context, T any](store session.Store[T], opts ...SessionOption) AuthenticatedFunc[C, T] {
	if store == nil {
		panic("session middleware: store is required")
	}
	cfg := newSessionConfig(opts)

	return func(ctx C, _ T) handler.Response {
		if err := store.Delete(ctx); err != nil {
			cfg.Metrics.loggedOut("error")
			return cfg.ErrorHandler(ctx, err)
		}
		cfg.Metrics.loggedOut("success")
		return response.NoContent()
	}
}

type loginStatus struct {
	LoggedIn bool `json:"loggedIn"`
}

// LoggedIn answers {"loggedIn":true}.
func LoggedIn[C handler.Context, T any]() AuthenticatedFunc[C, T] {
	return func(C, T) handler.Response {
		return response.JSON(loginStatus{LoggedIn: true})
	}
}

// NotLoggedIn answers {"loggedIn":false}.
func NotLoggedIn[C handler.Context]() handler.HandlerFunc[C] {
	return func(C) handler.Response {
		return response.JSON(loginStatus{LoggedIn: false})
	}
}

// CSRFToken answers with the session CSRF token as plain text.
func CSRFToken[C handler.Context, T session.Session]() AuthenticatedFunc[C, T] {
	return func(_ C, sess T) handler.Response {
		return response.String(sess.CSRFToken())
	}
}

// IgnoreSession adapts a handler that does not need the session value.
func IgnoreSession[C handler.Context, T any](next handler.HandlerFunc[C]) AuthenticatedFunc[C, T] {
	return func(ctx C, _ T) handler.Response {
		return next(ctx)
	}
}

// AccessDenied always fails with 403 and the given message.
func AccessDenied[C handler.Context](message string) handler.HandlerFunc[C] {
	return func(C) handler.Response {
		return response.Error(response.ErrForbidden.WithMessage(message))
	}
}

type sessionKey struct{}

// LoadSession is a middleware variant for handlers written against
// handler.HandlerFunc: it stores a found session in the request context,
// where GetSession reads it. Requests without a session pass through.
func LoadSession[C handler.Context, T any](store session.Store[T], opts ...SessionOption) handler.Middleware[C] {
	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return WithSession[C, T](store, next, func(ctx C, sess T) handler.Response {
			ctx.SetValue(sessionKey{}, sess)
			return next(ctx)
		}, opts...)
	}
}

// GetSession returns the session stored by LoadSession.
func GetSession[T any](ctx handler.Context) (T, bool) {
	sess, ok := ctx.Value(sessionKey{}).(T)
	return sess, ok
}
