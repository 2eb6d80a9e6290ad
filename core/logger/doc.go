// Package logger provides structured logging helpers built on log/slog.
//
// New builds a *slog.Logger from functional options:
//
//	log := logger.New(
//		logger.WithProduction("sessiond"),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//
// WithDevelopment selects debug-level text output, WithProduction selects
// info-level JSON. Extractors registered with WithContextExtractors run on every
// *Context call (InfoContext, ErrorContext, ...) and append their attribute to
// the record.
//
// The attribute helpers return an empty slog.Attr for nil input so they can be
// passed unconditionally:
//
//	log.ErrorContext(ctx, "session lookup failed",
//		logger.Component("session"),
//		logger.Strategy("opaque"),
//		logger.Error(err),
//	)
//
// Session cookie values and tokens are bearer credentials and must never be
// passed to a logger. Log the cookie name instead (CookieName).
//
// Discard returns a logger that drops everything; components use it as their
// default when no logger is configured.
package logger
