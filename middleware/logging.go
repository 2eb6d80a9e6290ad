package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrymomot/sessionkit/core/handler"
	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/core/response"
)

// LoggingConfig configures the access log middleware.
type LoggingConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool
	// Logger is the slog logger to use (default: slog.Default())
	Logger *slog.Logger
	// LogLevel for successful requests (default: slog.LevelInfo)
	LogLevel slog.Level
	// LogHeaders adds request headers to the record (default: false)
	LogHeaders bool
	// SensitiveHeaders are redacted when LogHeaders is set.
	// The default covers session cookies and the CSRF header.
	SensitiveHeaders []string
	// SlowRequestThreshold logs slower requests at warning level (default: 5s)
	SlowRequestThreshold time.Duration
	// Component name for structured logging (default: "http")
	Component string
}

// Logging creates an access log middleware writing to slog.Default().
func Logging[C handler.Context]() handler.Middleware[C] {
	return LoggingWithConfig[C](LoggingConfig{})
}

// LoggingWithLogger creates an access log middleware with a custom logger.
func LoggingWithLogger[C handler.Context](log *slog.Logger) handler.Middleware[C] {
	return LoggingWithConfig[C](LoggingConfig{Logger: log})
}

// LoggingWithConfig creates an access log middleware. It writes one record per
// request once the response has been rendered: 5xx at error level, 4xx and
// slow requests at warning level.
func LoggingWithConfig[C handler.Context](cfg LoggingConfig) handler.Middleware[C] {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.LogLevel == 0 {
		cfg.LogLevel = slog.LevelInfo
	}
	if cfg.SensitiveHeaders == nil {
		cfg.SensitiveHeaders = []string{"Authorization", "Cookie", "Set-Cookie", "Csrf-Token", "X-Csrf-Token"}
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}
	if cfg.Component == "" {
		cfg.Component = "http"
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			start := time.Now()
			req := ctx.Request()
			requestID, _ := GetRequestID(ctx)
			resp := next(ctx)

			return func(w http.ResponseWriter, r *http.Request) error {
				wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
				err := resp(wrapped, r)

				status := wrapped.status
				if err != nil && !wrapped.wroteHeader {
					// the router's error handler renders it after we return
					status = response.ToHTTPError(err).Status
				}
				took := time.Since(start)

				attrs := []slog.Attr{
					logger.Component(cfg.Component),
					logger.Method(req.Method),
					logger.Path(req.URL.Path),
					logger.StatusCode(status),
					logger.Duration(took),
					logger.RequestID(requestID),
				}
				if cfg.LogHeaders {
					attrs = append(attrs, slog.Any("headers", redactHeaders(req.Header, cfg.SensitiveHeaders)))
				}

				level := cfg.LogLevel
				switch {
				case status >= 500:
					level = slog.LevelError
					attrs = append(attrs, logger.Error(err))
				case status >= 400:
					level = slog.LevelWarn
				case took > cfg.SlowRequestThreshold:
					level = slog.LevelWarn
					attrs = append(attrs, slog.Bool("slow_request", true))
				}

				cfg.Logger.LogAttrs(req.Context(), level, "HTTP request completed", attrs...)
				return err
			}
		}
	}
}

func redactHeaders(h http.Header, sensitive []string) map[string]any {
	out := make(map[string]any, len(h))
	for key, values := range h {
		switch {
		case slices.Contains(sensitive, key):
			out[key] = "[REDACTED]"
		case len(values) == 1:
			out[key] = values[0]
		default:
			out[key] = values
		}
	}
	return out
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
