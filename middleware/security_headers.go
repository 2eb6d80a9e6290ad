package middleware

import (
	"net/http"

	"github.com/dmitrymomot/sessionkit/core/handler"
)

// SecurityHeadersConfig lists the headers added to every response.
// Empty fields are not sent.
type SecurityHeadersConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool

	ContentTypeOptions      string
	FrameOptions            string
	ReferrerPolicy          string
	StrictTransportSecurity string

	// CacheControl is set only when the handler did not set one itself.
	// Responses carrying session cookies or CSRF tokens must not be stored
	// by shared caches.
	CacheControl string
}

// DefaultSecurityHeaders suits a cookie-session API served over HTTPS.
var DefaultSecurityHeaders = SecurityHeadersConfig{
	ContentTypeOptions:      "nosniff",
	FrameOptions:            "DENY",
	ReferrerPolicy:          "no-referrer",
	StrictTransportSecurity: "max-age=31536000; includeSubDomains",
	CacheControl:            "no-store",
}

// SecurityHeaders adds DefaultSecurityHeaders to every response.
func SecurityHeaders[C handler.Context]() handler.Middleware[C] {
	return SecurityHeadersWithConfig[C](DefaultSecurityHeaders)
}

// SecurityHeadersWithConfig adds the configured headers to every response.
// HSTS is only sent on TLS requests.
func SecurityHeadersWithConfig[C handler.Context](cfg SecurityHeadersConfig) handler.Middleware[C] {
	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			h := ctx.ResponseWriter().Header()
			setIfNotEmpty(h, "X-Content-Type-Options", cfg.ContentTypeOptions)
			setIfNotEmpty(h, "X-Frame-Options", cfg.FrameOptions)
			setIfNotEmpty(h, "Referrer-Policy", cfg.ReferrerPolicy)
			if ctx.Request().TLS != nil {
				setIfNotEmpty(h, "Strict-Transport-Security", cfg.StrictTransportSecurity)
			}

			resp := next(ctx)
			if resp == nil || cfg.CacheControl == "" {
				return resp
			}
			return func(w http.ResponseWriter, r *http.Request) error {
				if w.Header().Get("Cache-Control") == "" {
					w.Header().Set("Cache-Control", cfg.CacheControl)
				}
				return resp(w, r)
			}
		}
	}
}

func setIfNotEmpty(h http.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}
