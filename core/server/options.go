package server

import (
	"crypto/tls"
	"log/slog"
	"time"
)

// Option configures server behavior. Zero durations and sizes keep the defaults.
type Option func(*Server)

// WithTLS serves HTTPS with the given configuration.
func WithTLS(config *tls.Config) Option {
	return func(s *Server) { s.tlsConfig = config }
}

// WithLogger sets a custom logger for server lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithShutdownTimeout sets the maximum time to wait for graceful shutdown.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.shutdown = timeout
		}
	}
}

func WithReadTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.readTimeout = timeout
		}
	}
}

func WithWriteTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.writeTimeout = timeout
		}
	}
}

func WithIdleTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.idleTimeout = timeout
		}
	}
}

func WithMaxHeaderBytes(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxHeaderBytes = n
		}
	}
}
