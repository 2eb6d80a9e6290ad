package session

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/pkg/randomid"
	"github.com/dmitrymomot/sessionkit/pkg/token"
)

// Config provides environment-based configuration for session stores.
type Config struct {
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"session"`
	// IDLength is the number of random bytes in an opaque session id.
	IDLength int           `env:"SESSION_ID_LENGTH" envDefault:"32"`
	Duration time.Duration `env:"SESSION_DURATION" envDefault:"30m"`
	// RenewAutomatically slides the expiry of stateless sessions on every lookup.
	RenewAutomatically bool `env:"SESSION_RENEW_AUTOMATICALLY" envDefault:"true"`
	// Secrets is a comma separated list of signing keys. The first one signs, all verify.
	Secrets  string        `env:"SESSION_SECRETS" envDefault:""`
	Path     string        `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	Domain   string        `env:"SESSION_COOKIE_DOMAIN" envDefault:""`
	Secure   bool          `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
	SameSite http.SameSite `env:"SESSION_COOKIE_SAME_SITE" envDefault:"3"` // SameSiteStrictMode
}

// DefaultConfig returns a Config with the defaults listed in the struct tags.
func DefaultConfig() Config {
	return Config{
		CookieName:         DefaultCookieName,
		IDLength:           randomid.DefaultLength,
		Duration:           DefaultDuration,
		RenewAutomatically: true,
		Path:               "/",
		Secure:             true,
		SameSite:           http.SameSiteStrictMode,
	}
}

// Keys splits Secrets into signing keys, dropping empty entries.
func (c Config) Keys() [][]byte {
	if c.Secrets == "" {
		return nil
	}
	parts := strings.Split(c.Secrets, ",")
	keys := make([][]byte, 0, len(parts))
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			keys = append(keys, []byte(s))
		}
	}
	return keys
}

// Codec builds a token codec from the configured secrets.
func (c Config) Codec() (*token.Codec, error) {
	keys := c.Keys()
	if len(keys) == 0 {
		return nil, ErrNoSecret
	}
	return token.NewCodec(keys...)
}

// Options converts the config into store options.
func (c Config) Options() []Option {
	return []Option{
		WithCookieName(c.CookieName),
		WithIDLength(c.IDLength),
		WithDuration(c.Duration),
		WithRenewal(c.RenewAutomatically),
		WithCookiePath(c.Path),
		WithCookieDomain(c.Domain),
		WithSecure(c.Secure),
		WithSameSite(c.SameSite),
	}
}

const (
	DefaultCookieName = "session"
	DefaultDuration   = 30 * time.Minute
)

type settings struct {
	cookie   cookieSpec
	idLength int
	duration time.Duration
	renew    bool
	now      func() time.Time
	logger   *slog.Logger
}

func newSettings(opts []Option) settings {
	s := settings{
		cookie: cookieSpec{
			name:     DefaultCookieName,
			path:     "/",
			secure:   true,
			sameSite: http.SameSiteStrictMode,
		},
		idLength: randomid.DefaultLength,
		duration: DefaultDuration,
		renew:    true,
		now:      time.Now,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures a session store.
type Option func(*settings)

// WithCookieName sets the session cookie name. Empty names are ignored.
func WithCookieName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.cookie.name = name
		}
	}
}

// WithCookiePath sets the cookie Path attribute. Empty paths are ignored.
func WithCookiePath(path string) Option {
	return func(s *settings) {
		if path != "" {
			s.cookie.path = path
		}
	}
}

// WithCookieDomain sets the cookie Domain attribute.
func WithCookieDomain(domain string) Option {
	return func(s *settings) {
		s.cookie.domain = domain
	}
}

// WithSecure toggles the Secure attribute. Disable it only for plain-HTTP development.
func WithSecure(secure bool) Option {
	return func(s *settings) {
		s.cookie.secure = secure
	}
}

// WithSameSite sets the SameSite attribute. Zero leaves the default (Strict).
func WithSameSite(mode http.SameSite) Option {
	return func(s *settings) {
		if mode != 0 {
			s.cookie.sameSite = mode
		}
	}
}

// WithIDLength sets the number of random bytes in opaque session ids.
// Non-positive values are ignored.
func WithIDLength(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.idLength = n
		}
	}
}

// WithDuration sets the session duration used for expiry and renewal.
// Non-positive values are ignored.
func WithDuration(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.duration = d
		}
	}
}

// WithRenewal toggles sliding renewal of stateless sessions.
func WithRenewal(enabled bool) Option {
	return func(s *settings) {
		s.renew = enabled
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger. Stores log at debug level for rejected input and
// at error level for backend failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
