package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionkit/core/config"
	"github.com/dmitrymomot/sessionkit/core/server"
	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/integration/database/pg"
	"github.com/dmitrymomot/sessionkit/integration/database/redis"
)

// Session strategies.
const (
	strategyOpaque = "opaque"
	strategyToken  = "token"
	strategySWT    = "swt"
)

// Backends for the opaque strategy.
const (
	backendMemory   = "memory"
	backendRedis    = "redis"
	backendPostgres = "postgres"
)

var (
	ErrUnknownStrategy = errors.New("unknown session strategy")
	ErrUnknownBackend  = errors.New("unknown session backend")
)

// Config is the sessiond configuration, read from the environment.
type Config struct {
	AppName   string     `env:"APP_NAME" envDefault:"sessiond"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text"`

	Strategy string `env:"SESSION_STRATEGY" envDefault:"opaque"`
	Backend  string `env:"SESSION_BACKEND" envDefault:"memory"`
	// CleanupInterval controls how often expired rows are purged by the
	// memory and postgres backends. Zero disables the janitor.
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`

	Session  session.Config
	Redis    redis.Config
	Postgres pg.Config
	Server   server.Config
}

// loadConfig reads envFile when it exists and parses the environment.
func loadConfig(envFile string) (Config, error) {
	cfg, err := config.Load[Config](envFile)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Strategy {
	case strategyOpaque:
	case strategyToken, strategySWT:
		if len(c.Session.Keys()) == 0 {
			return fmt.Errorf("%s strategy: %w", c.Strategy, session.ErrNoSecret)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Strategy)
	}

	switch c.Backend {
	case backendMemory, backendRedis, backendPostgres:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
}
