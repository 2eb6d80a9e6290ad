package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrLoadEnvFile = errors.New("config: failed to load env file")
	ErrParseEnv    = errors.New("config: failed to parse environment")
)

// Load reads files into the process environment and parses it into T.
func Load[T any](files ...string) (T, error) {
	var zero T
	for _, f := range files {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return zero, errors.Join(ErrLoadEnvFile, fmt.Errorf("%s: %w", f, err))
		}
	}

	cfg, err := env.ParseAs[T]()
	if err != nil {
		return zero, errors.Join(ErrParseEnv, err)
	}
	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad[T any](files ...string) T {
	cfg, err := Load[T](files...)
	if err != nil {
		panic(err)
	}
	return cfg
}
