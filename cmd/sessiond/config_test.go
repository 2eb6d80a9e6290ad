package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/core/session"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := loadConfig("")
		require.NoError(t, err)
		assert.Equal(t, strategyOpaque, cfg.Strategy)
		assert.Equal(t, backendMemory, cfg.Backend)
		assert.Equal(t, "session", cfg.Session.CookieName)
		assert.Equal(t, 30*time.Minute, cfg.Session.Duration)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.ConnectionURL)
	})

	t.Run("missing env file is ignored", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), ".env"))
		require.NoError(t, err)
	})

	t.Run("env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("SESSION_STRATEGY=swt\nSESSION_SECRETS=k1,k2\nSESSION_DURATION=10m\n"), 0o600))
		t.Cleanup(func() {
			os.Unsetenv("SESSION_STRATEGY")
			os.Unsetenv("SESSION_SECRETS")
			os.Unsetenv("SESSION_DURATION")
		})

		cfg, err := loadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, strategySWT, cfg.Strategy)
		assert.Len(t, cfg.Session.Keys(), 2)
		assert.Equal(t, 10*time.Minute, cfg.Session.Duration)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		t.Setenv("SESSION_STRATEGY", "jwt")
		_, err := loadConfig("")
		assert.ErrorIs(t, err, ErrUnknownStrategy)
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("SESSION_BACKEND", "mongo")
		_, err := loadConfig("")
		assert.ErrorIs(t, err, ErrUnknownBackend)
	})

	t.Run("signed strategy needs secrets", func(t *testing.T) {
		t.Setenv("SESSION_STRATEGY", "token")
		_, err := loadConfig("")
		assert.ErrorIs(t, err, session.ErrNoSecret)
	})
}
