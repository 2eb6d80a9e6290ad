package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessionkit/core/session"
)

const (
	DefaultPrefix = "session:"
	DefaultTTL    = session.DefaultDuration
)

// Backend stores JSON-encoded session values under prefixed keys with a TTL.
// Expiry is left to Redis.
type Backend[T any] struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ session.Backend[any] = (*Backend[any])(nil)

type Option func(*config)

type config struct {
	prefix string
	ttl    time.Duration
}

// WithPrefix sets the key prefix (default "session:").
func WithPrefix(prefix string) Option {
	return func(c *config) { c.prefix = prefix }
}

// WithTTL sets the key lifetime. Zero stores keys without expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) { c.ttl = ttl }
}

// New creates a Redis backend. It panics if client is nil.
func New[T any](client redis.UniversalClient, opts ...Option) *Backend[T] {
	if client == nil {
		panic("redisstore: client is required")
	}
	cfg := config{prefix: DefaultPrefix, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Backend[T]{client: client, prefix: cfg.prefix, ttl: cfg.ttl}
}

func (b *Backend[T]) Store(ctx context.Context, id string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redisstore: encode session: %w", err)
	}
	if err := b.client.Set(ctx, b.key(id), data, b.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: set: %w", err)
	}
	return nil
}

// Retrieve returns session.ErrNotFound for missing or expired keys.
func (b *Backend[T]) Retrieve(ctx context.Context, id string) (T, error) {
	var v T
	data, err := b.client.Get(ctx, b.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, session.ErrNotFound
	}
	if err != nil {
		return v, fmt.Errorf("redisstore: get: %w", err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("redisstore: decode session: %w", err)
	}
	return v, nil
}

func (b *Backend[T]) Delete(ctx context.Context, id string) error {
	if err := b.client.Del(ctx, b.key(id)).Err(); err != nil {
		return fmt.Errorf("redisstore: del: %w", err)
	}
	return nil
}

func (b *Backend[T]) key(id string) string {
	return b.prefix + id
}
