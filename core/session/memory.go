package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBackendClosed is returned by a MemoryBackend after Close.
var ErrBackendClosed = errors.New("session: backend closed")

// MemoryBackend is an in-process Backend with a per-entry TTL.
// It suits tests and single-instance deployments; values are lost on restart.
type MemoryBackend[T any] struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry[T]
	ttl     time.Duration
	now     func() time.Time
	closed  bool
	done    chan struct{}
}

type memoryEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// MemoryOption configures a MemoryBackend.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	ttl             time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// WithTTL sets how long an entry lives after Store. Zero keeps entries until Delete.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(c *memoryConfig) { c.ttl = ttl }
}

// WithCleanupInterval starts a goroutine that drops expired entries periodically.
// Zero (the default) disables it; expired entries are still never returned.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(c *memoryConfig) { c.cleanupInterval = d }
}

// WithMemoryClock replaces time.Now.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(c *memoryConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// NewMemoryBackend creates an empty backend. The default TTL is DefaultDuration.
func NewMemoryBackend[T any](opts ...MemoryOption) *MemoryBackend[T] {
	cfg := memoryConfig{ttl: DefaultDuration, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	b := &MemoryBackend[T]{
		entries: make(map[string]memoryEntry[T]),
		ttl:     cfg.ttl,
		now:     cfg.now,
		done:    make(chan struct{}),
	}
	if cfg.cleanupInterval > 0 {
		go b.cleanupLoop(cfg.cleanupInterval)
	}
	return b
}

func (b *MemoryBackend[T]) Store(ctx context.Context, id string, v T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBackendClosed
	}

	var exp time.Time
	if b.ttl > 0 {
		exp = b.now().Add(b.ttl)
	}
	b.entries[id] = memoryEntry[T]{value: v, expiresAt: exp}
	return nil
}

func (b *MemoryBackend[T]) Retrieve(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return zero, ErrBackendClosed
	}

	e, ok := b.entries[id]
	if !ok || e.expired(b.now()) {
		return zero, ErrNotFound
	}
	return e.value, nil
}

// Delete removes id. Deleting an unknown id is not an error.
func (b *MemoryBackend[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBackendClosed
	}
	delete(b.entries, id)
	return nil
}

// DeleteExpired drops expired entries and returns how many were removed.
func (b *MemoryBackend[T]) DeleteExpired(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrBackendClosed
	}

	now := b.now()
	n := 0
	for id, e := range b.entries {
		if e.expired(now) {
			delete(b.entries, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored entries, expired ones included.
func (b *MemoryBackend[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Close stops the cleanup goroutine and drops all entries.
func (b *MemoryBackend[T]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.done)
	b.entries = nil
	return nil
}

func (b *MemoryBackend[T]) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_, _ = b.DeleteExpired(context.Background())
		case <-b.done:
			return
		}
	}
}

func (e memoryEntry[T]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
