package pgstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/integration/database/pg"
)

const (
	DefaultTable = "sessions"
	DefaultTTL   = session.DefaultDuration
)

// DB is the subset of *pgxpool.Pool and pgx.Tx used by the backend.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Backend stores JSON-encoded session values in a PostgreSQL table.
//
// Every query runs inside the transaction carried by the context (see
// pg.WithTx) when there is one, so a login can be stored atomically with other
// writes.
type Backend[T any] struct {
	db    DB
	table string
	ttl   time.Duration
	now   func() time.Time

	upsertSQL        string
	selectSQL        string
	deleteSQL        string
	deleteExpiredSQL string
}

var _ session.Backend[any] = (*Backend[any])(nil)

type Option func(*config)

type config struct {
	table string
	ttl   time.Duration
	now   func() time.Time
}

// WithTable sets the table name (default "sessions"). It is quoted as an identifier.
func WithTable(name string) Option {
	return func(c *config) {
		if name != "" {
			c.table = name
		}
	}
}

// WithTTL sets how long rows stay valid after Store. Zero stores rows without expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) { c.ttl = ttl }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a PostgreSQL backend. It panics if db is nil.
func New[T any](db DB, opts ...Option) *Backend[T] {
	if db == nil {
		panic("pgstore: db is required")
	}
	cfg := config{table: DefaultTable, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	table := pgx.Identifier{cfg.table}.Sanitize()
	return &Backend[T]{
		db:    db,
		table: table,
		ttl:   cfg.ttl,
		now:   cfg.now,

		upsertSQL: `INSERT INTO ` + table + ` (id, data, expires_at) VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at`,
		selectSQL:        `SELECT data FROM ` + table + ` WHERE id = $1 AND (expires_at IS NULL OR expires_at > $2)`,
		deleteSQL:        `DELETE FROM ` + table + ` WHERE id = $1`,
		deleteExpiredSQL: `DELETE FROM ` + table + ` WHERE expires_at IS NOT NULL AND expires_at <= $1`,
	}
}

// Schema returns the DDL for the backend table.
func (b *Backend[T]) Schema() string {
	return `CREATE TABLE IF NOT EXISTS ` + b.table + ` (
	id         TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	expires_at TIMESTAMPTZ
)`
}

// Migrate creates the table if it does not exist.
func (b *Backend[T]) Migrate(ctx context.Context) error {
	if _, err := b.conn(ctx).Exec(ctx, b.Schema()); err != nil {
		return fmt.Errorf("pgstore: migrate: %w", err)
	}
	return nil
}

func (b *Backend[T]) Store(ctx context.Context, id string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("pgstore: encode session: %w", err)
	}
	var expiresAt *time.Time
	if b.ttl > 0 {
		t := b.now().Add(b.ttl)
		expiresAt = &t
	}
	if _, err := b.conn(ctx).Exec(ctx, b.upsertSQL, id, data, expiresAt); err != nil {
		return fmt.Errorf("pgstore: store: %w", err)
	}
	return nil
}

// Retrieve returns session.ErrNotFound for unknown or expired rows.
func (b *Backend[T]) Retrieve(ctx context.Context, id string) (T, error) {
	var v T
	var data []byte
	err := b.conn(ctx).QueryRow(ctx, b.selectSQL, id, b.now()).Scan(&data)
	if pg.IsNotFoundError(err) {
		return v, session.ErrNotFound
	}
	if err != nil {
		return v, fmt.Errorf("pgstore: retrieve: %w", err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("pgstore: decode session: %w", err)
	}
	return v, nil
}

func (b *Backend[T]) Delete(ctx context.Context, id string) error {
	if _, err := b.conn(ctx).Exec(ctx, b.deleteSQL, id); err != nil {
		return fmt.Errorf("pgstore: delete: %w", err)
	}
	return nil
}

// DeleteExpired removes expired rows and returns how many were deleted.
func (b *Backend[T]) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := b.conn(ctx).Exec(ctx, b.deleteExpiredSQL, b.now())
	if err != nil {
		return 0, fmt.Errorf("pgstore: delete expired: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (b *Backend[T]) conn(ctx context.Context) DB {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return tx
	}
	return b.db
}
