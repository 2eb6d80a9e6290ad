package session

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/sessionkit/core/handler"
	"github.com/dmitrymomot/sessionkit/core/logger"
)

// Store keeps a session value of type T for the client behind a request.
//
// Every implementation reads the session cookie from ctx.Request() and writes
// Set-Cookie headers to ctx.ResponseWriter(), so Set and Delete must be called
// before the response body is written.
type Store[T any] interface {
	// Set saves v as the current session and emits the session cookie.
	Set(ctx handler.Context, v T) error
	// Lookup returns the current session. A missing, unknown or expired session
	// is reported as ok == false with a nil error.
	Lookup(ctx handler.Context) (v T, ok bool, err error)
	// Get is Lookup that reports a missing session as ErrNotLoggedIn.
	Get(ctx handler.Context) (T, error)
	// Delete ends the current session and clears the cookie. Without a session it is a no-op.
	Delete(ctx handler.Context) error
	// Exists reports whether Lookup would find a session. Errors count as false.
	Exists(ctx handler.Context) bool
}

// Backend maps opaque session ids to values.
//
// Retrieve returns ErrNotFound for unknown or evicted ids. After Delete returns,
// Retrieve for the same id must report ErrNotFound. Eviction policy belongs to
// the backend.
type Backend[T any] interface {
	Store(ctx context.Context, id string, v T) error
	Retrieve(ctx context.Context, id string) (T, error)
	Delete(ctx context.Context, id string) error
}

func get[T any](ctx handler.Context, lookup func(handler.Context) (T, bool, error)) (T, error) {
	v, ok, err := lookup(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if !ok {
		var zero T
		return zero, ErrNotLoggedIn
	}
	return v, nil
}

func exists[T any](ctx handler.Context, lookup func(handler.Context) (T, bool, error), log *slog.Logger) bool {
	_, ok, err := lookup(ctx)
	if err != nil {
		log.DebugContext(ctx, "session lookup failed", logger.Action("exists"), logger.Error(err))
		return false
	}
	return ok
}
