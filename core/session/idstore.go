package session

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/sessionkit/core/handler"
	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/pkg/randomid"
)

// IDStore keeps session values in a Backend and gives the client only a random
// hex id. The id is the sole credential; it is never derived from the value.
type IDStore[T any] struct {
	backend Backend[T]
	s       settings
}

var _ Store[any] = (*IDStore[any])(nil)

// NewIDStore creates an opaque-id store. It panics if backend is nil.
func NewIDStore[T any](backend Backend[T], opts ...Option) *IDStore[T] {
	if backend == nil {
		panic("session: IDStore requires a backend")
	}
	return &IDStore[T]{backend: backend, s: newSettings(opts)}
}

// NewIDStoreFromConfig creates an opaque-id store from configuration.
// Extra options are applied after the config.
func NewIDStoreFromConfig[T any](cfg Config, backend Backend[T], opts ...Option) *IDStore[T] {
	return NewIDStore(backend, append(cfg.Options(), opts...)...)
}

// Set stores v under a fresh id and sets the cookie. A backend failure leaves
// the response without a cookie.
func (s *IDStore[T]) Set(ctx handler.Context, v T) error {
	id, err := randomid.Hex(s.s.idLength)
	if err != nil {
		return fmt.Errorf("session: generate id: %w", err)
	}
	if err := s.backend.Store(ctx, id, v); err != nil {
		s.logFailure(ctx, "store", err)
		return errors.Join(ErrStorage, err)
	}
	s.s.cookie.write(ctx.ResponseWriter(), id)
	return nil
}

// Lookup resolves the cookie id through the backend.
func (s *IDStore[T]) Lookup(ctx handler.Context) (T, bool, error) {
	var zero T
	id, ok := s.s.cookie.read(ctx.Request())
	if !ok {
		return zero, false, nil
	}
	v, err := s.backend.Retrieve(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		s.logFailure(ctx, "retrieve", err)
		return zero, false, errors.Join(ErrStorage, err)
	}
	return v, true, nil
}

func (s *IDStore[T]) Get(ctx handler.Context) (T, error) {
	return get(ctx, s.Lookup)
}

func (s *IDStore[T]) Exists(ctx handler.Context) bool {
	return exists(ctx, s.Lookup, s.s.logger)
}

// Delete removes the value from the backend, then clears the cookie.
func (s *IDStore[T]) Delete(ctx handler.Context) error {
	id, ok := s.s.cookie.read(ctx.Request())
	if !ok {
		return nil
	}
	if err := s.backend.Delete(ctx, id); err != nil {
		s.logFailure(ctx, "delete", err)
		return errors.Join(ErrStorage, err)
	}
	s.s.cookie.clear(ctx.ResponseWriter())
	return nil
}

func (s *IDStore[T]) logFailure(ctx handler.Context, action string, err error) {
	s.s.logger.ErrorContext(ctx, "session backend failed",
		logger.Component("session"),
		logger.Strategy("opaque"),
		logger.Action(action),
		logger.Error(err),
	)
}
