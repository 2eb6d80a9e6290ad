package session

import (
	"github.com/dmitrymomot/sessionkit/core/handler"
	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/pkg/token"
)

// SWTStore is a signed-token store whose values carry an expiry.
//
// A token is treated as expired once its expiry lies more than the configured
// duration in the past. Otherwise, with renewal enabled, every lookup moves the
// expiry to now + duration and re-issues the cookie.
type SWTStore[T Renewable[T]] struct {
	codec *token.Codec
	s     settings
}

// NewSWTStore creates an expiring signed-token store. It panics if codec is nil.
func NewSWTStore[T Renewable[T]](codec *token.Codec, opts ...Option) *SWTStore[T] {
	if codec == nil {
		panic("session: SWTStore requires a codec")
	}
	return &SWTStore[T]{codec: codec, s: newSettings(opts)}
}

// NewSWTStoreFromConfig creates an expiring signed-token store keyed by cfg.Secrets.
func NewSWTStoreFromConfig[T Renewable[T]](cfg Config, opts ...Option) (*SWTStore[T], error) {
	codec, err := cfg.Codec()
	if err != nil {
		return nil, err
	}
	return NewSWTStore[T](codec, append(cfg.Options(), opts...)...), nil
}

// Set issues a token for v as is. Callers choose the initial expiry, usually
// with NewExpiry(time.Now().Add(duration)).
func (s *SWTStore[T]) Set(ctx handler.Context, v T) error {
	return writeToken(ctx, s.codec, s.s, v)
}

func (s *SWTStore[T]) Lookup(ctx handler.Context) (T, bool, error) {
	var zero T
	v, ok, err := readToken[T](ctx, s.codec, s.s, "swt")
	if err != nil || !ok {
		return zero, false, err
	}

	now := s.s.now()
	if v.ExpiresAt().Before(now.Add(-s.s.duration)) {
		s.s.logger.DebugContext(ctx, "session token expired",
			logger.Component("session"),
			logger.Strategy("swt"),
			logger.Key("expired_at", v.ExpiresAt()),
		)
		return zero, false, nil
	}
	if !s.s.renew {
		return v, true, nil
	}

	renewed := v.Renew(now.Add(s.s.duration))
	if err := s.Set(ctx, renewed); err != nil {
		return zero, false, err
	}
	return renewed, true, nil
}

func (s *SWTStore[T]) Get(ctx handler.Context) (T, error) {
	return get(ctx, s.Lookup)
}

func (s *SWTStore[T]) Exists(ctx handler.Context) bool {
	return exists(ctx, s.Lookup, s.s.logger)
}

// Delete clears the cookie if one was sent. Issued tokens remain valid until they expire.
func (s *SWTStore[T]) Delete(ctx handler.Context) error {
	return clearToken(ctx, s.s)
}
