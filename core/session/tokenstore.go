package session

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/sessionkit/core/handler"
	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/pkg/token"
)

// TokenStore keeps the whole session value in a signed cookie. Nothing is
// stored on the server, so issued tokens stay valid until the signing keys
// change. Use SWTStore when sessions must expire.
type TokenStore[T any] struct {
	codec *token.Codec
	s     settings
}

var _ Store[any] = (*TokenStore[any])(nil)

// NewTokenStore creates a signed-token store. It panics if codec is nil.
func NewTokenStore[T any](codec *token.Codec, opts ...Option) *TokenStore[T] {
	if codec == nil {
		panic("session: TokenStore requires a codec")
	}
	return &TokenStore[T]{codec: codec, s: newSettings(opts)}
}

// NewTokenStoreFromConfig creates a signed-token store keyed by cfg.Secrets.
func NewTokenStoreFromConfig[T any](cfg Config, opts ...Option) (*TokenStore[T], error) {
	codec, err := cfg.Codec()
	if err != nil {
		return nil, err
	}
	return NewTokenStore[T](codec, append(cfg.Options(), opts...)...), nil
}

func (s *TokenStore[T]) Set(ctx handler.Context, v T) error {
	return writeToken(ctx, s.codec, s.s, v)
}

// Lookup verifies and decodes the cookie. A cookie that fails verification is
// an error wrapping ErrInvalidInput, not an absent session.
func (s *TokenStore[T]) Lookup(ctx handler.Context) (T, bool, error) {
	return readToken[T](ctx, s.codec, s.s, "token")
}

func (s *TokenStore[T]) Get(ctx handler.Context) (T, error) {
	return get(ctx, s.Lookup)
}

func (s *TokenStore[T]) Exists(ctx handler.Context) bool {
	return exists(ctx, s.Lookup, s.s.logger)
}

// Delete clears the cookie if one was sent. The token itself cannot be revoked.
func (s *TokenStore[T]) Delete(ctx handler.Context) error {
	return clearToken(ctx, s.s)
}

func writeToken(ctx handler.Context, codec *token.Codec, s settings, v any) error {
	tok, err := codec.Encode(v)
	if err != nil {
		return fmt.Errorf("session: encode token: %w", err)
	}
	s.cookie.write(ctx.ResponseWriter(), tok)
	return nil
}

func readToken[T any](ctx handler.Context, codec *token.Codec, s settings, strategy string) (T, bool, error) {
	var v T
	tok, ok := s.cookie.read(ctx.Request())
	if !ok {
		return v, false, nil
	}
	if err := codec.Decode(tok, &v); err != nil {
		s.logger.DebugContext(ctx, "session token rejected",
			logger.Component("session"),
			logger.Strategy(strategy),
			logger.CookieName(s.cookie.name),
			logger.Error(err),
		)
		var zero T
		return zero, false, errors.Join(ErrInvalidInput, err)
	}
	return v, true, nil
}

func clearToken(ctx handler.Context, s settings) error {
	if _, ok := s.cookie.read(ctx.Request()); ok {
		s.cookie.clear(ctx.ResponseWriter())
	}
	return nil
}
