package session_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/pkg/token"
)

func newCodec(t *testing.T, keys ...string) *token.Codec {
	t.Helper()
	bs := make([][]byte, len(keys))
	for i, k := range keys {
		bs[i] = []byte(k)
	}
	codec, err := token.NewCodec(bs...)
	require.NoError(t, err)
	return codec
}

func TestTokenStore(t *testing.T) {
	t.Parallel()

	sess := userSession{UserID: "u1", CSRF: "c1"}

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		store := session.NewTokenStore[userSession](newCodec(t, "secret"))

		ctx, w := newContext()
		require.NoError(t, store.Set(ctx, sess))
		tok, ok := issuedCookie(w, "session")
		require.True(t, ok)
		assert.Equal(t, 1, strings.Count(tok, "."))
		assert.True(t, strings.HasSuffix(w.Header().Get("Set-Cookie"), "; Path=/; HttpOnly; Secure; SameSite=Strict"))

		ctx, w = newContext("session=" + tok)
		got, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, sess, got)
		assert.True(t, store.Exists(ctx))
		assert.Empty(t, w.Header().Values("Set-Cookie"), "plain tokens are not re-issued")
	})

	t.Run("no cookie", func(t *testing.T) {
		t.Parallel()
		store := session.NewTokenStore[userSession](newCodec(t, "secret"))

		ctx, _ := newContext()
		_, ok, err := store.Lookup(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = store.Get(ctx)
		assert.ErrorIs(t, err, session.ErrNotLoggedIn)
	})

	t.Run("tampered token is invalid input", func(t *testing.T) {
		t.Parallel()
		codec := newCodec(t, "secret")
		store := session.NewTokenStore[userSession](codec)
		tok, err := codec.Encode(sess)
		require.NoError(t, err)

		forged, err := codec.Encode(userSession{UserID: "admin", CSRF: "c1"})
		require.NoError(t, err)
		payload, _, _ := strings.Cut(forged, ".")
		_, sig, _ := strings.Cut(tok, ".")

		for _, bad := range []string{
			payload + "." + sig,
			tok[:len(tok)-1],
			"garbage",
			tok + ".extra",
		} {
			ctx, _ := newContext("session=" + bad)
			_, ok, err := store.Lookup(ctx)
			assert.False(t, ok)
			assert.ErrorIs(t, err, session.ErrInvalidInput, bad)
			assert.False(t, store.Exists(ctx))
		}
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		t.Parallel()
		issuer := session.NewTokenStore[userSession](newCodec(t, "key-a"))
		verifier := session.NewTokenStore[userSession](newCodec(t, "key-b"))

		ctx, w := newContext()
		require.NoError(t, issuer.Set(ctx, sess))
		tok, _ := issuedCookie(w, "session")

		ctx, _ = newContext("session=" + tok)
		_, err := verifier.Get(ctx)
		assert.ErrorIs(t, err, session.ErrInvalidInput)
	})

	t.Run("rotated key still verifies", func(t *testing.T) {
		t.Parallel()
		old := session.NewTokenStore[userSession](newCodec(t, "old"))
		rotated := session.NewTokenStore[userSession](newCodec(t, "new", "old"))

		ctx, w := newContext()
		require.NoError(t, old.Set(ctx, sess))
		tok, _ := issuedCookie(w, "session")

		ctx, _ = newContext("session=" + tok)
		got, err := rotated.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, sess, got)
	})

	t.Run("delete clears only a present cookie", func(t *testing.T) {
		t.Parallel()
		store := session.NewTokenStore[userSession](newCodec(t, "secret"))

		ctx, w := newContext()
		require.NoError(t, store.Delete(ctx))
		assert.Empty(t, w.Header().Values("Set-Cookie"))

		ctx, w = newContext("session=whatever")
		require.NoError(t, store.Delete(ctx))
		assert.Equal(t, "session=; Path=/; HttpOnly; Secure; SameSite=Strict", w.Header().Get("Set-Cookie"))
	})

	t.Run("second set replaces queued cookie", func(t *testing.T) {
		t.Parallel()
		store := session.NewTokenStore[userSession](newCodec(t, "secret"))

		ctx, w := newContext()
		require.NoError(t, store.Set(ctx, sess))
		w.Header().Add("Set-Cookie", "theme=dark")
		require.NoError(t, store.Set(ctx, userSession{UserID: "u2", CSRF: "c2"}))

		values := w.Header().Values("Set-Cookie")
		require.Len(t, values, 2)
		assert.Equal(t, "theme=dark", values[0])

		tok, _ := issuedCookie(w, "session")
		ctx, _ = newContext("session=" + tok)
		got, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "u2", got.UserID)
	})

	t.Run("nil codec panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { session.NewTokenStore[userSession](nil) })
	})
}
