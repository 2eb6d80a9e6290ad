package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/core/handler"
	"github.com/dmitrymomot/sessionkit/core/response"
	"github.com/dmitrymomot/sessionkit/core/router"
	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/middleware"
	"github.com/dmitrymomot/sessionkit/pkg/token"
)

type userSession struct {
	session.Expiry
	UserID string `json:"uid"`
	CSRF   string `json:"csrf"`
}

func (s userSession) CSRFToken() string { return s.CSRF }

func (s userSession) Renew(at time.Time) userSession {
	s.Expiry = session.NewExpiry(at)
	return s
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// newApp wires the handlers the way an application would.
func newApp(store session.Store[userSession], opts ...middleware.SessionOption) http.Handler {
	type C = *router.Context
	r := router.New[C](router.WithErrorHandler[C](response.JSONErrorHandler[C]))

	r.Post("/login", func(ctx C) handler.Response {
		sess := userSession{
			Expiry: session.NewExpiry(time.Now().Add(time.Hour)),
			UserID: "u1",
			CSRF:   "csrf-u1",
		}
		if err := store.Set(ctx, sess); err != nil {
			return response.Error(middleware.SessionError(err))
		}
		return response.NoContent()
	})
	r.Get("/status", middleware.WithSession(store,
		middleware.NotLoggedIn[C](),
		middleware.LoggedIn[C, userSession](),
		opts...,
	))
	r.Get("/csrf", middleware.RequireLogin(store, middleware.CSRFToken[C, userSession](), opts...))
	r.Post("/profile", middleware.WithSession(store,
		middleware.AccessDenied[C]("Login required"),
		middleware.RequireCSRFToken[C, userSession](func(ctx C, sess userSession) handler.Response {
			return response.String("updated " + sess.UserID)
		}, opts...),
		opts...,
	))
	r.Get("/public", middleware.WithSession(store,
		func(C) handler.Response { return response.String("public") },
		middleware.IgnoreSession[C, userSession](func(C) handler.Response { return response.String("public") }),
		opts...,
	))
	r.Post("/logout", middleware.RequireLogin(store, middleware.Logout[C](store, opts...), opts...))
	return r
}

func do(t *testing.T, h http.Handler, method, path, cookie, csrf string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if cookie != "" {
		req.Header.Set("Cookie", "session="+cookie)
	}
	if csrf != "" {
		req.Header.Set(session.CSRFHeader, csrf)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c.Value
		}
	}
	t.Fatal("no session cookie issued")
	return ""
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func newSWTStore(t *testing.T) *session.SWTStore[userSession] {
	t.Helper()
	codec, err := token.NewCodec([]byte("middleware-test-secret"))
	require.NoError(t, err)
	return session.NewSWTStore[userSession](codec)
}

func TestSessionFlow(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) session.Store[userSession]{
		"opaque": func(*testing.T) session.Store[userSession] {
			return session.NewIDStore[userSession](session.NewMemoryBackend[userSession]())
		},
		"swt": func(t *testing.T) session.Store[userSession] {
			return newSWTStore(t)
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			app := newApp(newStore(t))

			rec := do(t, app, http.MethodGet, "/status", "", "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"loggedIn":false}`, rec.Body.String())

			rec = do(t, app, http.MethodGet, "/csrf", "", "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			rec = do(t, app, http.MethodPost, "/login", "", "")
			require.Equal(t, http.StatusNoContent, rec.Code)
			cookie := sessionCookie(t, rec)

			rec = do(t, app, http.MethodGet, "/status", cookie, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"loggedIn":true}`, rec.Body.String())

			rec = do(t, app, http.MethodGet, "/csrf", cookie, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "csrf-u1", rec.Body.String())

			rec = do(t, app, http.MethodPost, "/profile", cookie, "")
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "Missing CSRF Token", decodeError(t, rec).Message)

			rec = do(t, app, http.MethodPost, "/profile", cookie, "csrf-u2")
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "Invalid CSRF Token", decodeError(t, rec).Message)

			rec = do(t, app, http.MethodPost, "/profile", cookie, "csrf-u1")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "updated u1", rec.Body.String())

			rec = do(t, app, http.MethodGet, "/public", cookie, "")
			assert.Equal(t, "public", rec.Body.String())

			rec = do(t, app, http.MethodPost, "/logout", cookie, "")
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Empty(t, sessionCookie(t, rec))

			rec = do(t, app, http.MethodPost, "/profile", "", "csrf-u1")
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "Login required", decodeError(t, rec).Message)
		})
	}
}

func TestWithSession_OpaqueLogoutRevokes(t *testing.T) {
	t.Parallel()

	app := newApp(session.NewIDStore[userSession](session.NewMemoryBackend[userSession]()))

	cookie := sessionCookie(t, do(t, app, http.MethodPost, "/login", "", ""))
	require.Equal(t, http.StatusNoContent, do(t, app, http.MethodPost, "/logout", cookie, "").Code)

	rec := do(t, app, http.MethodGet, "/status", cookie, "")
	assert.JSONEq(t, `{"loggedIn":false}`, rec.Body.String())
}

func TestWithSession_InvalidInput(t *testing.T) {
	t.Parallel()

	t.Run("forged token is a bad request", func(t *testing.T) {
		t.Parallel()
		app := newApp(newSWTStore(t))

		rec := do(t, app, http.MethodGet, "/status", "eyJ1aWQiOiJhZG1pbiJ9.c2lnbmF0dXJl", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid session", decodeError(t, rec).Message)
	})

	t.Run("unknown opaque id is anonymous", func(t *testing.T) {
		t.Parallel()
		app := newApp(session.NewIDStore[userSession](session.NewMemoryBackend[userSession]()))

		rec := do(t, app, http.MethodGet, "/status", "eyJ1aWQiOiJhZG1pbiJ9.c2lnbmF0dXJl", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"loggedIn":false}`, rec.Body.String())
	})
}

type failingBackend struct{ err error }

func (b failingBackend) Store(context.Context, string, userSession) error { return b.err }

func (b failingBackend) Retrieve(context.Context, string) (userSession, error) {
	return userSession{}, b.err
}

func (b failingBackend) Delete(context.Context, string) error { return b.err }

func TestWithSession_StorageFailure(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, nil))
	cause := errors.New("dial tcp 10.0.0.5:6379: connection refused")
	store := session.NewIDStore[userSession](failingBackend{err: cause})
	app := newApp(store, middleware.WithSessionLogger(log))

	rec := do(t, app, http.MethodGet, "/status", "abc", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "internal_server_error", body.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.Contains(t, logs.String(), "session storage failed")
	assert.Contains(t, logs.String(), "connection refused")
}

func TestWithSession_CustomErrorHandler(t *testing.T) {
	t.Parallel()

	var seen error
	store := newSWTStore(t)
	h := middleware.WithSession(store,
		middleware.NotLoggedIn[*router.Context](),
		middleware.LoggedIn[*router.Context, userSession](),
		middleware.WithSessionErrorHandler(func(ctx handler.Context, err error) handler.Response {
			seen = err
			return response.Status(http.StatusTeapot)
		}),
	)
	r := router.New[*router.Context]()
	r.Get("/", h)

	rec := do(t, r, http.MethodGet, "/", "not-a-token", "")

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.ErrorIs(t, seen, session.ErrInvalidInput)
}

func TestWithSession_RequiresArguments(t *testing.T) {
	t.Parallel()

	store := newSWTStore(t)
	assert.Panics(t, func() {
		middleware.WithSession[*router.Context, userSession](nil,
			middleware.NotLoggedIn[*router.Context](),
			middleware.LoggedIn[*router.Context, userSession]())
	})
	assert.Panics(t, func() {
		middleware.WithSession[*router.Context, userSession](store, nil,
			middleware.LoggedIn[*router.Context, userSession]())
	})
}

func TestSessionError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not logged in", session.ErrNotLoggedIn, http.StatusUnauthorized, "Unauthorized"},
		{"invalid input", errors.Join(session.ErrInvalidInput, token.ErrInvalidToken), http.StatusBadRequest, "Invalid session"},
		{"missing csrf", session.ErrMissingCSRFToken, http.StatusForbidden, "Missing CSRF Token"},
		{"invalid csrf", session.ErrInvalidCSRFToken, http.StatusForbidden, "Invalid CSRF Token"},
		{"access denied", session.ErrAccessDenied, http.StatusForbidden, "Forbidden"},
		{"storage", errors.Join(session.ErrStorage, errors.New("secret detail")), http.StatusInternalServerError, "Internal Server Error"},
		{"http error passes through", response.ErrNotFound, http.StatusNotFound, "Not Found"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			httpErr := response.ToHTTPError(middleware.SessionError(tt.err))
			assert.Equal(t, tt.status, httpErr.Status)
			assert.Equal(t, tt.message, httpErr.Message)
		})
	}

	assert.NoError(t, middleware.SessionError(nil))
}

func TestLoadSession(t *testing.T) {
	t.Parallel()

	type C = *router.Context
	store := session.NewIDStore[userSession](session.NewMemoryBackend[userSession]())
	r := router.New[C]()
	r.Post("/login", func(ctx C) handler.Response {
		if err := store.Set(ctx, userSession{UserID: "u7"}); err != nil {
			return response.Error(err)
		}
		return response.NoContent()
	})
	r.With(middleware.LoadSession[C](store)).Get("/whoami", func(ctx C) handler.Response {
		sess, ok := middleware.GetSession[userSession](ctx)
		if !ok {
			return response.String("anonymous")
		}
		return response.String(sess.UserID)
	})

	assert.Equal(t, "anonymous", do(t, r, http.MethodGet, "/whoami", "", "").Body.String())

	cookie := sessionCookie(t, do(t, r, http.MethodPost, "/login", "", ""))
	assert.Equal(t, "u7", do(t, r, http.MethodGet, "/whoami", cookie, "").Body.String())
}

func TestSessionMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics := middleware.NewSessionMetrics(middleware.WithRegistry(reg))
	app := newApp(
		session.NewIDStore[userSession](session.NewMemoryBackend[userSession]()),
		middleware.WithSessionMetrics(metrics),
		middleware.WithStrategy("opaque"),
	)

	do(t, app, http.MethodGet, "/status", "", "")
	cookie := sessionCookie(t, do(t, app, http.MethodPost, "/login", "", ""))
	do(t, app, http.MethodGet, "/status", cookie, "")
	do(t, app, http.MethodPost, "/profile", cookie, "")
	do(t, app, http.MethodPost, "/profile", cookie, "wrong")
	do(t, app, http.MethodPost, "/logout", cookie, "")

	expected := `
# HELP sessionkit_session_csrf_rejections_total Requests refused by the CSRF check
# TYPE sessionkit_session_csrf_rejections_total counter
sessionkit_session_csrf_rejections_total{reason="invalid"} 1
sessionkit_session_csrf_rejections_total{reason="missing"} 1
# HELP sessionkit_session_logouts_total Logout attempts by result
# TYPE sessionkit_session_logouts_total counter
sessionkit_session_logouts_total{result="success"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"sessionkit_session_csrf_rejections_total",
		"sessionkit_session_logouts_total",
	))

	count, err := testutil.GatherAndCount(reg, "sessionkit_session_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "anonymous and authenticated series")
}

func TestNilSessionMetrics(t *testing.T) {
	t.Parallel()

	app := newApp(newSWTStore(t), middleware.WithSessionMetrics(nil))
	rec := do(t, app, http.MethodGet, "/status", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
