package session_test

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/dmitrymomot/sessionkit/core/router"
	"github.com/dmitrymomot/sessionkit/core/session"
)

type userSession struct {
	UserID string `json:"uid"`
	CSRF   string `json:"csrf"`
}

func (s userSession) CSRFToken() string { return s.CSRF }

type swtSession struct {
	session.Expiry
	UserID string `json:"uid"`
	CSRF   string `json:"csrf"`
}

func (s swtSession) CSRFToken() string { return s.CSRF }

func (s swtSession) Renew(at time.Time) swtSession {
	s.Expiry = session.NewExpiry(at)
	return s
}

// newContext builds a request context. Each cookie argument becomes a separate Cookie header line.
func newContext(cookies ...string) (*router.Context, *httptest.ResponseRecorder) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		r.Header.Add("Cookie", c)
	}
	w := httptest.NewRecorder()
	return router.NewContext(w, r), w
}

// issuedCookie returns the value of the single Set-Cookie written for name.
func issuedCookie(w *httptest.ResponseRecorder, name string) (string, bool) {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}
