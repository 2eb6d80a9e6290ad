package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/sessionkit/core/session"
)

func TestCookieValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers []string
		want    string
		found   bool
	}{
		{name: "single pair", headers: []string{"session=abc"}, want: "abc", found: true},
		{name: "among other pairs", headers: []string{"theme=dark; session=abc; lang=en"}, want: "abc", found: true},
		{name: "whitespace is trimmed", headers: []string{"a=1;   session = abc  ;b=2"}, want: "abc", found: true},
		{name: "first match wins", headers: []string{"session=first; session=second"}, want: "first", found: true},
		{name: "second header line", headers: []string{"theme=dark", "session=abc"}, want: "abc", found: true},
		{name: "first header line wins", headers: []string{"session=one", "session=two"}, want: "one", found: true},
		{name: "name must match exactly", headers: []string{"sessionid=x; my_session=y"}, found: false},
		{name: "prefix name skipped", headers: []string{"sessionx=1; session=2"}, want: "2", found: true},
		{name: "pair without equals ignored", headers: []string{"session; session=ok"}, want: "ok", found: true},
		{name: "value keeps equals signs", headers: []string{"session=a=b"}, want: "a=b", found: true},
		{name: "empty value", headers: []string{"session="}, want: "", found: true},
		{name: "no header", headers: nil, found: false},
		{name: "empty header", headers: []string{""}, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			for _, h := range tt.headers {
				r.Header.Add("Cookie", h)
			}

			got, ok := session.CookieValue(r, "session")
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("nil request", func(t *testing.T) {
		t.Parallel()
		_, ok := session.CookieValue(nil, "session")
		assert.False(t, ok)
	})
}
