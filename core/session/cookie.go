package session

import (
	"net/http"
	"strings"
)

// CookieValue returns the value of the first cookie called name.
//
// Every Cookie header line is scanned, and each line is split on ';'. Names and
// values are compared after trimming surrounding whitespace. Unlike
// (*http.Request).Cookie, values are returned as sent, without quote stripping
// or character validation; verification is the caller's job.
func CookieValue(r *http.Request, name string) (string, bool) {
	if r == nil || name == "" {
		return "", false
	}
	for _, line := range r.Header.Values("Cookie") {
		for pair := range strings.SplitSeq(line, ";") {
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				continue
			}
			if strings.TrimSpace(k) == name {
				return strings.TrimSpace(v), true
			}
		}
	}
	return "", false
}

type cookieSpec struct {
	name     string
	path     string
	domain   string
	secure   bool
	sameSite http.SameSite
}

// read returns the cookie value. An empty value is what clear writes, so it
// counts as no session.
func (c cookieSpec) read(r *http.Request) (string, bool) {
	v, ok := CookieValue(r, c.name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// write sets the session cookie, replacing any Set-Cookie for the same name
// already queued on this response.
func (c cookieSpec) write(w http.ResponseWriter, value string) {
	h := w.Header()
	if existing := h.Values("Set-Cookie"); len(existing) > 0 {
		prefix := c.name + "="
		kept := existing[:0:0]
		for _, v := range existing {
			if !strings.HasPrefix(v, prefix) {
				kept = append(kept, v)
			}
		}
		h.Del("Set-Cookie")
		for _, v := range kept {
			h.Add("Set-Cookie", v)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     c.path,
		Domain:   c.domain,
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: c.sameSite,
	})
}

func (c cookieSpec) clear(w http.ResponseWriter) {
	c.write(w, "")
}
