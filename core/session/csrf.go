package session

import (
	"crypto/subtle"
	"net/http"

	"github.com/dmitrymomot/sessionkit/pkg/randomid"
)

// CSRFHeader is the request header carrying the session CSRF token.
const CSRFHeader = "CSRF-Token"

// NewCSRFToken returns a fresh random token suitable for Session.CSRFToken.
func NewCSRFToken() string {
	return randomid.MustHex(randomid.DefaultLength)
}

// VerifyCSRFToken compares the CSRF-Token header of r with sess.CSRFToken()
// in constant time. It returns ErrMissingCSRFToken when the header is absent or
// empty and ErrInvalidCSRFToken on mismatch. Both wrap ErrAccessDenied.
func VerifyCSRFToken(r *http.Request, sess Session) error {
	got := r.Header.Get(CSRFHeader)
	if got == "" {
		return ErrMissingCSRFToken
	}
	want := sess.CSRFToken()
	if want == "" || subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return ErrInvalidCSRFToken
	}
	return nil
}
