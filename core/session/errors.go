package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoggedIn is returned by Get when the request carries no session.
	ErrNotLoggedIn = errors.New("session: not logged in")
	// ErrInvalidInput is returned when a session token fails verification or decoding.
	ErrInvalidInput = errors.New("session: invalid session")
	// ErrAccessDenied is returned when a request is refused for an established session.
	ErrAccessDenied = errors.New("session: access denied")
	// ErrStorage is returned when the session backend fails.
	ErrStorage = errors.New("session: storage failure")
	// ErrNotFound is returned by a Backend when no value is stored under an id.
	ErrNotFound = errors.New("session: not found")
	// ErrNoSecret is returned when a token store is configured without signing keys.
	ErrNoSecret = errors.New("session: signing secret is required")
)

var (
	// ErrMissingCSRFToken is returned when the CSRF-Token header is absent or empty.
	ErrMissingCSRFToken = fmt.Errorf("%w: missing CSRF token", ErrAccessDenied)
	// ErrInvalidCSRFToken is returned when the CSRF-Token header does not match the session.
	ErrInvalidCSRFToken = fmt.Errorf("%w: invalid CSRF token", ErrAccessDenied)
)
