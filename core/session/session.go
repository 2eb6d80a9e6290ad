package session

import "time"

// Session is the contract every session value fulfils.
//
// CSRFToken must be unpredictable to third parties and stay the same for the
// whole lifetime of the session.
type Session interface {
	CSRFToken() string
}

// Renewable is a session value that carries its own expiry.
// Renew returns a copy with the new expiry and all other fields unchanged.
type Renewable[T any] interface {
	Session
	ExpiresAt() time.Time
	Renew(expiresAt time.Time) T
}

// Expiry is an embeddable expiry field serialized as "exp", in milliseconds since the Unix epoch.
//
//	type UserSession struct {
//		session.Expiry
//		UserID string `json:"uid"`
//		CSRF   string `json:"csrf"`
//	}
//
//	func (s UserSession) CSRFToken() string { return s.CSRF }
//
//	func (s UserSession) Renew(at time.Time) UserSession {
//		s.Expiry = session.NewExpiry(at)
//		return s
//	}
type Expiry struct {
	Exp int64 `json:"exp"`
}

// NewExpiry returns an Expiry set to t, truncated to millisecond precision.
func NewExpiry(t time.Time) Expiry {
	return Expiry{Exp: t.UnixMilli()}
}

// ExpiresAt returns the expiry instant.
func (e Expiry) ExpiresAt() time.Time {
	return time.UnixMilli(e.Exp)
}
