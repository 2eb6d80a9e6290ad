// Package randomid generates unpredictable identifiers for session ids, CSRF
// tokens and signing secrets.
//
// Identifiers are drawn from crypto/rand and rendered as lowercase hex:
//
//	id, err := randomid.Hex(randomid.DefaultLength) // 64 hex characters
//
// The only validated input is the length, which must be positive
// (ErrInvalidLength). If the secure random source fails the functions panic,
// since no caller can safely continue without it.
package randomid
