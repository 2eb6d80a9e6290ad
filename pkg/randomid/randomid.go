package randomid

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// DefaultLength is the identifier size in bytes used for session ids (256 bits).
const DefaultLength = 32

// ErrInvalidLength is returned when a non-positive length is requested.
var ErrInvalidLength = errors.New("randomid: length must be greater than zero")

// Bytes returns n bytes read from the operating system's CSPRNG.
//
// A failing random source is not a recoverable condition: the process cannot
// issue unpredictable identifiers anymore, so Bytes panics instead of returning an error.
func Bytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, ErrInvalidLength
	}

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("randomid: secure random source unavailable: %v", err))
	}
	return b, nil
}

// Hex returns n random bytes encoded as lowercase hexadecimal (2*n characters).
func Hex(n int) (string, error) {
	b, err := Bytes(n)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// MustHex is like Hex but panics on an invalid length.
func MustHex(n int) string {
	s, err := Hex(n)
	if err != nil {
		panic(err)
	}
	return s
}
