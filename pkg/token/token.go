package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

const separator = "."

// Codec signs and verifies tokens of the form
// base64url(JSON(v)) "." base64url(HMAC-SHA256(key, base64url(JSON(v)))).
//
// The first key signs new tokens; every key is accepted during verification,
// which allows rotating secrets without logging everybody out.
// A Codec is immutable and safe for concurrent use.
type Codec struct {
	keys [][]byte
}

// NewCodec creates a codec. Empty keys are ignored; at least one key must remain.
func NewCodec(keys ...[]byte) (*Codec, error) {
	c := &Codec{keys: make([][]byte, 0, len(keys))}
	for _, k := range keys {
		if len(k) == 0 {
			continue
		}
		c.keys = append(c.keys, append([]byte(nil), k...))
	}
	if len(c.keys) == 0 {
		return nil, ErrNoKey
	}
	return c, nil
}

// Encode serializes v to JSON and returns the signed token.
func (c *Codec) Encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Join(ErrEncode, err)
	}

	payload := base64.RawURLEncoding.EncodeToString(data)
	return payload + separator + sign(c.keys[0], payload), nil
}

// Decode verifies tok and unmarshals its payload into dst.
// Malformed tokens and bad signatures both yield ErrInvalidToken.
func (c *Codec) Decode(tok string, dst any) error {
	payload, ok := c.verify(tok)
	if !ok {
		return ErrInvalidToken
	}

	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return errors.Join(ErrInvalidPayload, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.Join(ErrInvalidPayload, err)
	}
	return nil
}

// verify returns the payload segment when tok has exactly two non-empty
// segments and the signature matches one of the keys.
func (c *Codec) verify(tok string) (string, bool) {
	payload, signature, found := strings.Cut(tok, separator)
	if !found || payload == "" || signature == "" || strings.Contains(signature, separator) {
		return "", false
	}

	// Compare the encoded form: decoding first would accept signatures that
	// differ only in the unused trailing bits of the last base64 character.
	for _, key := range c.keys {
		if hmac.Equal([]byte(sign(key, payload)), []byte(signature)) {
			return payload, true
		}
	}
	return "", false
}

func sign(key []byte, payload string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// GenerateToken signs payload with a single secret.
func GenerateToken(payload any, secret string) (string, error) {
	c, err := NewCodec([]byte(secret))
	if err != nil {
		return "", err
	}
	return c.Encode(payload)
}

// ParseToken verifies tok with a single secret and decodes its payload as T.
func ParseToken[T any](tok, secret string) (T, error) {
	var v T
	c, err := NewCodec([]byte(secret))
	if err != nil {
		return v, err
	}
	if err := c.Decode(tok, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
