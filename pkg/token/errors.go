package token

import "errors"

var (
	// ErrNoKey is returned when a codec is created without a usable signing key.
	ErrNoKey = errors.New("token: at least one non-empty signing key is required")

	// ErrInvalidToken is returned for any structural or signature failure.
	// The two cases are deliberately indistinguishable to callers.
	ErrInvalidToken = errors.New("token: invalid token")

	// ErrInvalidPayload is returned when a correctly signed payload cannot be
	// decoded into the destination value.
	ErrInvalidPayload = errors.New("token: invalid payload")

	// ErrEncode is returned when the value cannot be serialized.
	ErrEncode = errors.New("token: failed to encode payload")
)
