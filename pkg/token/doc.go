// Package token provides compact, URL-safe signed tokens using HMAC-SHA256.
//
// Tokens carry a JSON payload that is readable by the holder but cannot be
// forged or modified without the signing key. They are signed, not encrypted:
// never put confidential data in them.
//
// # Token Format
//
// Tokens follow the format: `<base64url-payload>.<base64url-signature>`
//
// Where:
//   - Payload: JSON-encoded data, base64url-encoded (no padding)
//   - Signature: full HMAC-SHA256 over the encoded payload segment, base64url-encoded (no padding)
//
// The signature covers the encoded segment exactly as transmitted, so
// verification never depends on re-encoding the JSON.
//
// # Basic Usage
//
//	type Claims struct {
//		UserID string `json:"user_id"`
//		Exp    int64  `json:"exp"`
//	}
//
//	codec, err := token.NewCodec([]byte(currentSecret), []byte(previousSecret))
//	if err != nil {
//		// ErrNoKey
//	}
//
//	tok, err := codec.Encode(Claims{UserID: "u-1", Exp: 1700000000000})
//
//	var claims Claims
//	if err := codec.Decode(tok, &claims); err != nil {
//		// ErrInvalidToken or ErrInvalidPayload
//	}
//
// One-off helpers exist for a single secret:
//
//	tok, err := token.GenerateToken(claims, secret)
//	parsed, err := token.ParseToken[Claims](tok, secret)
//
// # Error Handling
//
//   - ErrInvalidToken: wrong number of segments, empty segment or signature mismatch.
//     These cases are not distinguished so the decoder cannot be used as an oracle.
//   - ErrInvalidPayload: the signature is valid but the payload does not decode
//     into the destination type.
//   - ErrNoKey: no usable signing key was provided.
//
// # Key Rotation
//
// The first key passed to NewCodec signs; all keys verify. Deploy a new secret
// in front of the old one, then drop the old one once issued tokens have expired.
//
// Signature comparison is constant-time.
package token
