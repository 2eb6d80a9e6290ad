// Package session keeps per-client session state behind a cookie.
//
// Three Store implementations share one interface and are picked at construction:
//
//   - IDStore gives the client a random hex id (32 bytes by default) and keeps
//     the value in a Backend. Revocation is immediate: Delete removes the value.
//   - TokenStore puts the whole value into the cookie as an HMAC-SHA256 signed
//     token (see pkg/token). Nothing is stored server side and tokens never expire.
//   - SWTStore is TokenStore for values implementing Renewable. Tokens whose
//     expiry is more than the configured duration in the past are ignored, and
//     each lookup slides the expiry to now + duration and re-issues the cookie.
//
// Basic usage:
//
//	backend := session.NewMemoryBackend[UserSession](session.WithTTL(30 * time.Minute))
//	store := session.NewIDStore[UserSession](backend)
//
//	// in a handler
//	if err := store.Set(ctx, UserSession{UserID: id, CSRF: session.NewCSRFToken()}); err != nil {
//		return response.Error(err)
//	}
//
//	sess, err := store.Get(ctx) // ErrNotLoggedIn without a session
//
// Token stores need signing keys. The first key signs, every key verifies,
// which allows rotating secrets without logging everyone out:
//
//	cfg := session.DefaultConfig()
//	cfg.Secrets = os.Getenv("SESSION_SECRETS") // "new-key,old-key"
//	store, err := session.NewSWTStoreFromConfig[UserSession](cfg)
//
// # Cookies
//
// Cookies are written as name=value; Path=/; HttpOnly; Secure; SameSite=Strict
// without Max-Age, so browsers drop them when they close. Deleting a session
// writes the same cookie with an empty value, and an empty value is treated as
// no session on later requests.
//
// # Errors
//
// Lookup reports a missing, unknown or expired session as absent with a nil error.
// Errors wrap one of the package sentinels and are checked with errors.Is:
// ErrStorage for backend failures, ErrInvalidInput for tokens that fail
// verification, ErrAccessDenied (ErrMissingCSRFToken, ErrInvalidCSRFToken) for
// CSRF failures and ErrNotLoggedIn from Get.
//
// # CSRF
//
// Every session value exposes a CSRF token. VerifyCSRFToken compares it with the
// CSRF-Token request header in constant time.
package session
