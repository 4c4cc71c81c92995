package session

import "errors"

// Closed error taxonomy for session operations. Callers classify with
// errors.Is rather than sniffing messages.
var (
	// ErrValidation: malformed session data. Never persisted, never adopted.
	ErrValidation = errors.New("invalid session data")

	// ErrStorage: the durable store failed. The in-memory session is left as
	// it was.
	ErrStorage = errors.New("session storage failure")

	// ErrInvalidCredentials: the backend explicitly rejected the credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired: the backend explicitly rejected the token. The session
	// is cleared.
	ErrTokenExpired = errors.New("token expired or invalid")

	// ErrNetworkUnreachable: transient transport failure. Never clears the
	// session; triggers the offline-trust fallback where a cache exists.
	ErrNetworkUnreachable = errors.New("backend unreachable")

	// ErrNoSession: the operation needs an in-memory session and there is none.
	ErrNoSession = errors.New("no active session")

	// ErrNoCachedSession: the operation needs a persisted session and storage
	// holds none (or an unusable one).
	ErrNoCachedSession = errors.New("no cached session")

	// ErrAccountNotConfirmed: credentials are correct but the account has not
	// been confirmed. The session is still set; the caller should surface the
	// confirmation flow, not a generic failure.
	ErrAccountNotConfirmed = errors.New("credentials correct, account not confirmed")
)
