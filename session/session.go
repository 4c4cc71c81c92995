// Package session owns the client-side authentication lifecycle: acquiring a
// token, persisting it, verifying it against the backend on startup, repairing
// half-written storage, and reconciling the server's answer with the cached
// profile. The Manager is the only type the rest of the application talks to.
package session

import (
	"time"

	"github.com/eventry/eventry-client-go/users"
)

// TrustLevel records how the current session was obtained.
type TrustLevel string

const (
	// TrustFull: the backend verified the token and returned a complete profile.
	TrustFull TrustLevel = "full"

	// TrustPartial: the token verified but the profile came back incomplete.
	TrustPartial TrustLevel = "partial"

	// TrustOffline: the backend was unreachable and the session was accepted
	// from the local cache without current server confirmation.
	TrustOffline TrustLevel = "offline"
)

// Session is the in-memory record of who is logged in. It is either fully
// absent or carries a non-empty token and a user with non-empty identity
// fields.
type Session struct {
	Token     string
	User      users.User
	ExpiresAt *time.Time // advisory only; validity is decided by verification
	Trust     TrustLevel

	// ProfileIncomplete is set when the backend returned a partial profile and
	// no cache existed to fill the gaps. The UI may show missing-name gaps.
	ProfileIncomplete bool
}
