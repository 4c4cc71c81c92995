package session

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// TokenExpiry extracts the advisory expiry from a bearer token. Tokens are
// opaque to this client, but when one happens to be a JWT its exp claim is a
// useful hint for the UI. The parse is deliberately unverified: the client
// holds no keys, and expiry here is never used to invalidate anything.
func TokenExpiry(token string) *time.Time {
	parsed, _, err := jwtlib.NewParser().ParseUnverified(token, jwtlib.MapClaims{})
	if err != nil {
		return nil
	}

	expiry, err := parsed.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return nil
	}

	t := expiry.Time
	return &t
}
