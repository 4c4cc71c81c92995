package api

import (
	"context"
	"errors"
)

var (
	// ErrUnauthorized is the backend's explicit negative answer: the token is
	// expired or the credentials are wrong. Callers must treat the session as
	// dead.
	ErrUnauthorized = errors.New("api: unauthorized")

	// ErrUnreachable is a transport-level failure. The backend never answered,
	// so nothing can be concluded about the token.
	ErrUnreachable = errors.New("api: backend unreachable")

	// ErrBadResponse covers 2xx answers whose body could not be decoded.
	ErrBadResponse = errors.New("api: malformed response")
)

// VerifyResult is the verify endpoint's answer. IsConnected=false means the
// token is explicitly rejected; User may be missing or partial even when the
// token is accepted.
type VerifyResult struct {
	IsConnected bool     `json:"isConnected"`
	User        *Profile `json:"user,omitempty"`
}

// Credentials is the payload returned by login and account confirmation.
type Credentials struct {
	Token string   `json:"token"`
	User  *Profile `json:"user"`
}

// AuthAPI is the remote authentication capability the session layer consumes.
// Implementations must map transport failures to ErrUnreachable and explicit
// rejections (HTTP 400/401) to ErrUnauthorized so callers can classify with
// errors.Is.
type AuthAPI interface {
	// VerifyToken asks the backend whether the token is still good.
	VerifyToken(ctx context.Context, token string) (*VerifyResult, error)

	// Login exchanges credentials for a token and profile.
	Login(ctx context.Context, email, password string) (*Credentials, error)

	// Logout invalidates the token server side. Best effort; callers clear
	// local state regardless of the outcome.
	Logout(ctx context.Context, token string) error

	// ConfirmAccount redeems an emailed confirmation code. On success the
	// returned profile is always active.
	ConfirmAccount(ctx context.Context, email, code string) (*Credentials, error)
}
