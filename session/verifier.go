package session

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/eventry/eventry-client-go/api"
)

// Verdict classifies the outcome of a token verification round trip.
type Verdict int

const (
	// VerdictValid: the token is good and the profile came back complete.
	VerdictValid Verdict = iota

	// VerdictDegraded: the token is good but the backend omitted some profile
	// fields. The caller should reconcile against the local cache.
	VerdictDegraded

	// VerdictInvalid: the backend explicitly rejected the token. The caller
	// must wipe the session.
	VerdictInvalid

	// VerdictUnreachable: the backend never answered. The caller must NOT wipe
	// the session; stale local data may still be used.
	VerdictUnreachable
)

func (v Verdict) String() string {
	switch v {
	case VerdictValid:
		return "valid"
	case VerdictDegraded:
		return "degraded"
	case VerdictInvalid:
		return "invalid"
	case VerdictUnreachable:
		return "unreachable"
	}
	return "unknown"
}

// Verifier calls the remote verify capability and classifies the outcome.
type Verifier struct {
	api api.AuthAPI
	log zerolog.Logger
}

func NewVerifier(authAPI api.AuthAPI, log zerolog.Logger) *Verifier {
	return &Verifier{api: authAPI, log: log}
}

// Verify checks the token against the backend. The returned profile is only
// set for VerdictValid and VerdictDegraded, and for VerdictDegraded it may be
// nil when the backend accepted the token but sent no profile at all.
func (v *Verifier) Verify(ctx context.Context, token string) (Verdict, *api.Profile, error) {
	if token == "" {
		return VerdictInvalid, nil, nil
	}

	result, err := v.api.VerifyToken(ctx, token)
	switch {
	case errors.Is(err, api.ErrUnreachable):
		v.log.Warn().Err(err).Msg("Verification could not reach backend")
		return VerdictUnreachable, nil, nil
	case errors.Is(err, api.ErrUnauthorized):
		return VerdictInvalid, nil, nil
	case err != nil:
		// A malformed answer proves nothing about the token. Treat it like an
		// unreachable backend rather than logging the user out.
		v.log.Err(err).Msg("Verification returned an unusable response")
		return VerdictUnreachable, nil, errors.Wrap(err, "[Verifier.Verify]")
	}

	if !result.IsConnected {
		return VerdictInvalid, nil, nil
	}

	if result.User.Complete() {
		return VerdictValid, result.User, nil
	}
	return VerdictDegraded, result.User, nil
}
