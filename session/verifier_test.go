package session_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eventry/eventry-client-go/api"
	"github.com/eventry/eventry-client-go/api/apifake"
	"github.com/eventry/eventry-client-go/internal/utils"
	"github.com/eventry/eventry-client-go/session"
)

func TestVerifier_Classification(t *testing.T) {
	ctx := context.Background()

	completeProfile := &api.Profile{
		ID:        "user-1",
		Email:     "jane@example.com",
		Username:  "jane",
		FirstName: utils.Ptr("Jane"),
		LastName:  utils.Ptr("Doe"),
		Active:    utils.Ptr(true),
	}

	t.Run("complete profile is valid", func(t *testing.T) {
		fake := apifake.NewFakeAuthAPI()
		fake.VerifyTokenFn = func(ctx context.Context, token string) (*api.VerifyResult, error) {
			return &api.VerifyResult{IsConnected: true, User: completeProfile}, nil
		}

		verdict, profile, err := session.NewVerifier(fake, zerolog.Nop()).Verify(ctx, "tok-1")
		require.NoError(t, err)
		require.Equal(t, session.VerdictValid, verdict)
		require.Equal(t, completeProfile, profile)
	})

	t.Run("missing display fields degrade a valid token", func(t *testing.T) {
		fake := apifake.NewFakeAuthAPI()
		fake.VerifyTokenFn = func(ctx context.Context, token string) (*api.VerifyResult, error) {
			return &api.VerifyResult{
				IsConnected: true,
				User:        &api.Profile{ID: "user-1", Email: "jane@example.com", Username: "jane"},
			}, nil
		}

		verdict, profile, err := session.NewVerifier(fake, zerolog.Nop()).Verify(ctx, "tok-1")
		require.NoError(t, err)
		require.Equal(t, session.VerdictDegraded, verdict)
		require.NotNil(t, profile)
	})

	t.Run("isConnected false is invalid", func(t *testing.T) {
		fake := apifake.NewFakeAuthAPI()
		fake.VerifyTokenFn = func(ctx context.Context, token string) (*api.VerifyResult, error) {
			return &api.VerifyResult{IsConnected: false}, nil
		}

		verdict, _, err := session.NewVerifier(fake, zerolog.Nop()).Verify(ctx, "tok-1")
		require.NoError(t, err)
		require.Equal(t, session.VerdictInvalid, verdict)
	})

	t.Run("explicit rejection is invalid", func(t *testing.T) {
		fake := apifake.NewFakeAuthAPI()
		fake.VerifyTokenFn = func(ctx context.Context, token string) (*api.VerifyResult, error) {
			return nil, api.ErrUnauthorized
		}

		verdict, _, err := session.NewVerifier(fake, zerolog.Nop()).Verify(ctx, "tok-1")
		require.NoError(t, err)
		require.Equal(t, session.VerdictInvalid, verdict)
	})

	t.Run("transport failure is unreachable", func(t *testing.T) {
		fake := apifake.NewFakeAuthAPI()
		fake.VerifyTokenFn = func(ctx context.Context, token string) (*api.VerifyResult, error) {
			return nil, api.ErrUnreachable
		}

		verdict, _, err := session.NewVerifier(fake, zerolog.Nop()).Verify(ctx, "tok-1")
		require.NoError(t, err)
		require.Equal(t, session.VerdictUnreachable, verdict)
	})

	t.Run("empty token is invalid without a round trip", func(t *testing.T) {
		fake := apifake.NewFakeAuthAPI()

		verdict, _, err := session.NewVerifier(fake, zerolog.Nop()).Verify(ctx, "")
		require.NoError(t, err)
		require.Equal(t, session.VerdictInvalid, verdict)
		require.Equal(t, 0, fake.VerifyCalls)
	})
}
