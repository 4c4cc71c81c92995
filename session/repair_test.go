package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eventry/eventry-client-go/session"
	"github.com/eventry/eventry-client-go/session/store"
	"github.com/eventry/eventry-client-go/session/store/kvfake"
)

const validUserJSON = `{"id":"user-1","email":"jane@example.com","username":"jane","first_name":"Jane","last_name":"Doe","active":true}`

func TestRepairer_LeavesHealthyRecordAlone(t *testing.T) {
	kv := kvfake.NewFakeKV()
	kv.Seed(store.KeyToken, "tok-1")
	kv.Seed(store.KeyUser, validUserJSON)
	kv.Seed(store.KeyExpiresAt, "2026-06-01T00:00:00Z")

	session.NewRepairer(kv, zerolog.Nop()).Repair(context.Background())

	_, hasToken, err := kv.Get(context.Background(), store.KeyToken)
	require.NoError(t, err)
	require.True(t, hasToken)
	_, hasUser, err := kv.Get(context.Background(), store.KeyUser)
	require.NoError(t, err)
	require.True(t, hasUser)
}

func TestRepairer_EmptyUserPurgesWholeRecord(t *testing.T) {
	kv := kvfake.NewFakeKV()
	kv.Seed(store.KeyToken, "tok-1")
	kv.Seed(store.KeyUser, "")

	session.NewRepairer(kv, zerolog.Nop()).Repair(context.Background())

	// No partial record survives: the valid token goes with the broken user.
	keys, err := kv.Keys(context.Background(), store.Namespace)
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestRepairer_UnparsableUserPurgesWholeRecord(t *testing.T) {
	kv := kvfake.NewFakeKV()
	kv.Seed(store.KeyToken, "tok-1")
	kv.Seed(store.KeyUser, "{definitely not json")

	session.NewRepairer(kv, zerolog.Nop()).Repair(context.Background())

	keys, err := kv.Keys(context.Background(), store.Namespace)
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestRepairer_NullLiteralsArePurged(t *testing.T) {
	kv := kvfake.NewFakeKV()
	kv.Seed(store.KeyToken, "null")
	kv.Seed(store.KeyUser, "undefined")

	session.NewRepairer(kv, zerolog.Nop()).Repair(context.Background())

	keys, err := kv.Keys(context.Background(), store.Namespace)
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestRepairer_TokenWithoutUserIsPurged(t *testing.T) {
	kv := kvfake.NewFakeKV()
	kv.Seed(store.KeyToken, "tok-1")

	session.NewRepairer(kv, zerolog.Nop()).Repair(context.Background())

	_, hasToken, err := kv.Get(context.Background(), store.KeyToken)
	require.NoError(t, err)
	require.False(t, hasToken)
}

func TestRepairer_BadExpiryIsDroppedButRecordSurvives(t *testing.T) {
	kv := kvfake.NewFakeKV()
	kv.Seed(store.KeyToken, "tok-1")
	kv.Seed(store.KeyUser, validUserJSON)
	kv.Seed(store.KeyExpiresAt, "next tuesday")

	session.NewRepairer(kv, zerolog.Nop()).Repair(context.Background())

	// Expiry is advisory; losing it must not take the session with it.
	_, hasExpiry, err := kv.Get(context.Background(), store.KeyExpiresAt)
	require.NoError(t, err)
	require.False(t, hasExpiry)
	_, hasToken, err := kv.Get(context.Background(), store.KeyToken)
	require.NoError(t, err)
	require.True(t, hasToken)
}

func TestRepairer_EnumerationFailureClearsNamespace(t *testing.T) {
	kv := kvfake.NewFakeKV()
	kv.Seed(store.KeyToken, "tok-1")
	kv.Seed(store.KeyUser, validUserJSON)
	kv.KeysErr = errors.New("disk on fire")

	session.NewRepairer(kv, zerolog.Nop()).Repair(context.Background())

	kv.KeysErr = nil
	keys, err := kv.Keys(context.Background(), store.Namespace)
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestRepairer_IgnoresForeignKeys(t *testing.T) {
	kv := kvfake.NewFakeKV()
	kv.Seed("settings.theme", "")
	kv.Seed(store.KeyToken, "tok-1")
	kv.Seed(store.KeyUser, validUserJSON)

	session.NewRepairer(kv, zerolog.Nop()).Repair(context.Background())

	// Repair only owns the auth namespace.
	value, ok, err := kv.Get(context.Background(), "settings.theme")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "", value)
}
