package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eventry/eventry-client-go/session/store"
	"github.com/eventry/eventry-client-go/session/store/kvfake"
	"github.com/eventry/eventry-client-go/users"
)

func testUser() *users.User {
	return &users.User{
		ID:        "user-1",
		Email:     "jane@example.com",
		Username:  "jane",
		FirstName: "Jane",
		LastName:  "Doe",
		Active:    true,
	}
}

func TestTokenStore_WriteReadRoundTrip(t *testing.T) {
	kv := kvfake.NewFakeKV()
	s := store.NewTokenStore(kv)
	ctx := context.Background()

	expiry := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	written := store.Record{Token: "tok-1", User: testUser(), ExpiresAt: &expiry}
	require.NoError(t, s.Write(ctx, written))

	record, err := s.Read(ctx)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, "tok-1", record.Token)
	require.Equal(t, testUser(), record.User)
	require.NotNil(t, record.ExpiresAt)
	require.True(t, record.ExpiresAt.Equal(expiry))
}

func TestTokenStore_ReadEmptyStore(t *testing.T) {
	s := store.NewTokenStore(kvfake.NewFakeKV())

	record, err := s.Read(context.Background())
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestTokenStore_OptionalExpiry(t *testing.T) {
	kv := kvfake.NewFakeKV()
	s := store.NewTokenStore(kv)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, store.Record{Token: "tok-1", User: testUser()}))

	record, err := s.Read(ctx)
	require.NoError(t, err)
	require.Nil(t, record.ExpiresAt)
}

func TestTokenStore_Clear(t *testing.T) {
	kv := kvfake.NewFakeKV()
	s := store.NewTokenStore(kv)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, store.Record{Token: "tok-1", User: testUser()}))
	require.NoError(t, s.Clear(ctx))

	record, err := s.Read(ctx)
	require.NoError(t, err)
	require.Nil(t, record)

	keys, err := kv.Keys(ctx, store.Namespace)
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestTokenStore_WriteIsSingleKVOperation(t *testing.T) {
	kv := kvfake.NewFakeKV()
	s := store.NewTokenStore(kv)
	ctx := context.Background()

	// A failing driver must reject the whole record, not part of it.
	kv.PutErr = errors.New("disk full")
	err := s.Write(ctx, store.Record{Token: "tok-1", User: testUser()})
	require.Error(t, err)

	kv.PutErr = nil
	record, err := s.Read(ctx)
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestTokenStore_CorruptUserSurfacesAsError(t *testing.T) {
	kv := kvfake.NewFakeKV()
	kv.Seed(store.KeyToken, "tok-1")
	kv.Seed(store.KeyUser, "{not json")

	_, err := store.NewTokenStore(kv).Read(context.Background())
	require.Error(t, err)
}
