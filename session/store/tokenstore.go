package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/eventry/eventry-client-go/users"
)

// Record is the persisted session: the same three fields serialized under
// three keys, written atomically together and cleared together.
type Record struct {
	Token     string
	User      *users.User
	ExpiresAt *time.Time
}

// TokenStore adapts a KV into the three-key session record. It does no
// validation; callers validate before writing and after reading.
type TokenStore struct {
	kv KV
}

func NewTokenStore(kv KV) *TokenStore {
	return &TokenStore{kv: kv}
}

// Read returns the persisted record, or nil when nothing is stored.
func (s *TokenStore) Read(ctx context.Context) (*Record, error) {
	token, hasToken, err := s.kv.Get(ctx, KeyToken)
	if err != nil {
		return nil, errors.Wrap(err, "[TokenStore.Read] token")
	}

	rawUser, hasUser, err := s.kv.Get(ctx, KeyUser)
	if err != nil {
		return nil, errors.Wrap(err, "[TokenStore.Read] user")
	}

	rawExpiry, hasExpiry, err := s.kv.Get(ctx, KeyExpiresAt)
	if err != nil {
		return nil, errors.Wrap(err, "[TokenStore.Read] expiresAt")
	}

	if !hasToken && !hasUser && !hasExpiry {
		return nil, nil
	}

	record := &Record{Token: token}

	if hasUser && rawUser != "" {
		var user users.User
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			return nil, errors.Wrap(err, "[TokenStore.Read] unmarshal user")
		}
		record.User = &user
	}

	if hasExpiry && rawExpiry != "" {
		expiry, err := time.Parse(time.RFC3339, rawExpiry)
		if err != nil {
			return nil, errors.Wrap(err, "[TokenStore.Read] parse expiresAt")
		}
		record.ExpiresAt = &expiry
	}

	return record, nil
}

// Write persists the record, all three keys in one atomic operation.
func (s *TokenStore) Write(ctx context.Context, record Record) error {
	rawUser := ""
	if record.User != nil {
		encoded, err := json.Marshal(record.User)
		if err != nil {
			return errors.Wrap(err, "[TokenStore.Write] marshal user")
		}
		rawUser = string(encoded)
	}

	rawExpiry := ""
	if record.ExpiresAt != nil {
		rawExpiry = record.ExpiresAt.Format(time.RFC3339)
	}

	entries := map[string]string{
		KeyToken:     record.Token,
		KeyUser:      rawUser,
		KeyExpiresAt: rawExpiry,
	}
	if err := s.kv.PutAll(ctx, entries); err != nil {
		return errors.Wrap(err, "[TokenStore.Write] PutAll")
	}
	return nil
}

// Clear removes the whole record.
func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyToken, KeyUser, KeyExpiresAt); err != nil {
		return errors.Wrap(err, "[TokenStore.Clear] Delete")
	}
	return nil
}
