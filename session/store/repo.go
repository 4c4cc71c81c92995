package store

import (
	"context"
	"errors"
)

// Namespace prefixes every key the session layer owns, keeping them
// distinguishable from unrelated application state sharing the same KV.
const Namespace = "auth."

// The three logical keys of a persisted session record.
const (
	KeyToken     = Namespace + "token"
	KeyUser      = Namespace + "user"
	KeyExpiresAt = Namespace + "expiresAt"
)

var ErrNotFound = errors.New("store: not found")

// KV is durable string key-value storage. Concrete drivers (sqlite, the
// in-memory fake) implement this; the session layer never touches a driver
// directly.
type KV interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// PutAll writes every entry or none of them.
	PutAll(ctx context.Context, entries map[string]string) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Keys lists all stored keys with the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
