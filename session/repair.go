package session

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventry/eventry-client-go/session/store"
	"github.com/eventry/eventry-client-go/users"
)

// Repairer scans the session namespace and purges anything a crash or quota
// error left behind: empty values, literal nulls, unparsable records. Without
// it, downstream code could read a token with no matching user record. It
// runs once at startup, before any stored value is trusted.
type Repairer struct {
	kv  store.KV
	log zerolog.Logger
}

func NewRepairer(kv store.KV, log zerolog.Logger) *Repairer {
	return &Repairer{kv: kv, log: log}
}

// Repair never fails: any internal error degrades to clearing the whole
// namespace, which is always a safe state.
func (r *Repairer) Repair(ctx context.Context) {
	keys, err := r.kv.Keys(ctx, store.Namespace)
	if err != nil {
		r.log.Err(err).Msg("Repair could not enumerate session keys, clearing namespace")
		r.clearAll(ctx)
		return
	}

	for _, key := range keys {
		value, ok, err := r.kv.Get(ctx, key)
		if err != nil {
			r.log.Err(err).Str("key", key).Msg("Repair could not read key, clearing namespace")
			r.clearAll(ctx)
			return
		}
		if !ok {
			continue
		}
		if !valueParses(key, value) {
			r.log.Info().Str("key", key).Msg("Purging corrupted session key")
			if err := r.kv.Delete(ctx, key); err != nil {
				r.log.Err(err).Str("key", key).Msg("Repair could not delete key, clearing namespace")
				r.clearAll(ctx)
				return
			}
		}
	}

	// Coherence pass: a token without a user record (or the reverse) is a
	// half-written session, not a session. No partial record survives.
	_, hasToken, errToken := r.kv.Get(ctx, store.KeyToken)
	_, hasUser, errUser := r.kv.Get(ctx, store.KeyUser)
	if errToken != nil || errUser != nil {
		r.clearAll(ctx)
		return
	}
	if hasToken != hasUser {
		r.log.Info().
			Bool("has_token", hasToken).
			Bool("has_user", hasUser).
			Msg("Purging partial session record")
		r.clearAll(ctx)
	}
}

func (r *Repairer) clearAll(ctx context.Context) {
	if err := r.kv.Delete(ctx, store.KeyToken, store.KeyUser, store.KeyExpiresAt); err != nil {
		r.log.Err(err).Msg("Repair fallback clear failed")
	}
}

// valueParses reports whether a stored value is usable for its key. The
// expiry key is advisory and optional, so an empty value there is legal.
func valueParses(key, value string) bool {
	trimmed := strings.TrimSpace(value)

	switch key {
	case store.KeyUser:
		if isBlankOrNull(trimmed) {
			return false
		}
		var user users.User
		return json.Unmarshal([]byte(trimmed), &user) == nil

	case store.KeyExpiresAt:
		if trimmed == "" {
			return true
		}
		if isBlankOrNull(trimmed) {
			return false
		}
		_, err := time.Parse(time.RFC3339, trimmed)
		return err == nil

	default:
		return !isBlankOrNull(trimmed)
	}
}

func isBlankOrNull(trimmed string) bool {
	return trimmed == "" || trimmed == "null" || trimmed == "undefined"
}
