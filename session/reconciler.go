package session

import (
	"time"

	"github.com/pkg/errors"

	"github.com/eventry/eventry-client-go/api"
	"github.com/eventry/eventry-client-go/users"
)

// Reconciler merges a server-returned (possibly incomplete) profile with the
// previously cached one. Server authority for identity fields and anything
// the server supplied; local authority for fields the server omitted. It is
// pure apart from the injectable clock.
type Reconciler struct {
	nowTime func() time.Time
}

// ReconcilerOption defines a function type to modify the Reconciler instance.
type ReconcilerOption func(*Reconciler)

// WithReconcilerNowTime sets the now time function (primarily for testing).
func WithReconcilerNowTime(nowFunc func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		r.nowTime = nowFunc
	}
}

func NewReconciler(options ...ReconcilerOption) *Reconciler {
	reconciler := &Reconciler{nowTime: time.Now}
	for _, opt := range options {
		opt(reconciler)
	}
	return reconciler
}

// Reconcile produces the authoritative profile for the given verification
// verdict. incomplete is set when the result still has gaps the UI should
// expect (degraded answer with no cache to fill it).
func (r *Reconciler) Reconcile(verdict Verdict, server *api.Profile, cached *users.User) (users.User, bool, error) {
	switch verdict {
	case VerdictValid:
		// Complete server answer wins outright.
		return server.User(), false, nil

	case VerdictDegraded:
		if server == nil {
			// Token accepted but no profile returned at all.
			if cached == nil {
				return users.User{}, false, errors.Wrap(ErrNoCachedSession, "[Reconcile] degraded answer with no profile and no cache")
			}
			return *cached, true, nil
		}
		if cached == nil {
			// Best available; the caller is told it has gaps.
			return server.User(), true, nil
		}
		return r.merge(server, *cached), false, nil

	case VerdictUnreachable:
		// Offline trust: the cached record verbatim, no merge.
		if cached == nil {
			return users.User{}, false, errors.Wrap(ErrNoCachedSession, "[Reconcile] unreachable with no cache")
		}
		return *cached, false, nil
	}

	return users.User{}, false, errors.Errorf("[Reconcile] verdict %s has no profile to reconcile", verdict)
}

// merge applies field-level precedence: identity fields and any field the
// server supplied take the server value, omitted fields keep the cached one.
func (r *Reconciler) merge(server *api.Profile, cached users.User) users.User {
	merged := users.User{
		ID:          pick(server.ID, cached.ID),
		Email:       pick(server.Email, cached.Email),
		Username:    pick(server.Username, cached.Username),
		FirstName:   cached.FirstName,
		LastName:    cached.LastName,
		AvatarURL:   cached.AvatarURL,
		Active:      cached.Active,
		LastUpdated: r.nowTime(),
	}

	if server.FirstName != nil {
		merged.FirstName = *server.FirstName
	}
	if server.LastName != nil {
		merged.LastName = *server.LastName
	}
	if server.AvatarURL != nil {
		merged.AvatarURL = *server.AvatarURL
	}
	if server.Active != nil {
		merged.Active = *server.Active
	}

	return merged
}

// pick prefers the server value for identity fields, falling back to the
// cache only when the server field came back blank.
func pick(server, cached string) string {
	if server != "" {
		return server
	}
	return cached
}
