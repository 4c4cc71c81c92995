package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/eventry/eventry-client-go/api"
	"github.com/eventry/eventry-client-go/session/store"
	"github.com/eventry/eventry-client-go/users"
)

// Manager drives the session state machine and owns the in-memory session.
// It is the sole writer of session state: every other component is either
// storage (TokenStore), classification (Verifier), merging (Reconciler) or
// cleanup (Repairer), and none of them mutate the session directly.
//
// Mutating operations are serialized against each other; two concurrent
// logins racing on the same durable keys could otherwise interleave partial
// writes. Read-only queries never block and never touch I/O.
type Manager struct {
	store      *store.TokenStore
	verifier   *Verifier
	reconciler *Reconciler
	repairer   *Repairer
	api        api.AuthAPI
	log        zerolog.Logger
	nowTime    func() time.Time

	opLock sync.Mutex // serializes mutating operations

	lock    sync.RWMutex // guards current
	current *Session
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithLogger sets the logger for session lifecycle events.
func WithLogger(log zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = log
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// NewManager initializes a Manager over durable storage and the remote auth
// capability.
func NewManager(kv store.KV, authAPI api.AuthAPI, options ...ManagerOption) (*Manager, error) {
	if kv == nil {
		return nil, errors.New("[NewManager] kv store is required")
	}
	if authAPI == nil {
		return nil, errors.New("[NewManager] auth API is required")
	}

	manager := &Manager{
		store:   store.NewTokenStore(kv),
		api:     authAPI,
		log:     zerolog.Nop(),
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(manager)
	}

	manager.verifier = NewVerifier(authAPI, manager.log)
	manager.reconciler = NewReconciler(WithReconcilerNowTime(manager.nowTime))
	manager.repairer = NewRepairer(kv, manager.log)

	return manager, nil
}

// Initialize runs the startup flow: repair storage, read the persisted
// record, verify the token remotely, reconcile the profile, and write the
// result back. Safe to call again; it re-runs the same flow.
//
// An explicitly rejected token and an empty store both end in a clean
// logged-out state, not an error. An unreachable backend falls back to the
// cached session at offline trust when one exists.
func (m *Manager) Initialize(ctx context.Context) error {
	m.opLock.Lock()
	defer m.opLock.Unlock()

	log := m.opLogger("initialize")

	m.repairer.Repair(ctx)

	record, err := m.store.Read(ctx)
	if err != nil {
		return errors.Wrap(ErrStorage, err.Error())
	}
	if record == nil || record.Token == "" {
		log.Info().Msg("No persisted session, starting logged out")
		m.setSession(nil)
		return nil
	}

	verdict, profile, _ := m.verifier.Verify(ctx, record.Token)
	log.Info().Str("verdict", verdict.String()).Msg("Startup verification complete")

	switch verdict {
	case VerdictInvalid:
		// Explicit negative answer: the user sees a clean logged-out state.
		if err := m.store.Clear(ctx); err != nil {
			log.Err(err).Msg("Failed to clear rejected session")
		}
		m.setSession(nil)
		return nil

	case VerdictUnreachable:
		if record.User == nil {
			log.Info().Msg("Backend unreachable and no cached profile, starting logged out")
			m.setSession(nil)
			return nil
		}
		user, _, err := m.reconciler.Reconcile(verdict, nil, record.User)
		if err != nil {
			m.setSession(nil)
			return nil
		}
		m.setSession(&Session{
			Token:     record.Token,
			User:      user,
			ExpiresAt: record.ExpiresAt,
			Trust:     TrustOffline,
		})
		log.Info().Str("user_id", user.ID).Msg("Adopted cached session at offline trust")
		return nil
	}

	user, incomplete, err := m.reconciler.Reconcile(verdict, profile, record.User)
	if err != nil {
		// Token accepted but no profile anywhere to attach it to.
		if err := m.store.Clear(ctx); err != nil {
			log.Err(err).Msg("Failed to clear unusable session")
		}
		m.setSession(nil)
		return nil
	}

	trust := TrustFull
	if verdict == VerdictDegraded {
		trust = TrustPartial
	}

	session := &Session{
		Token:             record.Token,
		User:              user,
		ExpiresAt:         record.ExpiresAt,
		Trust:             trust,
		ProfileIncomplete: incomplete,
	}
	m.setSession(session)

	// Write the reconciled profile back so the cache reflects what the UI
	// will show. A write failure is surfaced but the adopted session stands.
	if err := m.store.Write(ctx, store.Record{Token: session.Token, User: &session.User, ExpiresAt: session.ExpiresAt}); err != nil {
		log.Err(err).Msg("Failed to persist reconciled session")
		return errors.Wrap(ErrStorage, err.Error())
	}

	log.Info().Str("user_id", user.ID).Str("trust", string(trust)).Msg("Session established")
	return nil
}

// Login adopts an already-obtained (user, token) pair as the current session.
// The record is validated first and never partially stored: a validation or
// storage failure leaves both memory and storage exactly as they were.
func (m *Manager) Login(ctx context.Context, user users.User, token string) error {
	m.opLock.Lock()
	defer m.opLock.Unlock()

	return m.adopt(ctx, m.opLogger("login"), user, token)
}

// LoginWithCredentials performs the remote login call and adopts the result.
// When the credentials are correct but the account is unconfirmed, the
// session is still set and ErrAccountNotConfirmed is returned so the caller
// can surface the confirmation flow instead of a generic failure.
func (m *Manager) LoginWithCredentials(ctx context.Context, email, password string) error {
	m.opLock.Lock()
	defer m.opLock.Unlock()

	log := m.opLogger("login_with_credentials")

	if strings.TrimSpace(email) == "" || password == "" {
		return errors.Wrap(ErrValidation, "[LoginWithCredentials] email and password are required")
	}

	creds, err := m.api.Login(ctx, email, password)
	if err != nil {
		return m.mapAPIError(err, "[LoginWithCredentials]")
	}
	if creds.User == nil {
		return errors.Wrap(ErrValidation, "[LoginWithCredentials] backend returned no profile")
	}

	user := creds.User.User()
	if err := m.adopt(ctx, log, user, creds.Token); err != nil {
		return err
	}
	if !user.Active {
		return errors.Wrap(ErrAccountNotConfirmed, "[LoginWithCredentials]")
	}
	return nil
}

// ConfirmAccount redeems a confirmation code. Success is an implicit login:
// the returned credentials are adopted exactly as Login would, with no
// separate verification round trip.
func (m *Manager) ConfirmAccount(ctx context.Context, email, code string) error {
	m.opLock.Lock()
	defer m.opLock.Unlock()

	log := m.opLogger("confirm_account")

	if strings.TrimSpace(email) == "" || strings.TrimSpace(code) == "" {
		return errors.Wrap(ErrValidation, "[ConfirmAccount] email and code are required")
	}

	creds, err := m.api.ConfirmAccount(ctx, email, code)
	if err != nil {
		return m.mapAPIError(err, "[ConfirmAccount]")
	}
	if creds.User == nil {
		return errors.Wrap(ErrValidation, "[ConfirmAccount] backend returned no profile")
	}

	return m.adopt(ctx, log, creds.User.User(), creds.Token)
}

// Logout tears the session down. The remote invalidation is best effort; the
// local device never stays authenticated-looking because a network call
// failed, so Logout always clears local state and always succeeds.
func (m *Manager) Logout(ctx context.Context) error {
	m.opLock.Lock()
	defer m.opLock.Unlock()

	log := m.opLogger("logout")

	if token := m.AuthToken(); token != "" {
		if err := m.api.Logout(ctx, token); err != nil {
			log.Warn().Err(err).Msg("Remote logout failed, clearing local state anyway")
		}
	}

	if err := m.store.Clear(ctx); err != nil {
		log.Err(err).Msg("Failed to clear session storage during logout")
	}
	m.setSession(nil)

	log.Info().Msg("Logged out")
	return nil
}

// Refresh re-verifies the current session on demand (pull-to-refresh, retry
// button). An explicit rejection clears the session and returns
// ErrTokenExpired; an unreachable backend leaves the session untouched and
// returns ErrNetworkUnreachable.
func (m *Manager) Refresh(ctx context.Context) error {
	m.opLock.Lock()
	defer m.opLock.Unlock()

	log := m.opLogger("refresh")

	snapshot := m.snapshot()
	if snapshot == nil {
		return errors.Wrap(ErrNoSession, "[Refresh]")
	}

	verdict, profile, _ := m.verifier.Verify(ctx, snapshot.Token)
	log.Info().Str("verdict", verdict.String()).Msg("Refresh verification complete")

	switch verdict {
	case VerdictInvalid:
		if err := m.store.Clear(ctx); err != nil {
			log.Err(err).Msg("Failed to clear expired session")
		}
		m.setSession(nil)
		return errors.Wrap(ErrTokenExpired, "[Refresh]")

	case VerdictUnreachable:
		return errors.Wrap(ErrNetworkUnreachable, "[Refresh]")
	}

	cached := snapshot.User
	user, incomplete, err := m.reconciler.Reconcile(verdict, profile, &cached)
	if err != nil {
		return errors.Wrap(err, "[Refresh]")
	}

	trust := TrustFull
	if verdict == VerdictDegraded {
		trust = TrustPartial
	}

	session := &Session{
		Token:             snapshot.Token,
		User:              user,
		ExpiresAt:         snapshot.ExpiresAt,
		Trust:             trust,
		ProfileIncomplete: incomplete,
	}
	m.setSession(session)

	if err := m.store.Write(ctx, store.Record{Token: session.Token, User: &session.User, ExpiresAt: session.ExpiresAt}); err != nil {
		return errors.Wrap(ErrStorage, err.Error())
	}
	return nil
}

// SyncLocalStorage forces a re-persist of the current in-memory session.
// It is never silently a no-op: with no session to persist it fails.
func (m *Manager) SyncLocalStorage(ctx context.Context) error {
	m.opLock.Lock()
	defer m.opLock.Unlock()

	snapshot := m.snapshot()
	if snapshot == nil {
		return errors.Wrap(ErrNoSession, "[SyncLocalStorage]")
	}

	record := store.Record{Token: snapshot.Token, User: &snapshot.User, ExpiresAt: snapshot.ExpiresAt}
	if err := m.store.Write(ctx, record); err != nil {
		return errors.Wrap(ErrStorage, err.Error())
	}
	return nil
}

// RestoreFromLocalStorage is the network-free variant of the startup flow:
// it adopts the persisted record at offline trust when it is valid, and
// fails without mutating state otherwise.
func (m *Manager) RestoreFromLocalStorage(ctx context.Context) error {
	m.opLock.Lock()
	defer m.opLock.Unlock()

	log := m.opLogger("restore_from_local_storage")

	record, err := m.store.Read(ctx)
	if err != nil {
		return errors.Wrap(ErrStorage, err.Error())
	}
	if record == nil || record.Token == "" || record.User == nil {
		return errors.Wrap(ErrNoCachedSession, "[RestoreFromLocalStorage]")
	}
	if err := record.User.Validate(); err != nil {
		return errors.Wrap(ErrValidation, err.Error())
	}

	m.setSession(&Session{
		Token:     record.Token,
		User:      *record.User,
		ExpiresAt: record.ExpiresAt,
		Trust:     TrustOffline,
	})
	log.Info().Str("user_id", record.User.ID).Msg("Restored session from local storage")
	return nil
}

// CurrentUser returns a copy of the signed-in profile, or nil when logged
// out. Never blocks on I/O.
func (m *Manager) CurrentUser() *users.User {
	m.lock.RLock()
	defer m.lock.RUnlock()

	if m.current == nil {
		return nil
	}
	user := m.current.User
	return &user
}

// AuthToken returns the current bearer token, or empty when logged out.
func (m *Manager) AuthToken() string {
	m.lock.RLock()
	defer m.lock.RUnlock()

	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// IsAuthenticated reports whether a session is held, at any trust level.
func (m *Manager) IsAuthenticated() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.current != nil
}

// IsAccountConfirmed reports whether the signed-in account has been
// confirmed. False when logged out.
func (m *Manager) IsAccountConfirmed() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.current != nil && m.current.User.Active
}

// Trust returns the current session's trust level, or empty when logged out.
func (m *Manager) Trust() TrustLevel {
	m.lock.RLock()
	defer m.lock.RUnlock()

	if m.current == nil {
		return ""
	}
	return m.current.Trust
}

// ProfileIncomplete reports whether the current profile still has gaps the
// UI should expect.
func (m *Manager) ProfileIncomplete() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.current != nil && m.current.ProfileIncomplete
}

// adopt validates, persists, and installs a (user, token) session. Callers
// hold opLock. Persisting happens before the in-memory swap so a storage
// failure leaves the previously-good session intact.
func (m *Manager) adopt(ctx context.Context, log zerolog.Logger, user users.User, token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.Wrap(ErrValidation, "[adopt] token is required")
	}
	if err := user.Validate(); err != nil {
		return errors.Wrap(ErrValidation, err.Error())
	}

	session := &Session{
		Token:     token,
		User:      user,
		ExpiresAt: TokenExpiry(token),
		Trust:     TrustFull,
	}

	record := store.Record{Token: session.Token, User: &session.User, ExpiresAt: session.ExpiresAt}
	if err := m.store.Write(ctx, record); err != nil {
		return errors.Wrap(ErrStorage, err.Error())
	}

	m.setSession(session)
	log.Info().Str("user_id", user.ID).Msg("Session established")
	return nil
}

// mapAPIError translates transport-layer sentinels into the session taxonomy.
func (m *Manager) mapAPIError(err error, contextMsg string) error {
	switch {
	case errors.Is(err, api.ErrUnreachable):
		return errors.Wrap(ErrNetworkUnreachable, contextMsg)
	case errors.Is(err, api.ErrUnauthorized):
		return errors.Wrapf(ErrInvalidCredentials, "%s %s", contextMsg, err.Error())
	default:
		return errors.Wrap(err, contextMsg)
	}
}

func (m *Manager) setSession(s *Session) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.current = s
}

func (m *Manager) snapshot() *Session {
	m.lock.RLock()
	defer m.lock.RUnlock()

	if m.current == nil {
		return nil
	}
	session := *m.current
	return &session
}

func (m *Manager) opLogger(op string) zerolog.Logger {
	return m.log.With().Str("op", op).Str("op_id", uuid.NewString()).Logger()
}
