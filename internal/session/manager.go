package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/account"
	"github.com/facetlabs/facet/internal/common/cnst"
	"github.com/facetlabs/facet/internal/textnorm"
)

// Authenticator verifies credentials against the account table.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*account.Account, error)
}

// Journal records session lifecycle events to the activity log.
type Journal interface {
	Log(ctx context.Context, sess *Session, action string, details map[string]string)
}

// Manager owns the session lifecycle: login, lookup with lazy expiry, touch,
// logout and the optional periodic sweep. It is constructed once at startup
// and passed into every handler; there is no package-level session state.
type Manager struct {
	logger  *zap.Logger
	store   Store
	auth    Authenticator
	journal Journal
	timeout time.Duration
	now     func() time.Time
}

// NewManager creates a session manager with the given idle timeout.
func NewManager(logger *zap.Logger, store Store, auth Authenticator, journal Journal, timeout time.Duration) *Manager {
	return &Manager{
		logger:  logger.Named("session"),
		store:   store,
		auth:    auth,
		journal: journal,
		timeout: timeout,
		now:     time.Now,
	}
}

// Login verifies credentials and creates a session for the handle. An
// existing session for the same handle is replaced, keeping at most one
// live session per handle.
func (m *Manager) Login(ctx context.Context, handle int64, username, password string) (*Session, error) {
	acct, err := m.auth.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	role := textnorm.Normalize(acct.Role)
	sess := &Session{
		Handle:     handle,
		Username:   acct.Username,
		Role:       role,
		LastActive: m.now(),
	}
	if role == cnst.RoleSupplier {
		sess.SupplierKey = "supplier_" + textnorm.Normalize(acct.Username)
	}

	if err := m.store.Put(ctx, sess); err != nil {
		// Store trouble must not block the login; the session set is
		// re-persisted on the next mutation anyway.
		m.logger.Error("failed to persist session", zap.Int64("handle", handle), zap.Error(err))
	}
	m.journal.Log(ctx, sess, cnst.ActionLogin, nil)
	m.logger.Info("login", zap.String("username", sess.Username), zap.String("role", sess.Role))
	return sess, nil
}

// Get returns the live session for handle, refreshing its activity stamp.
// A session idle past the timeout is evicted exactly once and nil returned.
func (m *Manager) Get(ctx context.Context, handle int64) *Session {
	sess, err := m.store.Get(ctx, handle)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			m.logger.Error("session lookup failed", zap.Int64("handle", handle), zap.Error(err))
		}
		return nil
	}

	if m.expired(sess) {
		m.evict(ctx, sess)
		return nil
	}

	sess.LastActive = m.now()
	if err := m.store.Put(ctx, sess); err != nil {
		m.logger.Error("failed to refresh session", zap.Int64("handle", handle), zap.Error(err))
	}
	return sess
}

// Touch refreshes the activity stamp of a live session, if any.
func (m *Manager) Touch(ctx context.Context, handle int64) {
	sess, err := m.store.Get(ctx, handle)
	if err != nil {
		return
	}
	sess.LastActive = m.now()
	if err := m.store.Put(ctx, sess); err != nil {
		m.logger.Error("failed to touch session", zap.Int64("handle", handle), zap.Error(err))
	}
}

// Logout removes the session and journals the logout.
func (m *Manager) Logout(ctx context.Context, handle int64) *Session {
	sess, err := m.store.Get(ctx, handle)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, handle); err != nil {
		m.logger.Error("failed to delete session", zap.Int64("handle", handle), zap.Error(err))
	}
	m.journal.Log(ctx, sess, cnst.ActionLogout, nil)
	m.logger.Info("logout", zap.String("username", sess.Username))
	return sess
}

// Sweep evicts every expired session. Lazy expiry in Get is sufficient for
// correctness; the sweep just reclaims memory and journals expiries for
// identities that never come back.
func (m *Manager) Sweep(ctx context.Context) {
	sessions, err := m.store.List(ctx)
	if err != nil {
		m.logger.Error("session sweep failed", zap.Error(err))
		return
	}
	for _, sess := range sessions {
		if m.expired(sess) {
			m.evict(ctx, sess)
		}
	}
}

// Count returns the number of stored sessions, expired or not.
func (m *Manager) Count(ctx context.Context) int {
	sessions, err := m.store.List(ctx)
	if err != nil {
		return 0
	}
	return len(sessions)
}

func (m *Manager) expired(sess *Session) bool {
	return m.now().Sub(sess.LastActive) > m.timeout
}

// evict removes an expired session. Delete tolerates a concurrent eviction
// of the same handle, so the expiry is journaled at most once per caller.
func (m *Manager) evict(ctx context.Context, sess *Session) {
	if err := m.store.Delete(ctx, sess.Handle); err != nil {
		m.logger.Error("failed to evict session", zap.Int64("handle", sess.Handle), zap.Error(err))
		return
	}
	m.journal.Log(ctx, sess, cnst.ActionSessionExpired, nil)
	m.logger.Info("session expired", zap.String("username", sess.Username))
}
