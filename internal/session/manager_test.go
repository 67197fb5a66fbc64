package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/account"
	"github.com/facetlabs/facet/internal/blob"
	"github.com/facetlabs/facet/internal/common/cnst"
	"github.com/facetlabs/facet/internal/common/errorx"
)

type fakeAuth struct {
	accounts map[string]*account.Account
}

func (f *fakeAuth) Authenticate(_ context.Context, username, _ string) (*account.Account, error) {
	if a, ok := f.accounts[username]; ok {
		return a, nil
	}
	return nil, errorx.ErrInvalidCredentials
}

type fakeJournal struct {
	actions []string
}

func (f *fakeJournal) Log(_ context.Context, _ *Session, action string, _ map[string]string) {
	f.actions = append(f.actions, action)
}

func newTestManager(t *testing.T) (*Manager, *fakeJournal, *time.Time) {
	t.Helper()
	auth := &fakeAuth{accounts: map[string]*account.Account{
		"prince": {Username: "prince", Role: cnst.RoleAdmin, Approved: true},
		"ruby":   {Username: "Ruby", Role: "Supplier", Approved: true},
	}}
	journal := &fakeJournal{}
	store := NewMemoryStore(zap.NewNop(), blob.NewMemoryStore())
	m := NewManager(zap.NewNop(), store, auth, journal, time.Hour)

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, journal, &now
}

func TestManager_Login(t *testing.T) {
	m, journal, _ := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Login(ctx, 1, "prince", "1234")
	assert.NoError(t, err)
	assert.Equal(t, cnst.RoleAdmin, sess.Role)
	assert.Empty(t, sess.SupplierKey)
	assert.Equal(t, []string{cnst.ActionLogin}, journal.actions)

	// role is normalized and suppliers get their stock key
	sess, err = m.Login(ctx, 2, "ruby", "x")
	assert.NoError(t, err)
	assert.Equal(t, cnst.RoleSupplier, sess.Role)
	assert.Equal(t, "supplier_ruby", sess.SupplierKey)

	_, err = m.Login(ctx, 3, "mallory", "x")
	assert.ErrorIs(t, err, errorx.ErrInvalidCredentials)
}

func TestManager_LoginReplacesSession(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Login(ctx, 1, "prince", "1234")
	assert.NoError(t, err)
	_, err = m.Login(ctx, 1, "ruby", "x")
	assert.NoError(t, err)

	sess := m.Get(ctx, 1)
	assert.NotNil(t, sess)
	assert.Equal(t, "Ruby", sess.Username)
	assert.Equal(t, 1, m.Count(ctx))
}

func TestManager_LazyExpiry(t *testing.T) {
	m, journal, now := newTestManager(t)
	ctx := context.Background()

	_, err := m.Login(ctx, 1, "prince", "1234")
	assert.NoError(t, err)

	// activity inside the timeout keeps the session alive
	*now = now.Add(30 * time.Minute)
	assert.NotNil(t, m.Get(ctx, 1))

	// Get refreshed the stamp, so another 59 minutes is still fine
	*now = now.Add(59 * time.Minute)
	assert.NotNil(t, m.Get(ctx, 1))

	// idle past the timeout: evicted on first touch, journaled exactly once
	*now = now.Add(61 * time.Minute)
	assert.Nil(t, m.Get(ctx, 1))
	assert.Nil(t, m.Get(ctx, 1))
	assert.Equal(t, []string{cnst.ActionLogin, cnst.ActionSessionExpired}, journal.actions)
}

func TestManager_Logout(t *testing.T) {
	m, journal, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Login(ctx, 1, "prince", "1234")
	assert.NoError(t, err)

	sess := m.Logout(ctx, 1)
	assert.NotNil(t, sess)
	assert.Equal(t, "prince", sess.Username)
	assert.Nil(t, m.Get(ctx, 1))
	assert.Equal(t, []string{cnst.ActionLogin, cnst.ActionLogout}, journal.actions)

	// logging out without a session is a no-op
	assert.Nil(t, m.Logout(ctx, 1))
}

func TestManager_Sweep(t *testing.T) {
	m, journal, now := newTestManager(t)
	ctx := context.Background()

	_, err := m.Login(ctx, 1, "prince", "1234")
	assert.NoError(t, err)
	*now = now.Add(30 * time.Minute)
	_, err = m.Login(ctx, 2, "ruby", "x")
	assert.NoError(t, err)

	// only the first session is past the timeout
	*now = now.Add(45 * time.Minute)
	m.Sweep(ctx)

	assert.Equal(t, 1, m.Count(ctx))
	assert.NotNil(t, m.Get(ctx, 2))
	assert.Equal(t, []string{cnst.ActionLogin, cnst.ActionLogin, cnst.ActionSessionExpired}, journal.actions)
}
