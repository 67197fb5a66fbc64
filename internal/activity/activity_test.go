package activity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/blob"
	"github.com/facetlabs/facet/internal/common/cnst"
	"github.com/facetlabs/facet/internal/session"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func TestLogger_AppendsPerDayPerUser(t *testing.T) {
	blobs := blob.NewMemoryStore()
	l := NewLogger(zap.NewNop(), blobs, ist)
	l.now = func() time.Time { return time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC) } // 2025-01-02 in IST
	ctx := context.Background()

	sess := &session.Session{Handle: 99, Username: "prince", Role: cnst.RoleAdmin}
	l.Log(ctx, sess, cnst.ActionLogin, nil)
	l.Log(ctx, sess, cnst.ActionLogout, map[string]string{"reason": "manual"})

	// timestamps are journaled in the configured zone, so the blob lands
	// under the local date
	entries, err := l.Entries(ctx, "2025-01-02", "prince")
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, cnst.ActionLogin, entries[0].Action)
	assert.Equal(t, "04:30:00", entries[0].Time)
	assert.Equal(t, int64(99), entries[0].Telegram)
	assert.Equal(t, "manual", entries[1].Details["reason"])

	none, err := l.Entries(ctx, "2025-01-01", "prince")
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestLogger_RestartsUnreadableJournal(t *testing.T) {
	blobs := blob.NewMemoryStore()
	l := NewLogger(zap.NewNop(), blobs, time.UTC)
	l.now = func() time.Time { return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	key := cnst.ActivityLogDir + "2025-01-01/ruby.json"
	assert.NoError(t, blobs.Put(ctx, key, []byte("not json")))

	l.Log(ctx, &session.Session{Username: "ruby", Role: cnst.RoleSupplier}, cnst.ActionStockUpload, nil)

	entries, err := l.Entries(ctx, "2025-01-01", "ruby")
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNotifier_PushUnreadMarkRead(t *testing.T) {
	blobs := blob.NewMemoryStore()
	n := NewNotifier(zap.NewNop(), blobs, time.UTC)
	n.now = func() time.Time { return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	assert.Empty(t, n.Unread(ctx, cnst.RoleSupplier, "ruby"))

	n.Push(ctx, cnst.RoleSupplier, "ruby", "New deal d-1")
	n.Push(ctx, cnst.RoleSupplier, "ruby", "New deal d-2")
	n.Push(ctx, cnst.RoleClient, "pearl", "Supplier accepted d-1")

	unread := n.Unread(ctx, cnst.RoleSupplier, "ruby")
	assert.Len(t, unread, 2)
	assert.Equal(t, "New deal d-1", unread[0].Message)
	assert.Equal(t, "2025-01-01 12:00", unread[0].Time)

	// inboxes are keyed by role and username
	assert.Len(t, n.Unread(ctx, cnst.RoleClient, "pearl"), 1)
	assert.Empty(t, n.Unread(ctx, cnst.RoleClient, "ruby"))

	n.MarkRead(ctx, cnst.RoleSupplier, "ruby")
	assert.Empty(t, n.Unread(ctx, cnst.RoleSupplier, "ruby"))
	assert.Len(t, n.Unread(ctx, cnst.RoleClient, "pearl"), 1)

	// new messages after a mark-read are unread again
	n.Push(ctx, cnst.RoleSupplier, "ruby", "New deal d-3")
	assert.Len(t, n.Unread(ctx, cnst.RoleSupplier, "ruby"), 1)
}
