package deal

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/blob"
	"github.com/facetlabs/facet/internal/common/cnst"
	"github.com/facetlabs/facet/internal/common/errorx"
	"github.com/facetlabs/facet/internal/stock"
	"github.com/facetlabs/facet/internal/tabular"
)

type recordingNotifier struct {
	pushes []string
}

func (n *recordingNotifier) Push(_ context.Context, role, username, message string) {
	n.pushes = append(n.pushes, role+":"+username+":"+message)
}

func newTestService(t *testing.T) (*Service, *stock.Service, *recordingNotifier) {
	t.Helper()
	blobs := blob.NewMemoryStore()
	tables := tabular.NewAdapter(zap.NewNop(), blobs)
	stocks := stock.NewService(zap.NewNop(), blobs, tables)
	notify := &recordingNotifier{}
	s := NewService(zap.NewNop(), tables, stocks, notify)

	ids := 0
	s.newID = func() string {
		ids++
		return fmt.Sprintf("deal-%d", ids)
	}

	// one supplier with one stone on the market
	tb := tabular.NewTable("Stock #", "Shape", "Weight", "Price Per Carat")
	tb.Append(map[string]string{"Stock #": "D-1", "Shape": "Round", "Weight": "1.50", "Price Per Carat": "4000"})
	assert.NoError(t, tables.Save(context.Background(), cnst.SupplierStockDir+"ruby.xlsx", tb))
	assert.NoError(t, stocks.Rebuild(context.Background()))

	return s, stocks, notify
}

func TestRequest(t *testing.T) {
	s, _, notify := newTestService(t)
	ctx := context.Background()

	d, err := s.Request(ctx, " Pearl ", "d-1", 5000)
	assert.NoError(t, err)
	assert.Equal(t, "deal-1", d.ID)
	assert.Equal(t, "D-1", d.StoneID)
	assert.Equal(t, "ruby", d.Supplier)
	assert.Equal(t, "pearl", d.Client)
	assert.InDelta(t, 6000, d.ActualPrice, 0.001)
	assert.True(t, d.AwaitingSupplier())

	// the supplier hears about it
	assert.Len(t, notify.pushes, 1)
	assert.Contains(t, notify.pushes[0], "supplier:ruby:")
	assert.Contains(t, notify.pushes[0], "deal-1")
}

func TestRequest_Validation(t *testing.T) {
	s, stocks, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Request(ctx, "pearl", "D-404", 100)
	assert.True(t, errorx.IsValidation(err))

	_, err = s.Request(ctx, "pearl", "D-1", 0)
	assert.True(t, errorx.IsValidation(err))

	// a locked stone cannot be requested
	assert.NoError(t, stocks.LockStone(ctx, "ruby", "D-1"))
	_, err = s.Request(ctx, "pearl", "D-1", 100)
	assert.True(t, errorx.IsValidation(err))
}

func TestSupplierRespond_Accept(t *testing.T) {
	s, _, notify := newTestService(t)
	ctx := context.Background()

	d, err := s.Request(ctx, "pearl", "D-1", 5000)
	assert.NoError(t, err)

	got, err := s.SupplierRespond(ctx, "Ruby", d.ID, true)
	assert.NoError(t, err)
	assert.True(t, got.AwaitingAdmin())
	assert.Contains(t, notify.pushes[1], "client:pearl:")

	// responding twice is an illegal transition
	_, err = s.SupplierRespond(ctx, "ruby", d.ID, true)
	assert.True(t, errorx.IsInvalidState(err))
}

func TestSupplierRespond_RejectClosesImmediately(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	d, err := s.Request(ctx, "pearl", "D-1", 5000)
	assert.NoError(t, err)

	got, err := s.SupplierRespond(ctx, "ruby", d.ID, false)
	assert.NoError(t, err)
	assert.Equal(t, cnst.StatusRejected, got.SupplierAction)
	assert.Equal(t, cnst.StatusRejected, got.AdminAction)
	assert.Equal(t, cnst.StatusClosed, got.FinalStatus)
	assert.True(t, got.Terminal())

	// an admin cannot rule on a closed deal
	_, err = s.AdminRespond(ctx, d.ID, true)
	assert.True(t, errorx.IsInvalidState(err))
}

func TestSupplierRespond_Ownership(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	d, err := s.Request(ctx, "pearl", "D-1", 5000)
	assert.NoError(t, err)

	_, err = s.SupplierRespond(ctx, "gem", d.ID, true)
	assert.True(t, errorx.IsValidation(err))

	_, err = s.SupplierRespond(ctx, "ruby", "no-such-deal", true)
	assert.True(t, errorx.IsValidation(err))
}

func TestAdminRespond_ApproveLocksStone(t *testing.T) {
	s, stocks, notify := newTestService(t)
	ctx := context.Background()

	d, err := s.Request(ctx, "pearl", "D-1", 5000)
	assert.NoError(t, err)
	_, err = s.SupplierRespond(ctx, "ruby", d.ID, true)
	assert.NoError(t, err)

	got, err := s.AdminRespond(ctx, d.ID, true)
	assert.NoError(t, err)
	assert.Equal(t, cnst.StatusCompleted, got.FinalStatus)

	// the stone is off the market and both parties were told
	item, err := stocks.FindStone(ctx, "D-1")
	assert.NoError(t, err)
	assert.True(t, item.Locked)
	assert.Len(t, notify.pushes, 4)
	assert.Contains(t, notify.pushes[2], "client:pearl:Admin approved")
	assert.Contains(t, notify.pushes[3], "supplier:ruby:Admin approved")
}

func TestAdminRespond_IllegalFromInitialState(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	d, err := s.Request(ctx, "pearl", "D-1", 5000)
	assert.NoError(t, err)

	// the admin cannot rule before the supplier has accepted
	_, err = s.AdminRespond(ctx, d.ID, true)
	assert.True(t, errorx.IsInvalidState(err))
}

func TestAdminRespond_RejectLeavesStoneUnlocked(t *testing.T) {
	s, stocks, _ := newTestService(t)
	ctx := context.Background()

	d, err := s.Request(ctx, "pearl", "D-1", 5000)
	assert.NoError(t, err)
	_, err = s.SupplierRespond(ctx, "ruby", d.ID, true)
	assert.NoError(t, err)

	got, err := s.AdminRespond(ctx, d.ID, false)
	assert.NoError(t, err)
	assert.Equal(t, cnst.StatusClosed, got.FinalStatus)

	item, err := stocks.FindStone(ctx, "D-1")
	assert.NoError(t, err)
	assert.False(t, item.Locked)
}

func TestListings(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	d1, err := s.Request(ctx, "pearl", "D-1", 5000)
	assert.NoError(t, err)
	d2, err := s.Request(ctx, "opal", "D-1", 4500)
	assert.NoError(t, err)

	assert.Len(t, s.ForSupplier(ctx, "RUBY"), 2)
	assert.Empty(t, s.ForSupplier(ctx, "gem"))

	pearl := s.ForClient(ctx, "pearl")
	assert.Len(t, pearl, 1)
	assert.Equal(t, d1.ID, pearl[0].ID)

	all := s.All(ctx)
	assert.Len(t, all, 2)
	assert.Equal(t, d2.ID, all[1].ID)
}

func TestLoad_DropsCorruptRows(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	d, err := s.Request(ctx, "pearl", "D-1", 5000)
	assert.NoError(t, err)

	// hand-corrupt the stored row
	tb, err := s.tables.Load(ctx, cnst.DealHistoryKey, nil)
	assert.NoError(t, err)
	tb.Append(map[string]string{
		"Deal ID": "bad-1", "Stone ID": "D-1", "Supplier": "ruby", "Client": "pearl",
		"Supplier Action": "PENDING", "Admin Action": "APPROVED", "Final Status": "COMPLETED",
	})
	assert.NoError(t, s.tables.Save(ctx, cnst.DealHistoryKey, tb))

	all := s.All(ctx)
	assert.Len(t, all, 1)
	assert.Equal(t, d.ID, all[0].ID)
}
