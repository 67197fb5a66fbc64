package deal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/facetlabs/facet/internal/common/cnst"
)

func TestValidate_LegalTriples(t *testing.T) {
	legal := []state{
		{cnst.StatusPending, cnst.StatusPending, cnst.StatusOpen},
		{cnst.StatusAccepted, cnst.StatusPending, cnst.StatusOpen},
		{cnst.StatusRejected, cnst.StatusRejected, cnst.StatusClosed},
		{cnst.StatusAccepted, cnst.StatusApproved, cnst.StatusCompleted},
		{cnst.StatusAccepted, cnst.StatusRejected, cnst.StatusClosed},
	}
	for _, st := range legal {
		d := &Deal{ID: "d1", SupplierAction: st.supplier, AdminAction: st.admin, FinalStatus: st.final}
		assert.NoError(t, Validate(d), st.String())
	}
}

func TestValidate_IllegalTriples(t *testing.T) {
	illegal := []state{
		{},
		{cnst.StatusPending, cnst.StatusApproved, cnst.StatusCompleted},
		{cnst.StatusRejected, cnst.StatusPending, cnst.StatusOpen},
		{cnst.StatusPending, cnst.StatusPending, cnst.StatusClosed},
		{cnst.StatusAccepted, cnst.StatusApproved, cnst.StatusOpen},
		{cnst.StatusRejected, cnst.StatusApproved, cnst.StatusCompleted},
	}
	for _, st := range illegal {
		d := &Deal{ID: "d1", SupplierAction: st.supplier, AdminAction: st.admin, FinalStatus: st.final}
		assert.Error(t, Validate(d), st.String())
	}
}

func TestDealPredicates(t *testing.T) {
	d := &Deal{SupplierAction: cnst.StatusPending, AdminAction: cnst.StatusPending, FinalStatus: cnst.StatusOpen}
	assert.True(t, d.AwaitingSupplier())
	assert.False(t, d.AwaitingAdmin())
	assert.False(t, d.Terminal())

	d.SupplierAction = cnst.StatusAccepted
	assert.False(t, d.AwaitingSupplier())
	assert.True(t, d.AwaitingAdmin())

	d.AdminAction = cnst.StatusApproved
	d.FinalStatus = cnst.StatusCompleted
	assert.True(t, d.Terminal())

	d.AdminAction = cnst.StatusRejected
	d.FinalStatus = cnst.StatusClosed
	assert.True(t, d.Terminal())
}

func TestRowRoundTrip(t *testing.T) {
	d := &Deal{
		ID:             "ab12cd34",
		StoneID:        "D-1",
		Supplier:       "ruby",
		Client:         "pearl",
		ActualPrice:    6000,
		OfferPrice:     5500.5,
		SupplierAction: cnst.StatusAccepted,
		AdminAction:    cnst.StatusPending,
		FinalStatus:    cnst.StatusOpen,
		CreatedAt:      "2025-01-01T00:00:00Z",
	}
	got := fromRow(toRow(d))
	assert.Equal(t, d, got)
}
