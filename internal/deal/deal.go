// Package deal implements the trade-proposal lifecycle between client,
// supplier and admin. A deal's (supplier action, admin action, final status)
// triple is only ever one of five legal combinations; anything else is a
// corrupt record and never enters or leaves storage.
package deal

import (
	"strconv"

	"github.com/facetlabs/facet/internal/common/cnst"
	"github.com/facetlabs/facet/internal/common/errorx"
)

// Deal is one trade proposal.
type Deal struct {
	ID             string
	StoneID        string
	Supplier       string
	Client         string
	ActualPrice    float64
	OfferPrice     float64
	SupplierAction string
	AdminAction    string
	FinalStatus    string
	CreatedAt      string
}

// state is a (supplier action, admin action, final status) triple.
type state struct {
	supplier string
	admin    string
	final    string
}

// The five legal triples. Everything else is corrupt.
var legalStates = map[state]struct{}{
	{cnst.StatusPending, cnst.StatusPending, cnst.StatusOpen}:        {}, // awaiting supplier
	{cnst.StatusAccepted, cnst.StatusPending, cnst.StatusOpen}:       {}, // awaiting admin
	{cnst.StatusRejected, cnst.StatusRejected, cnst.StatusClosed}:    {}, // supplier rejected
	{cnst.StatusAccepted, cnst.StatusApproved, cnst.StatusCompleted}: {}, // admin approved
	{cnst.StatusAccepted, cnst.StatusRejected, cnst.StatusClosed}:    {}, // admin rejected
}

func (d *Deal) state() state {
	return state{d.SupplierAction, d.AdminAction, d.FinalStatus}
}

// String renders the triple for logs and state errors.
func (s state) String() string {
	return "(" + s.supplier + "," + s.admin + "," + s.final + ")"
}

// Validate rejects any deal whose triple is not in the legal table.
func Validate(d *Deal) error {
	if _, ok := legalStates[d.state()]; !ok {
		return &errorx.CorruptRecordError{
			Table:  cnst.DealHistoryKey,
			Detail: "deal " + d.ID + " has illegal state " + d.state().String(),
		}
	}
	return nil
}

// Terminal reports whether the deal accepts no further transitions.
func (d *Deal) Terminal() bool {
	return d.FinalStatus == cnst.StatusCompleted || d.FinalStatus == cnst.StatusClosed
}

// AwaitingSupplier reports whether the deal is newly requested.
func (d *Deal) AwaitingSupplier() bool {
	return d.state() == state{cnst.StatusPending, cnst.StatusPending, cnst.StatusOpen}
}

// AwaitingAdmin reports whether the supplier accepted and the admin has not
// yet ruled.
func (d *Deal) AwaitingAdmin() bool {
	return d.state() == state{cnst.StatusAccepted, cnst.StatusPending, cnst.StatusOpen}
}

func fromRow(row map[string]string) *Deal {
	actual, _ := strconv.ParseFloat(row["Actual Price"], 64)
	offer, _ := strconv.ParseFloat(row["Offer Price"], 64)
	return &Deal{
		ID:             row["Deal ID"],
		StoneID:        row["Stone ID"],
		Supplier:       row["Supplier"],
		Client:         row["Client"],
		ActualPrice:    actual,
		OfferPrice:     offer,
		SupplierAction: row["Supplier Action"],
		AdminAction:    row["Admin Action"],
		FinalStatus:    row["Final Status"],
		CreatedAt:      row["Created At"],
	}
}

func toRow(d *Deal) map[string]string {
	return map[string]string{
		"Deal ID":         d.ID,
		"Stone ID":        d.StoneID,
		"Supplier":        d.Supplier,
		"Client":          d.Client,
		"Actual Price":    strconv.FormatFloat(d.ActualPrice, 'f', -1, 64),
		"Offer Price":     strconv.FormatFloat(d.OfferPrice, 'f', -1, 64),
		"Supplier Action": d.SupplierAction,
		"Admin Action":    d.AdminAction,
		"Final Status":    d.FinalStatus,
		"Created At":      d.CreatedAt,
	}
}

// Columns is the deal-history table schema.
var Columns = []string{
	"Deal ID", "Stone ID", "Supplier", "Client",
	"Actual Price", "Offer Price", "Supplier Action",
	"Admin Action", "Final Status", "Created At",
}
