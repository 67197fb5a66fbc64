package deal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/common/cnst"
	"github.com/facetlabs/facet/internal/common/errorx"
	"github.com/facetlabs/facet/internal/stock"
	"github.com/facetlabs/facet/internal/tabular"
	"github.com/facetlabs/facet/internal/textnorm"
)

// Notifier pushes inbox messages to the counterparties of a deal.
type Notifier interface {
	Push(ctx context.Context, role, username, message string)
}

// Service runs the deal lifecycle over the deal-history table.
type Service struct {
	logger *zap.Logger
	tables *tabular.Adapter
	stocks *stock.Service
	notify Notifier
	now    func() time.Time
	newID  func() string
}

// NewService creates the deal service.
func NewService(logger *zap.Logger, tables *tabular.Adapter, stocks *stock.Service, notify Notifier) *Service {
	return &Service{
		logger: logger.Named("deal"),
		tables: tables,
		stocks: stocks,
		notify: notify,
		now:    time.Now,
		newID:  func() string { return uuid.NewString()[:8] },
	}
}

// load reads the deal-history table, dropping corrupt rows. A missing table
// degrades to an empty one; deal history starts empty on a fresh store.
func (s *Service) load(ctx context.Context) (*tabular.Table, []*Deal) {
	t, err := s.tables.Load(ctx, cnst.DealHistoryKey, nil)
	if err != nil {
		s.logger.Warn("failed to load deal history", zap.Error(err))
		return tabular.NewTable(Columns...), nil
	}
	for _, col := range Columns {
		t.EnsureColumn(col)
	}

	deals := make([]*Deal, 0, len(t.Rows))
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		d := fromRow(row)
		if err := Validate(d); err != nil {
			s.logger.Warn("dropping corrupt deal row", zap.Error(err))
			continue
		}
		kept = append(kept, row)
		deals = append(deals, d)
	}
	t.Rows = kept
	return t, deals
}

// Request creates a deal in (PENDING, PENDING, OPEN) for an unlocked stone.
func (s *Service) Request(ctx context.Context, client, stoneID string, offer float64) (*Deal, error) {
	item, err := s.stocks.FindStone(ctx, stoneID)
	if err != nil {
		return nil, err
	}
	if item.Locked {
		return nil, errorx.Validationf("stone %s is no longer available", stoneID)
	}
	if offer <= 0 {
		return nil, errorx.Validationf("offer price must be positive")
	}

	d := &Deal{
		ID:             s.newID(),
		StoneID:        item.StockID,
		Supplier:       item.Supplier,
		Client:         textnorm.Normalize(client),
		ActualPrice:    item.Weight * item.PricePerCarat,
		OfferPrice:     offer,
		SupplierAction: cnst.StatusPending,
		AdminAction:    cnst.StatusPending,
		FinalStatus:    cnst.StatusOpen,
		CreatedAt:      s.now().UTC().Format(time.RFC3339),
	}
	if err := Validate(d); err != nil {
		return nil, err
	}

	t, _ := s.load(ctx)
	t.Append(toRow(d))
	if err := s.tables.Save(ctx, cnst.DealHistoryKey, t); err != nil {
		return nil, err
	}

	s.notify.Push(ctx, cnst.RoleSupplier, d.Supplier,
		fmt.Sprintf("New deal %s for stone %s: offer $%.2f", d.ID, d.StoneID, d.OfferPrice))
	s.logger.Info("deal requested",
		zap.String("deal", d.ID),
		zap.String("stone", d.StoneID),
		zap.String("client", d.Client))
	return d, nil
}

// SupplierRespond moves a deal awaiting the supplier to accepted (awaiting
// admin) or rejects it outright, which closes it immediately.
func (s *Service) SupplierRespond(ctx context.Context, supplier, dealID string, accept bool) (*Deal, error) {
	return s.respond(ctx, dealID, func(d *Deal) error {
		if textnorm.Normalize(d.Supplier) != textnorm.Normalize(supplier) {
			return errorx.Validationf("deal %s does not belong to you", dealID)
		}
		if !d.AwaitingSupplier() {
			return &errorx.InvalidStateError{DealID: d.ID, From: d.state().String(), Action: "supplier_respond"}
		}
		if accept {
			d.SupplierAction = cnst.StatusAccepted
		} else {
			d.SupplierAction = cnst.StatusRejected
			d.AdminAction = cnst.StatusRejected
			d.FinalStatus = cnst.StatusClosed
		}
		return nil
	}, func(d *Deal) {
		if accept {
			s.notify.Push(ctx, cnst.RoleClient, d.Client,
				fmt.Sprintf("Supplier accepted deal %s; awaiting admin approval", d.ID))
		} else {
			s.notify.Push(ctx, cnst.RoleClient, d.Client,
				fmt.Sprintf("Supplier rejected deal %s", d.ID))
		}
	})
}

// AdminRespond rules on a supplier-accepted deal. Approval completes the
// deal and locks the stone; rejection closes it.
func (s *Service) AdminRespond(ctx context.Context, dealID string, approve bool) (*Deal, error) {
	return s.respond(ctx, dealID, func(d *Deal) error {
		if !d.AwaitingAdmin() {
			return &errorx.InvalidStateError{DealID: d.ID, From: d.state().String(), Action: "admin_respond"}
		}
		if approve {
			d.AdminAction = cnst.StatusApproved
			d.FinalStatus = cnst.StatusCompleted
		} else {
			d.AdminAction = cnst.StatusRejected
			d.FinalStatus = cnst.StatusClosed
		}
		return nil
	}, func(d *Deal) {
		verdict := "rejected"
		if approve {
			verdict = "approved"
			if err := s.stocks.LockStone(ctx, d.Supplier, d.StoneID); err != nil {
				s.logger.Error("failed to lock stone after completion",
					zap.String("deal", d.ID), zap.Error(err))
			}
		}
		s.notify.Push(ctx, cnst.RoleClient, d.Client,
			fmt.Sprintf("Admin %s deal %s", verdict, d.ID))
		s.notify.Push(ctx, cnst.RoleSupplier, d.Supplier,
			fmt.Sprintf("Admin %s deal %s", verdict, d.ID))
	})
}

// respond applies mutate to the matching deal under the standard
// load-modify-save-all cycle, then runs after on success.
func (s *Service) respond(ctx context.Context, dealID string, mutate func(*Deal) error, after func(*Deal)) (*Deal, error) {
	t, deals := s.load(ctx)

	want := textnorm.Normalize(dealID)
	for i, d := range deals {
		if textnorm.Normalize(d.ID) != want {
			continue
		}
		if err := mutate(d); err != nil {
			if errorx.IsInvalidState(err) {
				s.logger.Warn("illegal deal transition", zap.Error(err))
			}
			return nil, err
		}
		if err := Validate(d); err != nil {
			return nil, err
		}
		t.Rows[i] = toRow(d)
		if err := s.tables.Save(ctx, cnst.DealHistoryKey, t); err != nil {
			return nil, err
		}
		after(d)
		s.logger.Info("deal updated",
			zap.String("deal", d.ID),
			zap.String("state", d.state().String()))
		return d, nil
	}
	return nil, errorx.Validationf("deal %s not found", dealID)
}

// ForSupplier returns the supplier's deals, newest first in table order.
func (s *Service) ForSupplier(ctx context.Context, supplier string) []*Deal {
	_, deals := s.load(ctx)
	want := textnorm.Normalize(supplier)
	var out []*Deal
	for _, d := range deals {
		if textnorm.Normalize(d.Supplier) == want {
			out = append(out, d)
		}
	}
	return out
}

// ForClient returns the client's deals.
func (s *Service) ForClient(ctx context.Context, client string) []*Deal {
	_, deals := s.load(ctx)
	want := textnorm.Normalize(client)
	var out []*Deal
	for _, d := range deals {
		if textnorm.Normalize(d.Client) == want {
			out = append(out, d)
		}
	}
	return out
}

// All returns every valid deal, for the admin deal report.
func (s *Service) All(ctx context.Context) []*Deal {
	_, deals := s.load(ctx)
	return deals
}
