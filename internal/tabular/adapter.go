package tabular

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/blob"
	"github.com/facetlabs/facet/internal/common/cnst"
)

// AccountColumns are the required columns of the account table.
var AccountColumns = []string{"USERNAME", "PASSWORD", "ROLE", "APPROVED"}

// Adapter loads and saves named tables through the blob store. Saves are
// whole-table overwrites; callers re-load immediately before writing to
// keep the lost-update window as small as this storage model allows.
type Adapter struct {
	logger *zap.Logger
	store  blob.Store
}

// NewAdapter creates a tabular store adapter over the given blob store.
func NewAdapter(logger *zap.Logger, store blob.Store) *Adapter {
	return &Adapter{
		logger: logger.Named("tabular"),
		store:  store,
	}
}

// Load reads the table at key and verifies the required columns exist.
func (a *Adapter) Load(ctx context.Context, key string, required []string) (*Table, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	t, err := Decode(data)
	if err != nil {
		return nil, err
	}
	for _, col := range required {
		if !t.HasColumn(col) {
			return nil, fmt.Errorf("table %s: missing required column %s", key, col)
		}
	}
	return t, nil
}

// Save overwrites the table at key.
func (a *Adapter) Save(ctx context.Context, key string, t *Table) error {
	data, err := Encode(t)
	if err != nil {
		return err
	}
	if err := a.store.Put(ctx, key, data); err != nil {
		return err
	}
	a.logger.Info("saved table", zap.String("key", key), zap.Int("rows", len(t.Rows)))
	return nil
}

// LoadAccounts reads the account table. On any failure it falls back to the
// built-in seed table so the system stays bootable with a missing or corrupt
// accounts blob.
func (a *Adapter) LoadAccounts(ctx context.Context) *Table {
	t, err := a.Load(ctx, cnst.AccountsKey, AccountColumns)
	if err != nil {
		a.logger.Error("failed to load accounts, using seed table", zap.Error(err))
		return SeedAccounts()
	}
	return t
}

// SeedAccounts is the minimal bootable account table: one approved admin.
func SeedAccounts() *Table {
	t := NewTable(AccountColumns...)
	t.Append(map[string]string{
		"USERNAME": "prince",
		"PASSWORD": "1234",
		"ROLE":     cnst.RoleAdmin,
		"APPROVED": cnst.Yes,
	})
	return t
}
