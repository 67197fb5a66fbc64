package stock

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/blob"
	"github.com/facetlabs/facet/internal/common/cnst"
	"github.com/facetlabs/facet/internal/common/errorx"
	"github.com/facetlabs/facet/internal/tabular"
	"github.com/facetlabs/facet/internal/textnorm"
)

// Item is one stone row from the combined view.
type Item struct {
	StockID       string
	Shape         string
	Weight        float64
	PricePerCarat float64
	Supplier      string
	Locked        bool
	Row           map[string]string
}

// Summary aggregates the combined view for the admin stock report.
type Summary struct {
	Diamonds  int
	Carats    float64
	Value     float64
	Suppliers int
	TopShapes []ShapeCount
}

// ShapeCount is one entry of the shape leaderboard.
type ShapeCount struct {
	Shape string
	Count int
}

// Service manages supplier uploads and the combined materialized view.
type Service struct {
	logger *zap.Logger
	blobs  blob.Store
	tables *tabular.Adapter
	now    func() time.Time
}

// NewService creates the stock service.
func NewService(logger *zap.Logger, blobs blob.Store, tables *tabular.Adapter) *Service {
	return &Service{
		logger: logger.Named("stock"),
		blobs:  blobs,
		tables: tables,
		now:    time.Now,
	}
}

func supplierKey(supplier string) string {
	return cnst.SupplierStockDir + textnorm.Normalize(supplier) + ".xlsx"
}

// Upload validates a supplier workbook, stores it as that supplier's stock
// blob and rebuilds the combined view.
func (s *Service) Upload(ctx context.Context, supplier string, workbook []byte) (int, error) {
	t, err := tabular.Decode(workbook)
	if err != nil {
		return 0, errorx.Validationf("could not read the Excel file: %v", err)
	}
	for _, col := range UploadColumns {
		if !t.HasColumn(col) {
			return 0, errorx.Validationf("missing required column: %s", col)
		}
	}
	if len(t.Rows) == 0 {
		return 0, errorx.Validationf("the file has no stock rows")
	}

	t.EnsureColumn(colUploaded)
	stamp := s.now().UTC().Format(time.RFC3339)
	for _, row := range t.Rows {
		row[colUploaded] = stamp
	}

	if err := s.tables.Save(ctx, supplierKey(supplier), t); err != nil {
		return 0, err
	}
	s.logger.Info("supplier stock uploaded",
		zap.String("supplier", supplier),
		zap.Int("rows", len(t.Rows)))

	if err := s.Rebuild(ctx); err != nil {
		s.logger.Error("combined stock rebuild failed", zap.Error(err))
	}
	return len(t.Rows), nil
}

// Rebuild scans every per-supplier blob and overwrites the combined view.
// Unreadable supplier blobs are skipped and logged. The result is idempotent
// and order-independent in content for a fixed set of inputs.
func (s *Service) Rebuild(ctx context.Context) error {
	keys, err := s.blobs.List(ctx, cnst.SupplierStockDir)
	if err != nil {
		return err
	}

	combined := tabular.NewTable(CombinedColumns...)
	sources := 0
	for _, key := range keys {
		if !strings.HasSuffix(key, ".xlsx") || key == cnst.SampleTemplateKey {
			continue
		}
		data, err := s.blobs.Get(ctx, key)
		if err != nil {
			s.logger.Error("failed to fetch supplier blob", zap.String("key", key), zap.Error(err))
			continue
		}
		t, err := tabular.Decode(data)
		if err != nil {
			s.logger.Error("failed to decode supplier blob", zap.String("key", key), zap.Error(err))
			continue
		}

		supplier := supplierFromKey(key)
		for _, row := range t.Rows {
			out := make(map[string]string, len(CombinedColumns))
			for _, col := range CombinedColumns {
				out[col] = row[col]
			}
			out[colSupplier] = supplier
			if out[colLocked] == "" {
				out[colLocked] = cnst.No
			}
			if out["Diamond Type"] == "" {
				out["Diamond Type"] = "Unknown"
			}
			combined.Append(out)
		}
		sources++
	}

	if err := s.tables.Save(ctx, cnst.CombinedStockKey, combined); err != nil {
		return err
	}
	s.logger.Info("rebuilt combined stock",
		zap.Int("items", len(combined.Rows)),
		zap.Int("suppliers", sources))
	return nil
}

func supplierFromKey(key string) string {
	base := strings.TrimPrefix(key, cnst.SupplierStockDir)
	return textnorm.Normalize(strings.TrimSuffix(base, ".xlsx"))
}

// Combined loads the combined view as items. A missing or unreadable view
// degrades to empty.
func (s *Service) Combined(ctx context.Context) []Item {
	t, err := s.tables.Load(ctx, cnst.CombinedStockKey, nil)
	if err != nil {
		s.logger.Warn("failed to load combined stock", zap.Error(err))
		return nil
	}
	items := make([]Item, 0, len(t.Rows))
	for _, row := range t.Rows {
		items = append(items, itemFromRow(row))
	}
	return items
}

func itemFromRow(row map[string]string) Item {
	weight, _ := strconv.ParseFloat(row[colWeight], 64)
	ppc, _ := strconv.ParseFloat(row[colPPC], 64)
	return Item{
		StockID:       row[colStockID],
		Shape:         row[colShape],
		Weight:        weight,
		PricePerCarat: ppc,
		Supplier:      row[colSupplier],
		Locked:        textnorm.Normalize(row[colLocked]) == "yes",
		Row:           row,
	}
}

// FindStone looks a stone up by ID in the combined view.
func (s *Service) FindStone(ctx context.Context, stoneID string) (*Item, error) {
	want := textnorm.Normalize(stoneID)
	for _, item := range s.Combined(ctx) {
		if textnorm.Normalize(item.StockID) == want {
			it := item
			return &it, nil
		}
	}
	return nil, errorx.Validationf("stone %s not found", stoneID)
}

// LockStone flips the LOCKED flag in the owning supplier's blob and
// rebuilds the view, taking a completed stone off the market.
func (s *Service) LockStone(ctx context.Context, supplier, stoneID string) error {
	key := supplierKey(supplier)
	t, err := s.tables.Load(ctx, key, nil)
	if err != nil {
		return err
	}
	t.EnsureColumn(colLocked)

	want := textnorm.Normalize(stoneID)
	found := false
	for _, row := range t.Rows {
		if textnorm.Normalize(row[colStockID]) == want {
			row[colLocked] = cnst.Yes
			found = true
		}
	}
	if !found {
		return fmt.Errorf("stone %s not in supplier table %s", stoneID, supplier)
	}
	if err := s.tables.Save(ctx, key, t); err != nil {
		return err
	}
	return s.Rebuild(ctx)
}

// Summarize aggregates the combined view.
func (s *Service) Summarize(ctx context.Context) Summary {
	items := s.Combined(ctx)
	sum := Summary{Diamonds: len(items)}

	suppliers := map[string]struct{}{}
	shapes := map[string]int{}
	for _, it := range items {
		sum.Carats += it.Weight
		sum.Value += it.Weight * it.PricePerCarat
		if it.Supplier != "" {
			suppliers[it.Supplier] = struct{}{}
		}
		if it.Shape != "" {
			shapes[it.Shape]++
		}
	}
	sum.Suppliers = len(suppliers)

	for shape, count := range shapes {
		sum.TopShapes = append(sum.TopShapes, ShapeCount{Shape: shape, Count: count})
	}
	sort.Slice(sum.TopShapes, func(i, j int) bool {
		if sum.TopShapes[i].Count != sum.TopShapes[j].Count {
			return sum.TopShapes[i].Count > sum.TopShapes[j].Count
		}
		return sum.TopShapes[i].Shape < sum.TopShapes[j].Shape
	})
	if len(sum.TopShapes) > 5 {
		sum.TopShapes = sum.TopShapes[:5]
	}
	return sum
}

// SearchByCarat returns unlocked stones within the carat range.
func (s *Service) SearchByCarat(ctx context.Context, min, max float64) []Item {
	var out []Item
	for _, it := range s.Combined(ctx) {
		if it.Locked {
			continue
		}
		if it.Weight >= min && it.Weight <= max {
			out = append(out, it)
		}
	}
	return out
}

// SmartDeals returns the cheapest unlocked stones by price per carat.
func (s *Service) SmartDeals(ctx context.Context, limit int) []Item {
	var out []Item
	for _, it := range s.Combined(ctx) {
		if !it.Locked && it.PricePerCarat > 0 {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PricePerCarat < out[j].PricePerCarat
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SupplierStock returns a supplier's own rows from the combined view.
func (s *Service) SupplierStock(ctx context.Context, supplier string) []Item {
	want := textnorm.Normalize(supplier)
	var out []Item
	for _, it := range s.Combined(ctx) {
		if it.Supplier == want {
			out = append(out, it)
		}
	}
	return out
}

// DeleteSupplierStock removes a supplier's blob and rebuilds the view.
func (s *Service) DeleteSupplierStock(ctx context.Context, supplier string) error {
	if err := s.blobs.Delete(ctx, supplierKey(supplier)); err != nil {
		return err
	}
	s.logger.Info("deleted supplier stock", zap.String("supplier", supplier))
	return s.Rebuild(ctx)
}
