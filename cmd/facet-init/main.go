// Command facet-init provisions a fresh blob store: the seed account
// table, empty combined stock and deal-history tables, an empty session
// snapshot and the sample upload template. Existing blobs are left alone,
// so running it against a live store is safe.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/blob"
	"github.com/facetlabs/facet/internal/common/cnst"
	"github.com/facetlabs/facet/internal/common/config"
	"github.com/facetlabs/facet/internal/deal"
	"github.com/facetlabs/facet/internal/stock"
	"github.com/facetlabs/facet/internal/tabular"
	"github.com/facetlabs/facet/pkg/logger"
	"github.com/facetlabs/facet/pkg/version"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of facet-init",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("facet-init version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "facet-init",
		Short: "Bootstrap the facet blob store",
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "facet.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func run() {
	cfg, cfgPath, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}

	lg, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	ctx := context.Background()

	blobs, err := blob.New(lg, &cfg.Blob)
	if err != nil {
		lg.Fatal("Failed to initialize blob store", zap.String("type", cfg.Blob.Type), zap.Error(err))
	}
	tables := tabular.NewAdapter(lg, blobs)

	seedTable := func(key string, t *tabular.Table) {
		if _, err := blobs.Get(ctx, key); err == nil {
			lg.Info("blob exists, skipping", zap.String("key", key))
			return
		} else if !errors.Is(err, blob.ErrNotFound) {
			lg.Fatal("Failed to probe blob", zap.String("key", key), zap.Error(err))
		}
		if err := tables.Save(ctx, key, t); err != nil {
			lg.Fatal("Failed to seed table", zap.String("key", key), zap.Error(err))
		}
		lg.Info("seeded table", zap.String("key", key), zap.Int("rows", len(t.Rows)))
	}

	seedTable(cnst.AccountsKey, tabular.SeedAccounts())
	seedTable(cnst.CombinedStockKey, tabular.NewTable(stock.CombinedColumns...))
	seedTable(cnst.DealHistoryKey, tabular.NewTable(deal.Columns...))
	seedTable(cnst.SampleTemplateKey, tabular.NewTable(stock.UploadColumns...))

	if _, err := blobs.Get(ctx, cnst.SessionKey); errors.Is(err, blob.ErrNotFound) {
		if err := blobs.Put(ctx, cnst.SessionKey, []byte("{}")); err != nil {
			lg.Fatal("Failed to seed session snapshot", zap.Error(err))
		}
		lg.Info("seeded session snapshot", zap.String("key", cnst.SessionKey))
	}

	lg.Info("bootstrap complete", zap.String("version", version.Get()))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
