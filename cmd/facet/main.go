package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/account"
	"github.com/facetlabs/facet/internal/activity"
	"github.com/facetlabs/facet/internal/blob"
	"github.com/facetlabs/facet/internal/common/config"
	"github.com/facetlabs/facet/internal/deal"
	"github.com/facetlabs/facet/internal/gateway"
	"github.com/facetlabs/facet/internal/ratelimit"
	"github.com/facetlabs/facet/internal/router"
	"github.com/facetlabs/facet/internal/session"
	"github.com/facetlabs/facet/internal/stock"
	"github.com/facetlabs/facet/internal/tabular"
	"github.com/facetlabs/facet/pkg/logger"
	"github.com/facetlabs/facet/pkg/metrics"
	"github.com/facetlabs/facet/pkg/version"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of facet",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("facet version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "facet",
		Short: "Facet diamond marketplace bot",
		Long:  `Facet runs the chat-mediated diamond marketplace: Telegram gateway, role workflows and the spreadsheet-backed store`,
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

	lg.Info("Starting facet",
		zap.String("version", version.Get()),
		zap.String("config", cfgPath))

	tz, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		lg.Fatal("Failed to load time zone", zap.String("time_zone", cfg.TimeZone), zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage and the tabular layer over it.
	blobs, err := blob.New(lg, &cfg.Blob)
	if err != nil {
		lg.Fatal("Failed to initialize blob store", zap.String("type", cfg.Blob.Type), zap.Error(err))
	}
	tables := tabular.NewAdapter(lg, blobs)

	// Domain services.
	accounts := account.NewService(lg, tables, false)
	journal := activity.NewLogger(lg, blobs, tz)
	notify := activity.NewNotifier(lg, blobs, tz)
	stocks := stock.NewService(lg, blobs, tables)
	deals := deal.NewService(lg, tables, stocks, notify)

	// Sessions: restore the snapshot before taking traffic.
	store, err := session.NewStore(lg, &cfg.Session, blobs)
	if err != nil {
		lg.Fatal("Failed to initialize session store", zap.String("type", cfg.Session.Type), zap.Error(err))
	}
	if err := store.Load(ctx); err != nil {
		lg.Warn("Failed to restore session snapshot", zap.Error(err))
	}
	sessions := session.NewManager(lg, store, accounts, journal, cfg.Session.Timeout.Duration())

	m := metrics.New(cfg.Metrics)
	limiter := ratelimit.New(cfg.RateLimit.Limit, cfg.RateLimit.Window.Duration())

	r := router.New(lg, limiter, sessions, accounts, stocks, deals, journal, notify, m)

	tg, err := gateway.NewTelegram(lg, &cfg.Telegram, r)
	if err != nil {
		lg.Fatal("Failed to initialize telegram gateway", zap.Error(err))
	}
	go tg.Run(ctx)

	if cfg.Session.Sweep > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Session.Sweep.Duration())
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					sessions.Sweep(ctx)
				}
			}
		}()
	}

	srv := httpServer(cfg, sessions, m)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()
	lg.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("HTTP server shutdown failed", zap.Error(err))
	}
}

// httpServer exposes the liveness surface the hosting platform probes,
// plus Prometheus metrics when enabled.
func httpServer(cfg *config.Config, sessions *session.Manager, m *metrics.Metrics) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), m.GinMiddleware())

	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "Bot is running"})
	})
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"active_sessions": sessions.Count(c.Request.Context()),
		})
	})
	if cfg.Metrics.Enabled {
		engine.GET("/metrics", m.GinHandler())
	}

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
