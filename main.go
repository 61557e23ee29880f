package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	v1 "pricetrack/api/v1"
	"pricetrack/database"
	analyticsapp "pricetrack/internal/analytics/application"
	analyticsinfra "pricetrack/internal/analytics/infrastructure"
	catalogapp "pricetrack/internal/catalog/application"
	cataloginfra "pricetrack/internal/catalog/infrastructure"
	"pricetrack/internal/config"
	exportapp "pricetrack/internal/export/application"
	matchingapp "pricetrack/internal/matching/application"
	matchinginfra "pricetrack/internal/matching/infrastructure"
	"pricetrack/internal/platform/logger"
	sharedinfra "pricetrack/internal/shared/infrastructure"
)

// reports regroupe les services d'analyse derrière l'interface v1.Reports
type reports struct {
	*analyticsapp.LowestMomentService
	*analyticsapp.CampaignService
	*analyticsapp.AggregateService
	*analyticsapp.PriceListService
	*analyticsapp.ReportService
}

func main() {
	cfg, missing := config.Load()

	appLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer appLog.Sync()

	if len(missing) > 0 {
		appLog.Warn("env files not found, using environment and defaults", "files", missing)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.PostgresDSN(), database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		appLog.Fatal("database connection failed", "host", cfg.DBHost, "db", cfg.DBName, "error", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		appLog.Fatal("database migration failed", "error", err)
	}

	// Repositories
	uow := sharedinfra.NewUnitOfWork(db)
	finalProducts := cataloginfra.NewFinalProductRepository(db)
	listings := cataloginfra.NewListingQueryRepository(db)
	catalog := cataloginfra.NewCachedCatalog(cataloginfra.NewCatalogQueryRepository(db), cfg.CatalogCacheTTL)
	defer catalog.Close()
	matches := matchinginfra.NewMatchRepository(db)
	candidates := matchinginfra.NewCandidateQueryRepository(db)
	prices := analyticsinfra.NewPriceQueryRepository(db)

	// Services
	lowest := analyticsapp.NewLowestMomentService(finalProducts, prices)
	campaigns := analyticsapp.NewCampaignService(finalProducts, prices)
	aggregates := analyticsapp.NewAggregateService(finalProducts, prices, catalog)

	handlers := v1.NewHandlers(
		catalogapp.NewFinalProductService(uow, finalProducts, appLog),
		matchingapp.NewMatchService(uow, matches, finalProducts, listings, appLog),
		matchingapp.NewCandidateService(uow, finalProducts, candidates),
		reports{
			LowestMomentService: lowest,
			CampaignService:     campaigns,
			AggregateService:    aggregates,
			PriceListService:    analyticsapp.NewPriceListService(finalProducts, prices),
			ReportService:       analyticsapp.NewReportService(finalProducts, catalog, lowest, campaigns, aggregates, appLog),
		},
		exportapp.NewExportService(lowest, campaigns, appLog),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := v1.NewRouter(v1.RouterConfig{
		Handlers:       handlers,
		Logger:         appLog,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})
	if !cfg.IsProduction() {
		router.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("http server listening", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	appLog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("graceful shutdown failed", "error", err)
	}
}
