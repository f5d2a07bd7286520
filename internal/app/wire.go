package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/rudraroyaltypython/inventory-sys/internal/accounting"
	"github.com/rudraroyaltypython/inventory-sys/internal/inventory"
	"github.com/rudraroyaltypython/inventory-sys/internal/masterdata"
	"github.com/rudraroyaltypython/inventory-sys/internal/observability"
	"github.com/rudraroyaltypython/inventory-sys/internal/platform/cache"
	"github.com/rudraroyaltypython/inventory-sys/internal/purchases"
	"github.com/rudraroyaltypython/inventory-sys/internal/sales"
)

// Services holds the domain services shared by the API, the worker and invctl.
type Services struct {
	Accounting *accounting.Service
	Catalog    *inventory.CatalogService
	MasterData masterdata.Services
	Purchases  *purchases.Service
	Sales      *sales.Service
	Invoices   *sales.InvoiceService

	masterDataHandler *masterdata.Handler
}

// BuildServices wires repositories and services over the given stores. A nil
// redis client leaves catalog imports unguarded by the distributed lock.
func BuildServices(cfg *Config, pool *pgxpool.Pool, redisClient redis.UniversalClient, metrics *observability.Metrics, logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		locker   *cache.Locker
		versions *cache.Versions
	)
	if redisClient != nil {
		locker = cache.NewLocker(redisClient)
		versions = cache.NewVersions(redisClient)
	}

	mdHandler, mdServices := masterdata.New(pool, logger)
	return &Services{
		Accounting: accounting.NewService(
			accounting.NewRepository(pool),
			logger.With(slog.String("module", "accounting")),
			accounting.ServiceConfig{RecalcConcurrency: cfg.RecalcConcurrency},
			metrics,
		),
		Catalog: inventory.NewCatalogService(
			inventory.NewRepository(pool),
			locker,
			versions,
			metrics,
			logger.With(slog.String("module", "inventory")),
			inventory.ServiceConfig{ParsePolicy: cfg.ParsePolicy, LockTTL: cfg.ImportLockTTL},
		),
		MasterData: mdServices,
		Purchases: purchases.NewService(
			purchases.NewRepository(pool),
			logger.With(slog.String("module", "purchases")),
			purchases.ServiceConfig{TotalPolicy: cfg.TotalPolicy},
			metrics,
		),
		Sales: sales.NewService(
			sales.NewRepository(pool),
			logger.With(slog.String("module", "sales")),
			sales.ServiceConfig{TotalPolicy: cfg.TotalPolicy},
			metrics,
		),
		Invoices: sales.NewInvoiceService(
			sales.NewRepository(pool),
			logger.With(slog.String("module", "invoices")),
			sales.ServiceConfig{TotalPolicy: cfg.TotalPolicy},
		),
		masterDataHandler: mdHandler,
	}
}

// Handlers builds the HTTP handlers for the wired services.
func (s *Services) Handlers(cfg *Config, logger *slog.Logger) RouterParams {
	return RouterParams{
		Logger:            logger,
		Config:            cfg,
		AccountingHandler: accounting.NewHandler(logger, s.Accounting),
		MasterDataHandler: s.masterDataHandler,
		InventoryHandler:  inventory.NewHandler(logger, s.Catalog, cfg.ImportMaxBytes),
		PurchasesHandler:  purchases.NewHandler(logger, s.Purchases),
		SalesHandler:      sales.NewHandler(logger, s.Sales, s.Invoices),
	}
}
