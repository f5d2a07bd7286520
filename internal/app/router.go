package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rudraroyaltypython/inventory-sys/internal/accounting"
	"github.com/rudraroyaltypython/inventory-sys/internal/inventory"
	"github.com/rudraroyaltypython/inventory-sys/internal/masterdata"
	"github.com/rudraroyaltypython/inventory-sys/internal/observability"
	"github.com/rudraroyaltypython/inventory-sys/internal/platform/httpx"
	"github.com/rudraroyaltypython/inventory-sys/internal/purchases"
	"github.com/rudraroyaltypython/inventory-sys/internal/sales"
	"github.com/rudraroyaltypython/inventory-sys/jobs"
)

// HealthChecker reports whether a backing service is reachable.
type HealthChecker func(r *http.Request) error

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Metrics           *observability.Metrics
	Health            map[string]HealthChecker
	AccountingHandler *accounting.Handler
	MasterDataHandler *masterdata.Handler
	InventoryHandler  *inventory.Handler
	PurchasesHandler  *purchases.Handler
	SalesHandler      *sales.Handler
	JobHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with the service defaults.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", healthz(logger, params.Health))
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	if params.AccountingHandler != nil {
		r.Route("/accounting", params.AccountingHandler.MountRoutes)
	}
	if params.MasterDataHandler != nil {
		r.Route("/masterdata", params.MasterDataHandler.MountRoutes)
	}
	if params.InventoryHandler != nil {
		perMinute := 0
		if params.Config != nil {
			perMinute = params.Config.RateLimitPerMinute
		}
		r.Route("/inventory", func(r chi.Router) {
			r.Use(uploadLimiter(perMinute))
			params.InventoryHandler.MountRoutes(r)
		})
	}
	if params.PurchasesHandler != nil {
		r.Route("/purchases", params.PurchasesHandler.MountRoutes)
	}
	if params.SalesHandler != nil {
		r.Route("/sales", params.SalesHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, http.StatusText(http.StatusNotFound), "no route for "+r.URL.Path)
	})
	return r
}

func healthz(logger *slog.Logger, checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(r); err != nil {
				logger.Warn("health check failed", slog.String("dependency", name), slog.Any("error", err))
				status[name] = "unavailable"
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		httpx.JSON(w, code, status)
	}
}
