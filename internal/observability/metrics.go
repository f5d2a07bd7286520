package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/inventory"
)

// Metrics collects Prometheus metrics for the service.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	importsTotal     prometheus.Counter
	importRows       *prometheus.CounterVec
	importDuration   prometheus.Histogram
	balanceRecalcs   prometheus.Counter
	stockAdjustments *prometheus.CounterVec
	stockQuantity    *prometheus.CounterVec
}

// NewMetrics initialises the registry with HTTP and domain collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invsys_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "invsys_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	imports := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invsys_catalog_imports_total",
		Help: "Completed catalog imports.",
	})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invsys_catalog_import_rows_total",
		Help: "Catalog import rows by outcome.",
	}, []string{"result"})
	importDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "invsys_catalog_import_duration_seconds",
		Help:    "Wall time of catalog imports.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
	recalcs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invsys_account_balance_recalculations_total",
		Help: "Committed account balance recalculations.",
	})
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invsys_stock_adjustments_total",
		Help: "Stock adjustments from newly created items, by kind.",
	}, []string{"kind"})
	quantity := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invsys_stock_adjusted_quantity_total",
		Help: "Quantity moved by stock adjustments, by kind.",
	}, []string{"kind"})
	registry.MustRegister(requests, duration, imports, rows, importDuration, recalcs, adjustments, quantity)
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		importsTotal:     imports,
		importRows:       rows,
		importDuration:   importDuration,
		balanceRecalcs:   recalcs,
		stockAdjustments: adjustments,
		stockQuantity:    quantity,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency per route.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer exposes the registry for additional collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// Gatherer exposes the registry for tests and push gateways.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.DefaultGatherer
	}
	return m.registry
}

// CatalogImported records one finished import batch.
func (m *Metrics) CatalogImported(result inventory.ImportResult, took time.Duration) {
	if m == nil {
		return
	}
	m.importsTotal.Inc()
	m.importRows.WithLabelValues("imported").Add(float64(result.Imported))
	m.importRows.WithLabelValues("failed").Add(float64(len(result.Errors)))
	m.importDuration.Observe(took.Seconds())
}

// BalanceRecalculated counts a committed account balance.
func (m *Metrics) BalanceRecalculated(_ int64, _ decimal.Decimal) {
	if m == nil {
		return
	}
	m.balanceRecalcs.Inc()
}

// StockAdjusted counts a stock movement from a created purchase or sale item.
func (m *Metrics) StockAdjusted(kind inventory.ItemKind, qty decimal.Decimal) {
	if m == nil {
		return
	}
	m.stockAdjustments.WithLabelValues(string(kind)).Inc()
	m.stockQuantity.WithLabelValues(string(kind)).Add(qty.InexactFloat64())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
