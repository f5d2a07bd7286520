package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rudraroyaltypython/inventory-sys/internal/inventory"
)

func TestMetricsHandlerExposesPrometheusMetrics(t *testing.T) {
	metrics := NewMetrics()
	metrics.CatalogImported(inventory.ImportResult{Imported: 3}, time.Second)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "invsys_catalog_imports_total 1")
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTeapot, rr.Code)

	metricsRR := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(metricsRR, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := metricsRR.Body.String()
	require.True(t, strings.Contains(body, `invsys_http_requests_total{code="418",route="/test"} 1`), body)
	require.Contains(t, body, `invsys_http_request_duration_seconds_bucket{route="/test"`)
}

func TestDomainObservers(t *testing.T) {
	metrics := NewMetrics()

	metrics.CatalogImported(inventory.ImportResult{Imported: 2, Errors: []string{"bad row"}}, 10*time.Millisecond)
	metrics.BalanceRecalculated(1, decimal.NewFromInt(10))
	metrics.BalanceRecalculated(2, decimal.Zero)
	metrics.StockAdjusted(inventory.KindPurchase, decimal.NewFromInt(5))
	metrics.StockAdjusted(inventory.KindSale, decimal.RequireFromString("1.5"))

	require.Equal(t, 2.0, testutil.ToFloat64(metrics.importRows.WithLabelValues("imported")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.importRows.WithLabelValues("failed")))
	require.Equal(t, 2.0, testutil.ToFloat64(metrics.balanceRecalcs))
	require.Equal(t, 5.0, testutil.ToFloat64(metrics.stockQuantity.WithLabelValues("purchase")))
	require.Equal(t, 1.5, testutil.ToFloat64(metrics.stockQuantity.WithLabelValues("sale")))

	var nilMetrics *Metrics
	nilMetrics.StockAdjusted(inventory.KindSale, decimal.NewFromInt(1))
}
