package app

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudraroyaltypython/inventory-sys/internal/observability"
)

func testConfig() *Config {
	return &Config{AppEnv: "test", AppRequestTimeout: time.Second, RateLimitPerMinute: 1000}
}

func TestHealthz(t *testing.T) {
	router := NewRouter(RouterParams{Config: testConfig(), Metrics: observability.NewMetrics()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Ratelimit-Limit"))
}

func TestHealthzReportsFailingDependency(t *testing.T) {
	router := NewRouter(RouterParams{
		Config: testConfig(),
		Health: map[string]HealthChecker{
			"postgres": func(*http.Request) error { return nil },
			"redis":    func(*http.Request) error { return errors.New("connection refused") },
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","postgres":"ok","redis":"unavailable"}`, rec.Body.String())
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	metrics := observability.NewMetrics()
	router := NewRouter(RouterParams{Config: testConfig(), Metrics: metrics})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "invsys_http_requests_total")
}

func TestUnknownRouteIsProblemJSON(t *testing.T) {
	router := NewRouter(RouterParams{Config: testConfig()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestUploadLimiterOnlyThrottlesPosts(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := uploadLimiter(20)(ok)

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/import", strings.NewReader("SKU\n"))
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusNoContent, post())
	assert.Equal(t, http.StatusTooManyRequests, post())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/export", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}
