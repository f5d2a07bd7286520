package jobs

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudraroyaltypython/inventory-sys/internal/inventory"
	jobmetrics "github.com/rudraroyaltypython/inventory-sys/internal/jobs"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

type stubImporter struct {
	feed   string
	result inventory.ImportResult
	err    error
}

func (s *stubImporter) Import(_ context.Context, r io.Reader) (inventory.ImportResult, error) {
	body, _ := io.ReadAll(r)
	s.feed = string(body)
	return s.result, s.err
}

type stubLedger struct {
	n   int
	err error
}

func (s stubLedger) RecalcAll(context.Context) (int, error) { return s.n, s.err }

type stubAuditor struct {
	drift []inventory.Drift
}

func (s stubAuditor) AuditStock(context.Context) ([]inventory.Drift, error) { return s.drift, nil }

func TestCatalogImportJobPassesFeedThrough(t *testing.T) {
	importer := &stubImporter{result: inventory.ImportResult{BatchID: "b1", Imported: 2}}
	job := NewCatalogImportJob(importer, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewCatalogImportTask(CatalogImportPayload{BatchID: "nightly", CSV: "SKU,Name\nA,Alpha\n"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, "SKU,Name\nA,Alpha\n", importer.feed)
}

func TestCatalogImportJobSkipsRetryOnBadInput(t *testing.T) {
	job := NewCatalogImportJob(&stubImporter{err: shared.Invalid("unit price out of range")}, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskCatalogImport, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	task, err := NewCatalogImportTask(CatalogImportPayload{CSV: "Foo\n1\n"})
	require.NoError(t, err)
	err = job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCatalogImportJobRetriesWhileLocked(t *testing.T) {
	job := NewCatalogImportJob(&stubImporter{err: shared.ErrConflict}, nil, nil)
	task, err := NewCatalogImportTask(CatalogImportPayload{CSV: "SKU,Name\n"})
	require.NoError(t, err)

	err = job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestNewCatalogImportTaskRejectsEmptyFeed(t *testing.T) {
	_, err := NewCatalogImportTask(CatalogImportPayload{CSV: "  "})
	assert.Error(t, err)
}

func TestLedgerRebalanceJobRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)

	ok := NewLedgerRebalanceJob(stubLedger{n: 3}, nil, metrics)
	require.NoError(t, ok.Handle(context.Background(), NewLedgerRebalanceTask()))

	failing := NewLedgerRebalanceJob(stubLedger{err: errors.New("db down")}, nil, metrics)
	assert.Error(t, failing.Handle(context.Background(), NewLedgerRebalanceTask()))

	count, err := testutil.GatherAndCount(reg, "invsys_jobs_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStockAuditJobPublishesDrift(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	job := NewStockAuditJob(stubAuditor{drift: []inventory.Drift{{ProductID: 1}, {ProductID: 7}}}, nil, metrics)

	require.NoError(t, job.Handle(context.Background(), NewStockAuditTask()))
	expected := `
# HELP invsys_stock_drift_products Products whose stock differs from purchased minus sold quantity at the last audit.
# TYPE invsys_stock_drift_products gauge
invsys_stock_drift_products 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "invsys_stock_drift_products"))
}

func TestJobsWithoutDependenciesFail(t *testing.T) {
	var importJob *CatalogImportJob
	assert.Error(t, importJob.Handle(context.Background(), asynq.NewTask(TaskCatalogImport, nil)))
	assert.Error(t, (&LedgerRebalanceJob{}).Handle(context.Background(), NewLedgerRebalanceTask()))
	assert.Error(t, (&StockAuditJob{}).Handle(context.Background(), NewStockAuditTask()))
}

func TestHealthWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(nil, nil).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"queues":[
		{"queue":"default","pending":0,"active":0,"retry":0},
		{"queue":"maintenance","pending":0,"active":0,"retry":0}
	]}`, rec.Body.String())
}
