package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/rudraroyaltypython/inventory-sys/internal/inventory"
	jobmetrics "github.com/rudraroyaltypython/inventory-sys/internal/jobs"
)

// StockAuditor lists products whose stock drifted from their item movements.
type StockAuditor interface {
	AuditStock(ctx context.Context) ([]inventory.Drift, error)
}

// StockAuditJob processes TaskStockAudit. It only reports.
type StockAuditJob struct {
	Auditor StockAuditor
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewStockAuditJob constructs the job handler.
func NewStockAuditJob(auditor StockAuditor, logger *slog.Logger, metrics *jobmetrics.Metrics) *StockAuditJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &StockAuditJob{Auditor: auditor, Logger: logger, Metrics: metrics}
}

// NewStockAuditTask creates the payload-less audit task.
func NewStockAuditTask() *asynq.Task {
	return asynq.NewTask(TaskStockAudit, nil, asynq.Queue(QueueMaintenance), asynq.MaxRetry(1))
}

// Handle runs the audit and publishes the drift count.
func (j *StockAuditJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Auditor == nil {
		return errors.New("stock audit: dependencies not configured")
	}
	tracker := j.Metrics.Track(TaskStockAudit)
	drift, err := j.Auditor.AuditStock(ctx)
	if err != nil {
		return tracker.End(err)
	}
	j.Metrics.SetStockDrift(len(drift))
	j.Logger.Info("stock audit finished", slog.Int("drifting_products", len(drift)))
	return tracker.End(nil)
}
