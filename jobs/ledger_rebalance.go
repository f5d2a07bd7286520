package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/rudraroyaltypython/inventory-sys/internal/jobs"
)

// LedgerRecalculator recomputes every account balance and reports how many it touched.
type LedgerRecalculator interface {
	RecalcAll(ctx context.Context) (int, error)
}

// LedgerRebalanceJob processes TaskLedgerRebalance.
type LedgerRebalanceJob struct {
	Ledger  LedgerRecalculator
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLedgerRebalanceJob constructs the job handler.
func NewLedgerRebalanceJob(ledger LedgerRecalculator, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerRebalanceJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerRebalanceJob{Ledger: ledger, Logger: logger, Metrics: metrics}
}

// NewLedgerRebalanceTask creates the payload-less rebalance task.
func NewLedgerRebalanceTask() *asynq.Task {
	return asynq.NewTask(TaskLedgerRebalance, nil, asynq.Queue(QueueMaintenance), asynq.MaxRetry(3))
}

// Handle recomputes all balances.
func (j *LedgerRebalanceJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Ledger == nil {
		return errors.New("ledger rebalance: dependencies not configured")
	}
	tracker := j.Metrics.Track(TaskLedgerRebalance)
	n, err := j.Ledger.RecalcAll(ctx)
	if err != nil {
		j.Logger.Error("ledger rebalance failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.Logger.Info("ledger rebalance finished", slog.Int("accounts", n))
	return tracker.End(nil)
}
