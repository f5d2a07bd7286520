package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/rudraroyaltypython/inventory-sys/internal/inventory"
	jobmetrics "github.com/rudraroyaltypython/inventory-sys/internal/jobs"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

// CatalogImportPayload carries a feed to import.
type CatalogImportPayload struct {
	BatchID string `json:"batch_id"`
	CSV     string `json:"csv"`
}

// CatalogImporter runs an import under the catalog lock.
type CatalogImporter interface {
	Import(ctx context.Context, r io.Reader) (inventory.ImportResult, error)
}

// CatalogImportJob processes TaskCatalogImport.
type CatalogImportJob struct {
	Importer CatalogImporter
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewCatalogImportJob constructs the job handler.
func NewCatalogImportJob(importer CatalogImporter, logger *slog.Logger, metrics *jobmetrics.Metrics) *CatalogImportJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogImportJob{Importer: importer, Logger: logger, Metrics: metrics}
}

// NewCatalogImportTask creates a task for the given feed.
func NewCatalogImportTask(payload CatalogImportPayload) (*asynq.Task, error) {
	if strings.TrimSpace(payload.CSV) == "" {
		return nil, errors.New("catalog import: empty feed")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogImport, body, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// Handle executes the import. A header rejected by validation is not retried;
// a lock held by another import is.
func (j *CatalogImportJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Importer == nil {
		return errors.New("catalog import: dependencies not configured")
	}
	var payload CatalogImportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("catalog import: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	tracker := j.Metrics.Track(TaskCatalogImport)
	result, err := j.Importer.Import(ctx, strings.NewReader(payload.CSV))
	if err != nil {
		tracker.End(err)
		if errors.Is(err, shared.ErrValidation) {
			j.Logger.Error("catalog import rejected", slog.String("batch_id", payload.BatchID), slog.Any("error", err))
			return fmt.Errorf("catalog import: %v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	j.Logger.Info("catalog import job finished",
		slog.String("batch_id", payload.BatchID),
		slog.String("import_batch", result.BatchID),
		slog.Int("imported", result.Imported),
		slog.Int("failed", len(result.Errors)))
	return tracker.End(nil)
}
