package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rudraroyaltypython/inventory-sys/internal/platform/cache"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

// RepositoryPort abstracts repository usage for the catalog service.
type RepositoryPort interface {
	RowStore
	ProductLister
	StockDrift(ctx context.Context) ([]Drift, error)
}

// ImportObserver records import outcomes.
type ImportObserver interface {
	CatalogImported(result ImportResult, took time.Duration)
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	ParsePolicy ParsePolicy
	LockTTL     time.Duration
}

// CatalogService serialises imports across processes and shares concurrent exports.
type CatalogService struct {
	repo     RepositoryPort
	importer *Importer
	locker   *cache.Locker
	versions *cache.Versions
	observer ImportObserver
	logger   *slog.Logger
	lockTTL  time.Duration
	exports  singleflight.Group
}

// NewCatalogService builds CatalogService. Nil locker and versions run unguarded.
func NewCatalogService(repo RepositoryPort, locker *cache.Locker, versions *cache.Versions, observer ImportObserver, logger *slog.Logger, cfg ServiceConfig) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &CatalogService{
		repo:     repo,
		importer: NewImporter(repo, cfg.ParsePolicy, logger),
		locker:   locker,
		versions: versions,
		observer: observer,
		logger:   logger,
		lockTTL:  ttl,
	}
}

// Import runs one import at a time; a concurrent call gets shared.ErrConflict.
func (s *CatalogService) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	lock, err := s.locker.Acquire(ctx, shared.CatalogImportLockKey, s.lockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrLockHeld) {
			return ImportResult{}, fmt.Errorf("%w: catalog import", shared.ErrConflict)
		}
		return ImportResult{}, err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("release import lock", slog.Any("error", err))
		}
	}()

	start := time.Now()
	result, err := s.importer.Import(ctx, r)
	if result.Imported > 0 {
		if _, err := s.versions.Bump(context.WithoutCancel(ctx), shared.CatalogExportVersionKey); err != nil {
			s.logger.Warn("bump catalog version", slog.Any("error", err))
		}
	}
	if err != nil {
		return result, err
	}
	if s.observer != nil {
		s.observer.CatalogImported(result, time.Since(start))
	}
	return result, nil
}

// Export writes the catalog. Concurrent exports of the same catalog version
// share one database read.
func (s *CatalogService) Export(ctx context.Context, w io.Writer) error {
	version, err := s.versions.Current(ctx, shared.CatalogExportVersionKey)
	if err != nil {
		s.logger.Warn("read catalog version", slog.Any("error", err))
	}
	// The shared read outlives any single caller's cancellation.
	detached := context.WithoutCancel(ctx)
	ch := s.exports.DoChan(strconv.FormatInt(version, 10), func() (any, error) {
		var buf bytes.Buffer
		if err := Export(detached, s.repo, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return res.Err
	}
	_, err = w.Write(res.Val.([]byte))
	return err
}

// AuditStock logs products whose stock has drifted from their item movements.
func (s *CatalogService) AuditStock(ctx context.Context) ([]Drift, error) {
	drift, err := s.repo.StockDrift(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range drift {
		s.logger.Info("stock drift",
			slog.Int64("product_id", d.ProductID),
			slog.String("sku", d.SKU),
			slog.String("stock", d.Stock.String()),
			slog.String("movements", d.Movements.String()))
	}
	return drift, nil
}
