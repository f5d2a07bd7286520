package inventory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/rudraroyaltypython/inventory-sys/internal/masterdata/products"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

// RowStore runs each row in its own transaction.
type RowStore interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// Importer reconciles a product feed into the catalog.
type Importer struct {
	store  RowStore
	policy ParsePolicy
	logger *slog.Logger
}

// NewImporter builds Importer. An empty policy means ParseZero.
func NewImporter(store RowStore, policy ParsePolicy, logger *slog.Logger) *Importer {
	if policy == "" {
		policy = ParseZero
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: store, policy: policy, logger: logger}
}

// Import reads the feed and upserts every row by SKU. Row failures are
// collected in the result; only cancellation or a failing reader ends the
// call early, returning what was imported so far.
func (im *Importer) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	result := ImportResult{BatchID: uuid.NewString(), Errors: []string{}}

	// BOMOverride strips a leading UTF-8 BOM; the rest passes through
	// untouched so invalid bytes can be reported per row.
	decoded := transform.NewReader(r, unicode.BOMOverride(transform.Nop))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		im.finish(&result)
		return result, nil
	}
	if err != nil {
		if !isParseError(err) {
			return result, fmt.Errorf("read feed: %w", err)
		}
		im.fail(&result, RowError{Line: 1, Raw: strings.Join(header, ","), Err: err})
	}
	index := headerIndex(header)

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err != nil {
			if !isParseError(err) {
				im.finish(&result)
				return result, fmt.Errorf("read feed: %w", err)
			}
			im.fail(&result, RowError{Line: line, Raw: strings.Join(record, ","), Err: err})
			continue
		}
		if isBlank(record) {
			continue
		}
		raw := strings.Join(record, ",")
		if !utf8.ValidString(raw) {
			im.fail(&result, RowError{Line: line, Raw: strings.ToValidUTF8(raw, "?"), Err: ErrInvalidEncoding})
			continue
		}
		row, err := im.parseRow(record, index)
		if err != nil {
			im.fail(&result, RowError{Line: line, Raw: raw, Err: err})
			continue
		}
		created, err := im.apply(ctx, row)
		if err != nil {
			im.fail(&result, RowError{Line: line, Raw: raw, Err: err})
			continue
		}
		result.Imported++
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	im.finish(&result)
	return result, nil
}

func (im *Importer) finish(result *ImportResult) {
	im.logger.Info("catalog import finished",
		slog.String("batch_id", result.BatchID),
		slog.Int("imported", result.Imported),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("failed", len(result.Errors)))
}

func (im *Importer) fail(result *ImportResult, rowErr RowError) {
	im.logger.Warn("catalog import row failed",
		slog.String("batch_id", result.BatchID),
		slog.Int("line", rowErr.Line),
		slog.Any("error", rowErr.Err))
	result.Errors = append(result.Errors, rowErr.Error())
}

// apply persists one row; a failure leaves nothing behind, including a
// category created for it.
func (im *Importer) apply(ctx context.Context, row ProductRow) (bool, error) {
	var created bool
	err := im.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p := products.Product{
			SKU:        row.SKU,
			Name:       row.Name,
			UnitPrice:  row.UnitPrice,
			TaxPercent: row.TaxPercent,
			Stock:      row.Stock,
		}
		if row.Category != "" {
			id, err := tx.GetOrCreateCategory(ctx, row.Category)
			if err != nil {
				return fmt.Errorf("category %q: %w", row.Category, err)
			}
			p.CategoryID = &id
		}
		var err error
		_, created, err = tx.UpsertProduct(ctx, p)
		return err
	})
	return created, err
}

func (im *Importer) parseRow(record []string, index map[string]int) (ProductRow, error) {
	field := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	if _, ok := index[ColSKU]; !ok {
		return ProductRow{}, ErrMissingSKUColumn
	}
	row := ProductRow{
		SKU:      field(ColSKU),
		Name:     field(ColName),
		Category: field(ColCategory),
	}
	if row.SKU == "" {
		return ProductRow{}, fmt.Errorf("missing value for %s", ColSKU)
	}
	var err error
	if row.UnitPrice, err = im.number(ColUnitPrice, field(ColUnitPrice)); err != nil {
		return ProductRow{}, err
	}
	if row.TaxPercent, err = im.number(ColTax, field(ColTax)); err != nil {
		return ProductRow{}, err
	}
	if row.Stock, err = im.number(ColStock, field(ColStock)); err != nil {
		return ProductRow{}, err
	}
	return row, nil
}

// number parses a numeric cell; a blank cell is zero under every policy.
func (im *Importer) number(col, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err == nil {
		return d, nil
	}
	if im.policy == ParseRejectRow {
		return decimal.Decimal{}, fmt.Errorf("%w: %s %q", shared.ErrParseFailure, col, raw)
	}
	return decimal.Zero, nil
}

// headerIndex maps column names to positions. Absent columns read as blank.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	return index
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// isParseError reports a malformed record; the reader can continue past it.
func isParseError(err error) bool {
	var perr *csv.ParseError
	return errors.As(err, &perr)
}
