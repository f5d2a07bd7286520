package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ItemKind says which way a line item moves stock.
type ItemKind string

const (
	// KindPurchase adds quantity to stock.
	KindPurchase ItemKind = "purchase"
	// KindSale removes quantity from stock.
	KindSale ItemKind = "sale"
)

// ErrNegativeQuantity rejects line items with a quantity below zero.
var ErrNegativeQuantity = errors.New("inventory: quantity must be non-negative")

// ErrMissingSKUColumn fails every row of a feed whose header has no SKU column.
var ErrMissingSKUColumn = errors.New("inventory: feed has no SKU column")

// ErrInvalidEncoding fails a feed row that is not valid UTF-8.
var ErrInvalidEncoding = errors.New("inventory: row is not valid UTF-8")

// Column names of the catalog feed, in export order.
const (
	ColSKU       = "SKU"
	ColName      = "Name"
	ColCategory  = "Category"
	ColUnitPrice = "Unit Price"
	ColTax       = "Tax %"
	ColStock     = "Stock"
)

// Header is the literal header row written by the exporter and expected by the importer.
var Header = []string{ColSKU, ColName, ColCategory, ColUnitPrice, ColTax, ColStock}

// ParsePolicy decides what a malformed numeric field does to its row.
type ParsePolicy string

const (
	// ParseZero substitutes zero and keeps the row.
	ParseZero ParsePolicy = "zero"
	// ParseRejectRow fails the row.
	ParseRejectRow ParsePolicy = "rejectRow"
)

// ParseParsePolicy maps a config value onto a policy; empty means ParseZero.
func ParseParsePolicy(raw string) (ParsePolicy, error) {
	switch strings.TrimSpace(raw) {
	case "", string(ParseZero):
		return ParseZero, nil
	case string(ParseRejectRow):
		return ParseRejectRow, nil
	default:
		return "", fmt.Errorf("inventory: unknown parse policy %q", raw)
	}
}

// ProductRow is one parsed feed row.
type ProductRow struct {
	SKU        string
	Name       string
	Category   string
	UnitPrice  decimal.Decimal
	TaxPercent decimal.Decimal
	Stock      decimal.Decimal
}

// RowError records a failed row with its raw content.
type RowError struct {
	Line int
	Raw  string
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("Error importing row %s: %v", e.Raw, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// ImportResult summarises an import batch. Failed rows are listed in Errors;
// the batch itself does not fail.
type ImportResult struct {
	BatchID  string   `json:"batch_id"`
	Imported int      `json:"imported"`
	Created  int      `json:"created"`
	Updated  int      `json:"updated"`
	Errors   []string `json:"errors"`
}
