package shared

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TotalPolicy controls how document header totals relate to their lines.
type TotalPolicy string

const (
	// TotalDeriveOnWrite recomputes the header total from line totals after every line write.
	TotalDeriveOnWrite TotalPolicy = "derive"
	// TotalCallerSupplied keeps whatever total the caller set on the header.
	TotalCallerSupplied TotalPolicy = "caller"
)

// ParseTotalPolicy resolves a configuration value.
func ParseTotalPolicy(raw string) (TotalPolicy, error) {
	switch TotalPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", TotalDeriveOnWrite:
		return TotalDeriveOnWrite, nil
	case TotalCallerSupplied:
		return TotalCallerSupplied, nil
	default:
		return "", fmt.Errorf("unknown header total policy %q", raw)
	}
}

// Derives reports whether header totals are recomputed from lines.
func (p TotalPolicy) Derives() bool {
	return p != TotalCallerSupplied
}

// LineTotal multiplies quantity by unit price.
func LineTotal(qty, unitPrice decimal.Decimal) decimal.Decimal {
	return qty.Mul(unitPrice)
}

// SumTotals adds line totals.
func SumTotals(totals []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t)
	}
	return sum
}
