package products

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

var hundred = decimal.NewFromInt(100)

func (s *Service) validate(in ProductInput) (ProductInput, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" {
		return in, shared.Invalid("product sku is required")
	}
	if in.Name == "" {
		return in, shared.Invalid("product name is required")
	}
	if in.UnitPrice.IsNegative() {
		return in, shared.Invalid("unit price must be non-negative")
	}
	if in.TaxPercent.IsNegative() || in.TaxPercent.GreaterThan(hundred) {
		return in, shared.Invalid("tax percent must be between 0 and 100")
	}
	if in.CategoryID != nil && *in.CategoryID <= 0 {
		in.CategoryID = nil
	}
	return in, nil
}
