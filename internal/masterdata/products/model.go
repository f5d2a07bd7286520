package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product entity. Stock is derived from purchase and sale
// items but may also be set directly or by a catalog import.
type Product struct {
	ID           int64           `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	CategoryID   *int64          `json:"category_id,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TaxPercent   decimal.Decimal `json:"tax_percent"`
	Stock        decimal.Decimal `json:"stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
