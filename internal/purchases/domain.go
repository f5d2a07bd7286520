package purchases

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

// Purchase is a supplier delivery header.
type Purchase struct {
	ID            int64           `json:"id"`
	SupplierID    int64           `json:"supplier_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Date          time.Time       `json:"date"`
	Received      bool            `json:"received"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []Item          `json:"items,omitempty"`
}

// Item is a purchased quantity of one product.
type Item struct {
	ID         int64           `json:"id"`
	PurchaseID int64           `json:"purchase_id"`
	ProductID  int64           `json:"product_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

// ItemInput carries the editable fields of an item.
type ItemInput struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateInput creates a header with its items.
type CreateInput struct {
	SupplierID    int64           `json:"supplier_id" validate:"required,gt=0"`
	InvoiceNumber string          `json:"invoice_number" validate:"max=100"`
	Date          time.Time       `json:"date"`
	Received      bool            `json:"received"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []ItemInput     `json:"items" validate:"dive"`
}

// UpdateInput edits the header. TotalAmount is honoured only for caller-supplied totals.
type UpdateInput struct {
	SupplierID    int64           `json:"supplier_id" validate:"required,gt=0"`
	InvoiceNumber string          `json:"invoice_number" validate:"max=100"`
	Date          time.Time       `json:"date"`
	Received      bool            `json:"received"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

func (in ItemInput) validate() error {
	if in.ProductID <= 0 {
		return shared.Invalid("product_id is required")
	}
	if in.Quantity.IsNegative() {
		return shared.Invalid("quantity must be non-negative")
	}
	if in.UnitPrice.IsNegative() {
		return shared.Invalid("unit_price must be non-negative")
	}
	return nil
}

func (in ItemInput) toItem(purchaseID int64) Item {
	return Item{
		PurchaseID: purchaseID,
		ProductID:  in.ProductID,
		Quantity:   in.Quantity,
		UnitPrice:  in.UnitPrice,
		LineTotal:  shared.LineTotal(in.Quantity, in.UnitPrice),
	}
}

func dateOrToday(d time.Time) time.Time {
	if d.IsZero() {
		d = time.Now()
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
