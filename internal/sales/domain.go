package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

// Sale is a counter sale header. CustomerID is nil for walk-in sales or
// once the customer has been deleted.
type Sale struct {
	ID          int64           `json:"id"`
	CustomerID  *int64          `json:"customer_id,omitempty"`
	Date        time.Time       `json:"date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []SaleItem      `json:"items,omitempty"`
}

// SaleItem is a sold quantity of one product.
type SaleItem struct {
	ID        int64           `json:"id"`
	SaleID    int64           `json:"sale_id"`
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// SaleItemInput carries the editable fields of a sale item.
type SaleItemInput struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SaleInput creates or edits a sale header; Items are used on create only.
type SaleInput struct {
	CustomerID  *int64          `json:"customer_id" validate:"omitempty,gt=0"`
	Date        time.Time       `json:"date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []SaleItemInput `json:"items" validate:"dive"`
}

// Invoice bills a customer. Invoices never move stock.
type Invoice struct {
	ID          int64           `json:"id"`
	CustomerID  *int64          `json:"customer_id,omitempty"`
	InvoiceNo   string          `json:"invoice_no"`
	Date        time.Time       `json:"date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	IsPaid      bool            `json:"is_paid"`
	Items       []InvoiceItem   `json:"items,omitempty"`
}

// InvoiceItem is a billed line.
type InvoiceItem struct {
	ID        int64           `json:"id"`
	InvoiceID int64           `json:"invoice_id"`
	ProductID int64           `json:"product_id"`
	Qty       decimal.Decimal `json:"qty"`
	Rate      decimal.Decimal `json:"rate"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// InvoiceItemInput carries the editable fields of an invoice item.
type InvoiceItemInput struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Qty       decimal.Decimal `json:"qty"`
	Rate      decimal.Decimal `json:"rate"`
}

// InvoiceInput creates or edits an invoice header; Items are used on create only.
type InvoiceInput struct {
	CustomerID  *int64             `json:"customer_id" validate:"omitempty,gt=0"`
	InvoiceNo   string             `json:"invoice_no" validate:"required,max=50"`
	Date        time.Time          `json:"date"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Items       []InvoiceItemInput `json:"items" validate:"dive"`
}

// PaymentInput records money received against an invoice.
type PaymentInput struct {
	Amount decimal.Decimal `json:"amount"`
}

func (in SaleItemInput) validate() error {
	return checkLine(in.ProductID, in.Quantity, in.UnitPrice)
}

func (in SaleItemInput) toItem(saleID int64) SaleItem {
	return SaleItem{
		SaleID:    saleID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		LineTotal: shared.LineTotal(in.Quantity, in.UnitPrice),
	}
}

func (in InvoiceItemInput) validate() error {
	return checkLine(in.ProductID, in.Qty, in.Rate)
}

func (in InvoiceItemInput) toItem(invoiceID int64) InvoiceItem {
	return InvoiceItem{
		InvoiceID: invoiceID,
		ProductID: in.ProductID,
		Qty:       in.Qty,
		Rate:      in.Rate,
		LineTotal: shared.LineTotal(in.Qty, in.Rate),
	}
}

func checkLine(productID int64, qty, price decimal.Decimal) error {
	if productID <= 0 {
		return shared.Invalid("product_id is required")
	}
	if qty.IsNegative() {
		return shared.Invalid("quantity must be non-negative")
	}
	if price.IsNegative() {
		return shared.Invalid("price must be non-negative")
	}
	return nil
}

// settle marks the invoice paid once recorded payments cover the total.
func (inv *Invoice) settle() {
	inv.IsPaid = inv.PaidAmount.IsPositive() && inv.PaidAmount.GreaterThanOrEqual(inv.TotalAmount)
}

func dateOrToday(d time.Time) time.Time {
	if d.IsZero() {
		d = time.Now()
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
