package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// StockStore is the product-row surface the stock engine needs. It must be
// backed by the same transaction as the item insert it follows.
type StockStore interface {
	GetStockForUpdate(ctx context.Context, productID int64) (decimal.Decimal, error)
	SetStock(ctx context.Context, productID int64, stock decimal.Decimal) error
}

// StockObserver is told about every committed stock adjustment.
type StockObserver interface {
	StockAdjusted(kind ItemKind, qty decimal.Decimal)
}

// AdjustStockOnCreate moves the product's stock by qty for a newly created
// purchase or sale item. Stock may go negative. Updates and deletes of items
// never call this.
func AdjustStockOnCreate(ctx context.Context, store StockStore, productID int64, qty decimal.Decimal, kind ItemKind) (decimal.Decimal, error) {
	if qty.IsNegative() {
		return decimal.Decimal{}, ErrNegativeQuantity
	}
	current, err := store.GetStockForUpdate(ctx, productID)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("inventory: lock product %d: %w", productID, err)
	}
	var next decimal.Decimal
	switch kind {
	case KindPurchase:
		next = current.Add(qty)
	case KindSale:
		next = current.Sub(qty)
	default:
		return decimal.Decimal{}, fmt.Errorf("inventory: unknown item kind %q", kind)
	}
	if err := store.SetStock(ctx, productID, next); err != nil {
		return decimal.Decimal{}, fmt.Errorf("inventory: set stock %d: %w", productID, err)
	}
	return next, nil
}
