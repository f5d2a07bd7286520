package inventory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

func TestAdjustStockOnCreate(t *testing.T) {
	store := &memoryStock{stock: map[int64]decimal.Decimal{1: decimal.NewFromInt(2)}}
	ctx := context.Background()

	got, err := AdjustStockOnCreate(ctx, store, 1, decimal.NewFromInt(5), KindPurchase)
	require.NoError(t, err)
	require.True(t, got.Equal(decimal.NewFromInt(7)))

	got, err = AdjustStockOnCreate(ctx, store, 1, decimal.NewFromInt(10), KindSale)
	require.NoError(t, err)
	require.True(t, got.Equal(decimal.NewFromInt(-3)), "oversell is representable")

	_, err = AdjustStockOnCreate(ctx, store, 1, decimal.NewFromInt(-1), KindPurchase)
	require.ErrorIs(t, err, ErrNegativeQuantity)

	_, err = AdjustStockOnCreate(ctx, store, 99, decimal.NewFromInt(1), KindSale)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestParseParsePolicy(t *testing.T) {
	p, err := ParseParsePolicy("")
	require.NoError(t, err)
	require.Equal(t, ParseZero, p)
	p, err = ParseParsePolicy("rejectRow")
	require.NoError(t, err)
	require.Equal(t, ParseRejectRow, p)
	_, err = ParseParsePolicy("strict")
	require.Error(t, err)
}
