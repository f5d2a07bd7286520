package purchases

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rudraroyaltypython/inventory-sys/internal/inventory"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

type stockCounter struct{ n int }

func (c *stockCounter) StockAdjusted(kind inventory.ItemKind, _ decimal.Decimal) {
	if kind == inventory.KindPurchase {
		c.n++
	}
}

func TestCreateReceivesStockAndDerivesTotal(t *testing.T) {
	repo := newMemoryRepo(1, 2)
	obs := &stockCounter{}
	svc := NewService(repo, nil, ServiceConfig{}, obs)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{SupplierID: 7, InvoiceNumber: " INV-1 ", Items: []ItemInput{
		{ProductID: 2, Quantity: d("5"), UnitPrice: d("1.50")},
		{ProductID: 1, Quantity: d("2"), UnitPrice: d("10")},
	}})
	require.NoError(t, err)
	require.Equal(t, "INV-1", p.InvoiceNumber)
	require.True(t, p.TotalAmount.Equal(d("27.5")))
	require.True(t, p.Items[0].LineTotal.Equal(d("7.5")))
	require.True(t, repo.stockOf(1).Equal(d("2")))
	require.True(t, repo.stockOf(2).Equal(d("5")))
	require.Equal(t, []int64{1, 2}, repo.locks, "product rows locked in id order")
	require.Equal(t, 2, obs.n)
}

func TestItemEditsDoNotTouchStock(t *testing.T) {
	repo := newMemoryRepo(1)
	svc := NewService(repo, nil, ServiceConfig{}, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{SupplierID: 1})
	require.NoError(t, err)
	item, err := svc.AddItem(ctx, p.ID, ItemInput{ProductID: 1, Quantity: d("5"), UnitPrice: d("2")})
	require.NoError(t, err)
	require.True(t, repo.stockOf(1).Equal(d("5")))

	_, err = svc.UpdateItem(ctx, item.ID, ItemInput{ProductID: 1, Quantity: d("50"), UnitPrice: d("2")})
	require.NoError(t, err)
	require.True(t, repo.stockOf(1).Equal(d("5")))

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, got.TotalAmount.Equal(d("100")))

	require.NoError(t, svc.DeleteItem(ctx, item.ID))
	require.True(t, repo.stockOf(1).Equal(d("5")))
	got, err = svc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, got.TotalAmount.IsZero())

	_, err = svc.AddItem(ctx, p.ID, ItemInput{ProductID: 1, Quantity: d("1")})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, p.ID))
	require.True(t, repo.stockOf(1).Equal(d("6")))
	_, err = svc.Get(ctx, p.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCallerSuppliedTotalIsKept(t *testing.T) {
	repo := newMemoryRepo(1)
	svc := NewService(repo, nil, ServiceConfig{TotalPolicy: shared.TotalCallerSupplied}, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{SupplierID: 1, TotalAmount: d("99"), Items: []ItemInput{{ProductID: 1, Quantity: d("1"), UnitPrice: d("5")}}})
	require.NoError(t, err)
	require.True(t, p.TotalAmount.Equal(d("99")))

	_, err = svc.AddItem(ctx, p.ID, ItemInput{ProductID: 1, Quantity: d("1"), UnitPrice: d("5")})
	require.NoError(t, err)
	got, _ := svc.Get(ctx, p.ID)
	require.True(t, got.TotalAmount.Equal(d("99")))

	got, err = svc.Update(ctx, p.ID, UpdateInput{SupplierID: 1, TotalAmount: d("12")})
	require.NoError(t, err)
	require.True(t, got.TotalAmount.Equal(d("12")))
}

func TestCreateRollsBackOnMissingProduct(t *testing.T) {
	repo := newMemoryRepo(1)
	svc := NewService(repo, nil, ServiceConfig{}, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{SupplierID: 1, Items: []ItemInput{
		{ProductID: 1, Quantity: d("3")},
		{ProductID: 404, Quantity: d("1")},
	}})
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.True(t, repo.stockOf(1).IsZero())
	list, _, _ := svc.List(ctx, shared.ListFilters{})
	require.Empty(t, list)

	_, err = svc.Create(ctx, CreateInput{SupplierID: 1, Items: []ItemInput{{ProductID: 1, Quantity: d("-1")}}})
	require.ErrorIs(t, err, shared.ErrValidation)
}
