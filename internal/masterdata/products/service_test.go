package products

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

type stubRepo struct {
	Repository
	created []Product
	deleted []int64
	delErr  error
}

func (s *stubRepo) Create(ctx context.Context, p Product) (Product, error) {
	p.ID = int64(len(s.created) + 1)
	s.created = append(s.created, p)
	return p, nil
}

func (s *stubRepo) Delete(ctx context.Context, id int64) error {
	if s.delErr != nil {
		return s.delErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func TestCreateValidatesAndTrims(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, ProductInput{SKU: " SKU-1 ", Name: " Hammer ", UnitPrice: decimal.NewFromInt(12), TaxPercent: decimal.NewFromInt(18)})
	require.NoError(t, err)
	require.Equal(t, "SKU-1", p.SKU)
	require.Equal(t, "Hammer", p.Name)

	cases := []ProductInput{
		{SKU: "", Name: "x"},
		{SKU: "a", Name: " "},
		{SKU: "a", Name: "x", UnitPrice: decimal.NewFromInt(-1)},
		{SKU: "a", Name: "x", TaxPercent: decimal.NewFromInt(101)},
	}
	for _, in := range cases {
		_, err := svc.Create(ctx, in)
		require.ErrorIs(t, err, shared.ErrValidation, "%+v", in)
	}
	require.Len(t, repo.created, 1)
}

func TestCreateAllowsNegativeStock(t *testing.T) {
	svc := NewService(&stubRepo{})
	p, err := svc.Create(context.Background(), ProductInput{SKU: "S", Name: "N", Stock: decimal.NewFromInt(-4)})
	require.NoError(t, err)
	require.True(t, p.Stock.Equal(decimal.NewFromInt(-4)))
}

func TestDeleteSurfacesProtection(t *testing.T) {
	svc := NewService(&stubRepo{delErr: shared.ErrProtected})
	err := svc.Delete(context.Background(), 5)
	require.ErrorIs(t, err, shared.ErrConstraintViolation)
}
