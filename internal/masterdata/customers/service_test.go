package customers

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

type stubRepo struct {
	Repository
	last CustomerInput
}

func (s *stubRepo) Create(ctx context.Context, in CustomerInput) (Customer, error) {
	s.last = in
	return in.toCustomer(1), nil
}

func TestCreateCustomer(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	c, err := svc.Create(context.Background(), CustomerInput{Name: " Acme ", CreditLimit: decimal.NewFromInt(500), Outstanding: decimal.NewFromInt(120)})
	require.NoError(t, err)
	require.Equal(t, "Acme", c.Name)
	require.True(t, c.AvailableCredit().Equal(decimal.NewFromInt(380)))

	_, err = svc.Create(context.Background(), CustomerInput{Name: "x", CreditLimit: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Create(context.Background(), CustomerInput{})
	require.ErrorIs(t, err, shared.ErrValidation)
}
