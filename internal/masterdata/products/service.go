package products

import (
	"context"

	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.Invalid("invalid product id")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) GetBySKU(ctx context.Context, sku string) (Product, error) {
	return s.repo.GetBySKU(ctx, sku)
}

func (s *Service) Create(ctx context.Context, in ProductInput) (Product, error) {
	in, err := s.validate(in)
	if err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, in.toProduct())
}

// Update overwrites every editable field, stock included.
func (s *Service) Update(ctx context.Context, id int64, in ProductInput) (Product, error) {
	if id <= 0 {
		return Product{}, shared.Invalid("invalid product id")
	}
	in, err := s.validate(in)
	if err != nil {
		return Product{}, err
	}
	return s.repo.Update(ctx, id, in.toProduct())
}

// Delete fails with shared.ErrProtected while purchase, sale or invoice items reference the product.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.Invalid("invalid product id")
	}
	return s.repo.Delete(ctx, id)
}
