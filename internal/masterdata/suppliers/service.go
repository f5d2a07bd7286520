package suppliers

import (
	"context"
	"strings"

	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, shared.Invalid("invalid supplier id")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in SupplierInput) (Supplier, error) {
	in, err := validate(in)
	if err != nil {
		return Supplier{}, err
	}
	return s.repo.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id int64, in SupplierInput) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, shared.Invalid("invalid supplier id")
	}
	in, err := validate(in)
	if err != nil {
		return Supplier{}, err
	}
	return s.repo.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.Invalid("invalid supplier id")
	}
	return s.repo.Delete(ctx, id)
}

func validate(in SupplierInput) (SupplierInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" {
		return in, shared.Invalid("supplier name is required")
	}
	return in, nil
}
