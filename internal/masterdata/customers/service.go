package customers

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	if id <= 0 {
		return Customer{}, shared.Invalid("invalid customer id")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CustomerInput) (Customer, error) {
	in, err := validate(in)
	if err != nil {
		return Customer{}, err
	}
	return s.repo.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id int64, in CustomerInput) (Customer, error) {
	if id <= 0 {
		return Customer{}, shared.Invalid("invalid customer id")
	}
	in, err := validate(in)
	if err != nil {
		return Customer{}, err
	}
	return s.repo.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.Invalid("invalid customer id")
	}
	return s.repo.Delete(ctx, id)
}

func validate(in CustomerInput) (CustomerInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" {
		return in, shared.Invalid("customer name is required")
	}
	if in.CreditLimit.IsNegative() {
		return in, shared.Invalid("credit limit must be non-negative")
	}
	return in, nil
}
