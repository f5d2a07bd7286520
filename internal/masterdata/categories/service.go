package categories

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, shared.Invalid("invalid category id")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CategoryInput) (Category, error) {
	in, err := s.validate(in)
	if err != nil {
		return Category{}, err
	}
	return s.repo.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id int64, in CategoryInput) (Category, error) {
	if id <= 0 {
		return Category{}, shared.Invalid("invalid category id")
	}
	in, err := s.validate(in)
	if err != nil {
		return Category{}, err
	}
	return s.repo.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.Invalid("invalid category id")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(in CategoryInput) (CategoryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, shared.Invalid("category name is required")
	}
	return in, nil
}
