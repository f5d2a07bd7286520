package sales

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/inventory"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

// RepositoryPort abstracts repository usage for the services.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetSale(ctx context.Context, id int64) (Sale, error)
	ListSales(ctx context.Context, filters shared.ListFilters) ([]Sale, int, error)
	GetInvoice(ctx context.Context, id int64) (Invoice, error)
	ListInvoices(ctx context.Context, filters shared.ListFilters) ([]Invoice, int, error)
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	TotalPolicy shared.TotalPolicy
}

// Service records sales and issues their stock.
type Service struct {
	repo     RepositoryPort
	logger   *slog.Logger
	policy   shared.TotalPolicy
	observer inventory.StockObserver
}

// NewService builds Service.
func NewService(repo RepositoryPort, logger *slog.Logger, cfg ServiceConfig, observer inventory.StockObserver) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	policy := cfg.TotalPolicy
	if policy == "" {
		policy = shared.TotalDeriveOnWrite
	}
	return &Service{repo: repo, logger: logger, policy: policy, observer: observer}
}

// Create stores the sale with its items; each item takes its quantity out of stock.
func (s *Service) Create(ctx context.Context, in SaleInput) (Sale, error) {
	for i, item := range in.Items {
		if err := item.validate(); err != nil {
			return Sale{}, fmt.Errorf("items[%d]: %w", i, err)
		}
	}
	if in.TotalAmount.IsNegative() {
		return Sale{}, shared.Invalid("total_amount must be non-negative")
	}
	header := Sale{CustomerID: in.CustomerID, Date: dateOrToday(in.Date), TotalAmount: in.TotalAmount}
	if s.policy.Derives() {
		totals := make([]decimal.Decimal, 0, len(in.Items))
		for _, item := range in.Items {
			totals = append(totals, shared.LineTotal(item.Quantity, item.UnitPrice))
		}
		header.TotalAmount = shared.SumTotals(totals)
	}

	var created Sale
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.InsertSale(ctx, header)
		if err != nil {
			return err
		}
		for _, input := range in.Items {
			item, err := tx.InsertSaleItem(ctx, input.toItem(sale.ID))
			if err != nil {
				return err
			}
			sale.Items = append(sale.Items, item)
		}
		ordered := make([]SaleItem, len(sale.Items))
		copy(ordered, sale.Items)
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })
		for _, item := range ordered {
			if _, err := inventory.AdjustStockOnCreate(ctx, tx, item.ProductID, item.Quantity, inventory.KindSale); err != nil {
				return err
			}
		}
		created = sale
		return nil
	})
	if err != nil {
		return Sale{}, err
	}
	s.publish(created.Items...)
	s.logger.Info("sale created", slog.Int64("sale_id", created.ID), slog.Int("items", len(created.Items)))
	return created, nil
}

// Get loads a sale with its items.
func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	if id <= 0 {
		return Sale{}, shared.Invalid("invalid sale id")
	}
	return s.repo.GetSale(ctx, id)
}

// List returns sale headers.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Sale, int, error) {
	return s.repo.ListSales(ctx, filters)
}

// Update edits the header; the total is only taken from input when totals are caller supplied.
func (s *Service) Update(ctx context.Context, id int64, in SaleInput) (Sale, error) {
	if in.TotalAmount.IsNegative() {
		return Sale{}, shared.Invalid("total_amount must be non-negative")
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.LockSale(ctx, id)
		if err != nil {
			return err
		}
		sale.CustomerID = in.CustomerID
		if !in.Date.IsZero() {
			sale.Date = dateOrToday(in.Date)
		}
		if !s.policy.Derives() {
			sale.TotalAmount = in.TotalAmount
		}
		return tx.UpdateSale(ctx, sale)
	})
	if err != nil {
		return Sale{}, err
	}
	return s.repo.GetSale(ctx, id)
}

// Delete removes the sale and its items without restoring stock.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.Invalid("invalid sale id")
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeleteSale(ctx, id)
	})
}

// AddItem appends an item and takes its quantity out of stock.
func (s *Service) AddItem(ctx context.Context, saleID int64, in SaleItemInput) (SaleItem, error) {
	if err := in.validate(); err != nil {
		return SaleItem{}, err
	}
	var created SaleItem
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.LockSale(ctx, saleID); err != nil {
			return err
		}
		item, err := tx.InsertSaleItem(ctx, in.toItem(saleID))
		if err != nil {
			return err
		}
		if _, err := inventory.AdjustStockOnCreate(ctx, tx, item.ProductID, item.Quantity, inventory.KindSale); err != nil {
			return err
		}
		created = item
		return s.derive(ctx, tx, saleID)
	})
	if err != nil {
		return SaleItem{}, err
	}
	s.publish(created)
	return created, nil
}

// UpdateItem edits an item. Stock does not follow.
func (s *Service) UpdateItem(ctx context.Context, itemID int64, in SaleItemInput) (SaleItem, error) {
	if err := in.validate(); err != nil {
		return SaleItem{}, err
	}
	var updated SaleItem
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.GetSaleItem(ctx, itemID)
		if err != nil {
			return err
		}
		if _, err := tx.LockSale(ctx, existing.SaleID); err != nil {
			return err
		}
		item := in.toItem(existing.SaleID)
		item.ID = itemID
		if err := tx.UpdateSaleItem(ctx, item); err != nil {
			return err
		}
		updated = item
		return s.derive(ctx, tx, existing.SaleID)
	})
	return updated, err
}

// DeleteItem removes an item. Stock does not follow.
func (s *Service) DeleteItem(ctx context.Context, itemID int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.GetSaleItem(ctx, itemID)
		if err != nil {
			return err
		}
		if _, err := tx.LockSale(ctx, existing.SaleID); err != nil {
			return err
		}
		if err := tx.DeleteSaleItem(ctx, itemID); err != nil {
			return err
		}
		return s.derive(ctx, tx, existing.SaleID)
	})
}

func (s *Service) derive(ctx context.Context, tx TxRepository, saleID int64) error {
	if !s.policy.Derives() {
		return nil
	}
	_, err := tx.DeriveSaleTotal(ctx, saleID)
	return err
}

func (s *Service) publish(items ...SaleItem) {
	if s.observer == nil {
		return
	}
	for _, item := range items {
		s.observer.StockAdjusted(inventory.KindSale, item.Quantity)
	}
}
