package purchases

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/inventory"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Purchase, error)
	List(ctx context.Context, filters shared.ListFilters) ([]Purchase, int, error)
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	TotalPolicy shared.TotalPolicy
}

// Service records supplier purchases and receives their stock.
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

// Create stores the header and items together; each item adds its quantity to stock.
func (s *Service) Create(ctx context.Context, in CreateInput) (Purchase, error) {
	if in.SupplierID <= 0 {
		return Purchase{}, shared.Invalid("supplier_id is required")
	}
	for i, item := range in.Items {
		if err := item.validate(); err != nil {
			return Purchase{}, fmt.Errorf("items[%d]: %w", i, err)
		}
	}
	if !s.policy.Derives() && in.TotalAmount.IsNegative() {
		return Purchase{}, shared.Invalid("total_amount must be non-negative")
	}
	var created Purchase
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.InsertPurchase(ctx, Purchase{
			SupplierID:    in.SupplierID,
			InvoiceNumber: strings.TrimSpace(in.InvoiceNumber),
			Date:          dateOrToday(in.Date),
			Received:      in.Received,
			TotalAmount:   s.initialTotal(in),
		})
		if err != nil {
			return err
		}
		for _, input := range in.Items {
			item, err := tx.InsertItem(ctx, input.toItem(p.ID))
			if err != nil {
				return err
			}
			p.Items = append(p.Items, item)
		}
		if err := receive(ctx, tx, p.Items); err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return Purchase{}, err
	}
	s.publish(created.Items...)
	s.logger.Info("purchase created", slog.Int64("purchase_id", created.ID), slog.Int("items", len(created.Items)))
	return created, nil
}

// Get loads a purchase with its items.
func (s *Service) Get(ctx context.Context, id int64) (Purchase, error) {
	if id <= 0 {
		return Purchase{}, shared.Invalid("invalid purchase id")
	}
	return s.repo.Get(ctx, id)
}

// List returns purchase headers.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Purchase, int, error) {
	return s.repo.List(ctx, filters)
}

// Update edits the header. A derived total is kept as is.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Purchase, error) {
	if in.SupplierID <= 0 {
		return Purchase{}, shared.Invalid("supplier_id is required")
	}
	if in.TotalAmount.IsNegative() {
		return Purchase{}, shared.Invalid("total_amount must be non-negative")
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.LockPurchase(ctx, id)
		if err != nil {
			return err
		}
		p.SupplierID = in.SupplierID
		p.InvoiceNumber = strings.TrimSpace(in.InvoiceNumber)
		if !in.Date.IsZero() {
			p.Date = dateOrToday(in.Date)
		}
		p.Received = in.Received
		if !s.policy.Derives() {
			p.TotalAmount = in.TotalAmount
		}
		return tx.UpdatePurchase(ctx, p)
	})
	if err != nil {
		return Purchase{}, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes the purchase and its items. Stock is left untouched.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.Invalid("invalid purchase id")
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeletePurchase(ctx, id)
	})
}

// AddItem appends an item and adds its quantity to stock.
func (s *Service) AddItem(ctx context.Context, purchaseID int64, in ItemInput) (Item, error) {
	if err := in.validate(); err != nil {
		return Item{}, err
	}
	var created Item
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.LockPurchase(ctx, purchaseID); err != nil {
			return err
		}
		item, err := tx.InsertItem(ctx, in.toItem(purchaseID))
		if err != nil {
			return err
		}
		if _, err := inventory.AdjustStockOnCreate(ctx, tx, item.ProductID, item.Quantity, inventory.KindPurchase); err != nil {
			return err
		}
		created = item
		return s.deriveTotal(ctx, tx, purchaseID)
	})
	if err != nil {
		return Item{}, err
	}
	s.publish(created)
	return created, nil
}

// UpdateItem edits an item. Stock does not follow quantity changes.
func (s *Service) UpdateItem(ctx context.Context, itemID int64, in ItemInput) (Item, error) {
	if err := in.validate(); err != nil {
		return Item{}, err
	}
	var updated Item
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if _, err := tx.LockPurchase(ctx, existing.PurchaseID); err != nil {
			return err
		}
		item := in.toItem(existing.PurchaseID)
		item.ID = itemID
		if err := tx.UpdateItem(ctx, item); err != nil {
			return err
		}
		updated = item
		return s.deriveTotal(ctx, tx, existing.PurchaseID)
	})
	if err != nil {
		return Item{}, err
	}
	return updated, nil
}

// DeleteItem removes an item. Stock is left untouched.
func (s *Service) DeleteItem(ctx context.Context, itemID int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if _, err := tx.LockPurchase(ctx, existing.PurchaseID); err != nil {
			return err
		}
		if err := tx.DeleteItem(ctx, itemID); err != nil {
			return err
		}
		return s.deriveTotal(ctx, tx, existing.PurchaseID)
	})
}

func (s *Service) initialTotal(in CreateInput) decimal.Decimal {
	if !s.policy.Derives() {
		return in.TotalAmount
	}
	totals := make([]decimal.Decimal, 0, len(in.Items))
	for _, item := range in.Items {
		totals = append(totals, shared.LineTotal(item.Quantity, item.UnitPrice))
	}
	return shared.SumTotals(totals)
}

func (s *Service) deriveTotal(ctx context.Context, tx TxRepository, purchaseID int64) error {
	if !s.policy.Derives() {
		return nil
	}
	sum, err := tx.SumLineTotals(ctx, purchaseID)
	if err != nil {
		return err
	}
	return tx.SetTotal(ctx, purchaseID, sum)
}

func (s *Service) publish(items ...Item) {
	if s.observer == nil {
		return
	}
	for _, item := range items {
		s.observer.StockAdjusted(inventory.KindPurchase, item.Quantity)
	}
}

// receive adjusts stock for freshly inserted items in product id order so
// concurrent documents lock product rows in the same sequence.
func receive(ctx context.Context, tx TxRepository, items []Item) error {
	ordered := make([]Item, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })
	for _, item := range ordered {
		if _, err := inventory.AdjustStockOnCreate(ctx, tx, item.ProductID, item.Quantity, inventory.KindPurchase); err != nil {
			return err
		}
	}
	return nil
}
