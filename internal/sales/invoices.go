package sales

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

// InvoiceService manages customer invoices and their payments.
type InvoiceService struct {
	repo   RepositoryPort
	logger *slog.Logger
	policy shared.TotalPolicy
}

// NewInvoiceService builds InvoiceService.
func NewInvoiceService(repo RepositoryPort, logger *slog.Logger, cfg ServiceConfig) *InvoiceService {
	if logger == nil {
		logger = slog.Default()
	}
	policy := cfg.TotalPolicy
	if policy == "" {
		policy = shared.TotalDeriveOnWrite
	}
	return &InvoiceService{repo: repo, logger: logger, policy: policy}
}

func (in InvoiceInput) normalize() (InvoiceInput, error) {
	in.InvoiceNo = strings.TrimSpace(in.InvoiceNo)
	if in.InvoiceNo == "" {
		return in, shared.Invalid("invoice_no is required")
	}
	if in.TotalAmount.IsNegative() {
		return in, shared.Invalid("total_amount must be non-negative")
	}
	for i, item := range in.Items {
		if err := item.validate(); err != nil {
			return in, fmt.Errorf("items[%d]: %w", i, err)
		}
	}
	return in, nil
}

// Create issues an invoice with its items.
func (s *InvoiceService) Create(ctx context.Context, in InvoiceInput) (Invoice, error) {
	in, err := in.normalize()
	if err != nil {
		return Invoice{}, err
	}
	header := Invoice{CustomerID: in.CustomerID, InvoiceNo: in.InvoiceNo, Date: dateOrToday(in.Date), TotalAmount: in.TotalAmount}
	if s.policy.Derives() {
		totals := make([]decimal.Decimal, 0, len(in.Items))
		for _, item := range in.Items {
			totals = append(totals, shared.LineTotal(item.Qty, item.Rate))
		}
		header.TotalAmount = shared.SumTotals(totals)
	}
	var created Invoice
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.InsertInvoice(ctx, header)
		if err != nil {
			return err
		}
		for _, input := range in.Items {
			item, err := tx.InsertInvoiceItem(ctx, input.toItem(inv.ID))
			if err != nil {
				return err
			}
			inv.Items = append(inv.Items, item)
		}
		created = inv
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	s.logger.Info("invoice issued", slog.Int64("invoice_id", created.ID), slog.String("invoice_no", created.InvoiceNo))
	return created, nil
}

// Get loads an invoice with its items.
func (s *InvoiceService) Get(ctx context.Context, id int64) (Invoice, error) {
	if id <= 0 {
		return Invoice{}, shared.Invalid("invalid invoice id")
	}
	return s.repo.GetInvoice(ctx, id)
}

// List returns invoice headers.
func (s *InvoiceService) List(ctx context.Context, filters shared.ListFilters) ([]Invoice, int, error) {
	return s.repo.ListInvoices(ctx, filters)
}

// Update edits the invoice header. Payments are recorded through RecordPayment.
func (s *InvoiceService) Update(ctx context.Context, id int64, in InvoiceInput) (Invoice, error) {
	in, err := in.normalize()
	if err != nil {
		return Invoice{}, err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.LockInvoice(ctx, id)
		if err != nil {
			return err
		}
		inv.CustomerID = in.CustomerID
		inv.InvoiceNo = in.InvoiceNo
		if !in.Date.IsZero() {
			inv.Date = dateOrToday(in.Date)
		}
		if !s.policy.Derives() {
			inv.TotalAmount = in.TotalAmount
			inv.settle()
		}
		return tx.UpdateInvoice(ctx, inv)
	})
	if err != nil {
		return Invoice{}, err
	}
	return s.repo.GetInvoice(ctx, id)
}

// Delete removes the invoice and its items.
func (s *InvoiceService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.Invalid("invalid invoice id")
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeleteInvoice(ctx, id)
	})
}

// RecordPayment adds amount to the paid total and settles the invoice once covered.
func (s *InvoiceService) RecordPayment(ctx context.Context, id int64, in PaymentInput) (Invoice, error) {
	if !in.Amount.IsPositive() {
		return Invoice{}, shared.Invalid("payment amount must be positive")
	}
	var updated Invoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.LockInvoice(ctx, id)
		if err != nil {
			return err
		}
		inv.PaidAmount = inv.PaidAmount.Add(in.Amount)
		inv.settle()
		updated = inv
		return tx.UpdateInvoice(ctx, inv)
	})
	if err != nil {
		return Invoice{}, err
	}
	s.logger.Info("invoice payment recorded",
		slog.Int64("invoice_id", id),
		slog.String("amount", in.Amount.String()),
		slog.Bool("paid", updated.IsPaid))
	return updated, nil
}

// AddItem appends a billed line. Invoices never move stock.
func (s *InvoiceService) AddItem(ctx context.Context, invoiceID int64, in InvoiceItemInput) (InvoiceItem, error) {
	if err := in.validate(); err != nil {
		return InvoiceItem{}, err
	}
	var created InvoiceItem
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.LockInvoice(ctx, invoiceID); err != nil {
			return err
		}
		item, err := tx.InsertInvoiceItem(ctx, in.toItem(invoiceID))
		if err != nil {
			return err
		}
		created = item
		return s.derive(ctx, tx, invoiceID)
	})
	return created, err
}

// UpdateItem edits a billed line.
func (s *InvoiceService) UpdateItem(ctx context.Context, itemID int64, in InvoiceItemInput) (InvoiceItem, error) {
	if err := in.validate(); err != nil {
		return InvoiceItem{}, err
	}
	var updated InvoiceItem
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.GetInvoiceItem(ctx, itemID)
		if err != nil {
			return err
		}
		if _, err := tx.LockInvoice(ctx, existing.InvoiceID); err != nil {
			return err
		}
		item := in.toItem(existing.InvoiceID)
		item.ID = itemID
		if err := tx.UpdateInvoiceItem(ctx, item); err != nil {
			return err
		}
		updated = item
		return s.derive(ctx, tx, existing.InvoiceID)
	})
	return updated, err
}

// DeleteItem removes a billed line.
func (s *InvoiceService) DeleteItem(ctx context.Context, itemID int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.GetInvoiceItem(ctx, itemID)
		if err != nil {
			return err
		}
		if _, err := tx.LockInvoice(ctx, existing.InvoiceID); err != nil {
			return err
		}
		if err := tx.DeleteInvoiceItem(ctx, itemID); err != nil {
			return err
		}
		return s.derive(ctx, tx, existing.InvoiceID)
	})
}

func (s *InvoiceService) derive(ctx context.Context, tx TxRepository, invoiceID int64) error {
	if !s.policy.Derives() {
		return nil
	}
	_, err := tx.DeriveInvoiceTotal(ctx, invoiceID)
	return err
}
