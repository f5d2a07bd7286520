package accounting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetAccount(ctx context.Context, id int64) (Account, error)
	ListAccounts(ctx context.Context, filters shared.ListFilters) ([]Account, int, error)
	AccountIDs(ctx context.Context) ([]int64, error)
	GetEntry(ctx context.Context, id int64) (JournalEntry, error)
	TrialBalance(ctx context.Context) ([]TrialBalanceRow, error)
}

// BalanceObserver is notified after a recalculated balance has been committed.
type BalanceObserver interface {
	BalanceRecalculated(accountID int64, balance decimal.Decimal)
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	RecalcConcurrency int
}

// Service coordinates ledger writes and keeps account balances derived.
type Service struct {
	repo        RepositoryPort
	logger      *slog.Logger
	observer    BalanceObserver
	concurrency int
}

// NewService builds Service.
func NewService(repo RepositoryPort, logger *slog.Logger, cfg ServiceConfig, observer BalanceObserver) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.RecalcConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Service{repo: repo, logger: logger, observer: observer, concurrency: concurrency}
}

type recalculated struct {
	accountID int64
	balance   decimal.Decimal
}

// CreateAccount registers an account with a zero balance.
func (s *Service) CreateAccount(ctx context.Context, input AccountInput) (Account, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return Account{}, err
	}
	var account Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		account, err = tx.InsertAccount(ctx, input)
		return err
	})
	return account, err
}

// GetAccount loads an account.
func (s *Service) GetAccount(ctx context.Context, id int64) (Account, error) {
	if id <= 0 {
		return Account{}, shared.Invalid("invalid account id")
	}
	return s.repo.GetAccount(ctx, id)
}

// ListAccounts lists accounts ordered by code unless another sort is requested.
func (s *Service) ListAccounts(ctx context.Context, filters shared.ListFilters) ([]Account, int, error) {
	return s.repo.ListAccounts(ctx, filters)
}

// UpdateAccount changes code and name. The balance column is never written here.
func (s *Service) UpdateAccount(ctx context.Context, id int64, input AccountInput) (Account, error) {
	if id <= 0 {
		return Account{}, shared.Invalid("invalid account id")
	}
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return Account{}, err
	}
	var account Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		account, err = tx.UpdateAccount(ctx, id, input)
		return err
	})
	return account, err
}

// DeleteAccount removes an account that no journal line references.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.Invalid("invalid account id")
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeleteAccount(ctx, id)
	})
}

// PostEntry creates the entry header and lines as one unit and recalculates
// every account the lines touch.
func (s *Service) PostEntry(ctx context.Context, input PostEntryInput) (JournalEntry, error) {
	if err := input.Validate(); err != nil {
		return JournalEntry{}, err
	}
	var (
		entry   JournalEntry
		results []recalculated
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		entry, err = tx.InsertEntry(ctx, JournalEntry{Date: input.Date, Narration: input.Narration})
		if err != nil {
			return err
		}
		accountIDs := make([]int64, 0, len(input.Lines))
		for _, in := range input.Lines {
			line, err := tx.InsertLine(ctx, in.toLine(entry.ID))
			if err != nil {
				return err
			}
			entry.Lines = append(entry.Lines, line)
			accountIDs = append(accountIDs, line.AccountID)
		}
		results, err = s.recalc(ctx, tx, accountIDs...)
		return err
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.publish(results)
	return entry, nil
}

// GetEntry loads an entry with its lines.
func (s *Service) GetEntry(ctx context.Context, id int64) (JournalEntry, error) {
	if id <= 0 {
		return JournalEntry{}, shared.Invalid("invalid entry id")
	}
	return s.repo.GetEntry(ctx, id)
}

// DeleteEntry removes an entry and its lines, then recalculates the accounts
// those lines referenced.
func (s *Service) DeleteEntry(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.Invalid("invalid entry id")
	}
	var results []recalculated
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		accountIDs, err := tx.DeleteEntry(ctx, id)
		if err != nil {
			return err
		}
		results, err = s.recalc(ctx, tx, accountIDs...)
		return err
	})
	if err != nil {
		return err
	}
	s.publish(results)
	return nil
}

// AddLine appends a line to an existing entry.
func (s *Service) AddLine(ctx context.Context, entryID int64, input LineInput) (JournalLine, error) {
	if entryID <= 0 {
		return JournalLine{}, shared.Invalid("invalid entry id")
	}
	if err := input.Validate(); err != nil {
		return JournalLine{}, err
	}
	var (
		line    JournalLine
		results []recalculated
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.EntryExists(ctx, entryID); err != nil {
			return err
		}
		var err error
		line, err = tx.InsertLine(ctx, input.toLine(entryID))
		if err != nil {
			return err
		}
		results, err = s.recalc(ctx, tx, line.AccountID)
		return err
	})
	if err != nil {
		return JournalLine{}, err
	}
	s.publish(results)
	return line, nil
}

// UpdateLine replaces a line's account and amounts. When the account changes
// both the previous and the new account are recalculated.
func (s *Service) UpdateLine(ctx context.Context, lineID int64, input LineInput) (JournalLine, error) {
	if lineID <= 0 {
		return JournalLine{}, shared.Invalid("invalid line id")
	}
	if err := input.Validate(); err != nil {
		return JournalLine{}, err
	}
	var (
		line    JournalLine
		results []recalculated
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		previous, err := tx.GetLineForUpdate(ctx, lineID)
		if err != nil {
			return err
		}
		line = input.toLine(previous.EntryID)
		line.ID = previous.ID
		if err := tx.UpdateLine(ctx, line); err != nil {
			return err
		}
		results, err = s.recalc(ctx, tx, previous.AccountID, line.AccountID)
		return err
	})
	if err != nil {
		return JournalLine{}, err
	}
	s.publish(results)
	return line, nil
}

// DeleteLine removes a single line and recalculates its account.
func (s *Service) DeleteLine(ctx context.Context, lineID int64) error {
	if lineID <= 0 {
		return shared.Invalid("invalid line id")
	}
	var results []recalculated
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		previous, err := tx.GetLineForUpdate(ctx, lineID)
		if err != nil {
			return err
		}
		if err := tx.DeleteLine(ctx, lineID); err != nil {
			return err
		}
		results, err = s.recalc(ctx, tx, previous.AccountID)
		return err
	})
	if err != nil {
		return err
	}
	s.publish(results)
	return nil
}

// RecalcAccount recomputes one account balance on demand.
func (s *Service) RecalcAccount(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	if accountID <= 0 {
		return decimal.Zero, shared.Invalid("invalid account id")
	}
	var results []recalculated
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		results, err = s.recalc(ctx, tx, accountID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	s.publish(results)
	return results[0].balance, nil
}

// RecalcAll recomputes every account with bounded concurrency and returns how
// many accounts were processed.
func (s *Service) RecalcAll(ctx context.Context) (int, error) {
	ids, err := s.repo.AccountIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("accounting: list accounts: %w", err)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			_, err := s.RecalcAccount(gctx, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// TrialBalance returns per-account debit and credit totals.
func (s *Service) TrialBalance(ctx context.Context) ([]TrialBalanceRow, error) {
	return s.repo.TrialBalance(ctx)
}

func (s *Service) recalc(ctx context.Context, tx TxRepository, ids ...int64) ([]recalculated, error) {
	accountIDs := affectedAccounts(ids...)
	results := make([]recalculated, 0, len(accountIDs))
	for _, id := range accountIDs {
		balance, err := RecalcAccountBalance(ctx, tx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Error("balance recalculation for missing account", slog.Int64("account_id", id), slog.Any("error", err))
			}
			return nil, err
		}
		results = append(results, recalculated{accountID: id, balance: balance})
	}
	return results, nil
}

func (s *Service) publish(results []recalculated) {
	for _, r := range results {
		s.logger.Debug("account balance recalculated", slog.Int64("account_id", r.accountID), slog.String("balance", r.balance.StringFixed(2)))
		if s.observer != nil {
			s.observer.BalanceRecalculated(r.accountID, r.balance)
		}
	}
}
