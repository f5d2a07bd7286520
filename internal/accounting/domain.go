package accounting

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

// Account models a ledger account. Balance is derived from journal lines and
// is never accepted from callers.
type Account struct {
	ID        int64           `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// JournalEntry captures a dated narration that owns journal lines.
type JournalEntry struct {
	ID        int64         `json:"id"`
	Date      time.Time     `json:"date"`
	Narration string        `json:"narration"`
	Lines     []JournalLine `json:"lines"`
	CreatedAt time.Time     `json:"created_at"`
}

// JournalLine stores debit or credit amount for an account.
type JournalLine struct {
	ID        int64           `json:"id"`
	EntryID   int64           `json:"entry_id"`
	AccountID int64           `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// TrialBalanceRow summarises one account's line totals.
type TrialBalanceRow struct {
	AccountID   int64           `json:"account_id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// AccountInput carries the user-editable account fields.
type AccountInput struct {
	Code string `json:"code" yaml:"code" validate:"required,max=32"`
	Name string `json:"name" yaml:"name" validate:"required,max=200"`
}

// LineInput describes a journal line to create or replace.
type LineInput struct {
	AccountID int64           `json:"account_id" validate:"required,gt=0"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// PostEntryInput groups fields required to create a journal entry with its lines.
type PostEntryInput struct {
	Date      time.Time   `json:"date"`
	Narration string      `json:"narration" validate:"max=2000"`
	Lines     []LineInput `json:"lines" validate:"required,min=1,dive"`
}

var (
	// ErrNegativeAmount indicates a debit or credit below zero.
	ErrNegativeAmount = fmt.Errorf("accounting: debit and credit must be non-negative: %w", shared.ErrValidation)
	// ErrAccountRequired indicates a line without an account reference.
	ErrAccountRequired = fmt.Errorf("accounting: line account required: %w", shared.ErrValidation)
)

// Normalize trims the account fields.
func (in AccountInput) Normalize() AccountInput {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	return in
}

// Validate checks required account fields.
func (in AccountInput) Validate() error {
	if in.Code == "" {
		return shared.Invalid("account code is required")
	}
	if in.Name == "" {
		return shared.Invalid("account name is required")
	}
	return nil
}

// Validate rejects negative amounts. A line may carry both a debit and a
// credit; the balance is their difference either way.
func (in LineInput) Validate() error {
	if in.AccountID <= 0 {
		return ErrAccountRequired
	}
	if in.Debit.IsNegative() || in.Credit.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// Validate ensures every line is acceptable.
func (in PostEntryInput) Validate() error {
	if len(in.Lines) == 0 {
		return shared.Invalid("journal entry requires at least one line")
	}
	for idx, line := range in.Lines {
		if err := line.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", idx+1, err)
		}
	}
	return nil
}

func (in LineInput) toLine(entryID int64) JournalLine {
	return JournalLine{EntryID: entryID, AccountID: in.AccountID, Debit: in.Debit, Credit: in.Credit}
}
