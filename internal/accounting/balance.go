package accounting

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// BalanceStore is the record-store surface needed to derive an account balance.
type BalanceStore interface {
	// LockAccount takes a row lock on the account, failing with shared.ErrNotFound when missing.
	LockAccount(ctx context.Context, accountID int64) error
	// SumLines totals debit and credit over every line referencing the account.
	SumLines(ctx context.Context, accountID int64) (debit, credit decimal.Decimal, err error)
	// SetAccountBalance writes only the balance column.
	SetAccountBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error
}

// RecalcAccountBalance sets balance = Σdebit − Σcredit over the account's current lines.
func RecalcAccountBalance(ctx context.Context, store BalanceStore, accountID int64) (decimal.Decimal, error) {
	if err := store.LockAccount(ctx, accountID); err != nil {
		return decimal.Zero, fmt.Errorf("accounting: lock account %d: %w", accountID, err)
	}
	debit, credit, err := store.SumLines(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("accounting: sum lines for account %d: %w", accountID, err)
	}
	balance := debit.Sub(credit)
	if err := store.SetAccountBalance(ctx, accountID, balance); err != nil {
		return decimal.Zero, fmt.Errorf("accounting: store balance for account %d: %w", accountID, err)
	}
	return balance, nil
}

// affectedAccounts deduplicates ids and sorts them ascending so concurrent
// writers always lock accounts in the same order.
func affectedAccounts(ids ...int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
