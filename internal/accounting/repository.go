package accounting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/platform/db"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

// Repository persists accounting entities.
type Repository struct {
	pool *pgxpool.Pool
	q    *queries
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, q: &queries{db: pool}}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	BalanceStore
	InsertAccount(ctx context.Context, in AccountInput) (Account, error)
	UpdateAccount(ctx context.Context, id int64, in AccountInput) (Account, error)
	DeleteAccount(ctx context.Context, id int64) error
	UpsertAccountByCode(ctx context.Context, in AccountInput) (created bool, err error)
	InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error)
	EntryExists(ctx context.Context, id int64) error
	DeleteEntry(ctx context.Context, id int64) (accountIDs []int64, err error)
	InsertLine(ctx context.Context, line JournalLine) (JournalLine, error)
	GetLineForUpdate(ctx context.Context, id int64) (JournalLine, error)
	UpdateLine(ctx context.Context, line JournalLine) error
	DeleteLine(ctx context.Context, id int64) error
}

// WithTx runs fn in a read-committed transaction. Balance sums are taken after
// the account row lock, so they must see every line committed before it.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTxOptions(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, &queries{db: tx})
	})
}

// GetAccount loads one account.
func (r *Repository) GetAccount(ctx context.Context, id int64) (Account, error) {
	return r.q.getAccount(ctx, id)
}

// ListAccounts returns accounts ordered by code.
func (r *Repository) ListAccounts(ctx context.Context, filters shared.ListFilters) ([]Account, int, error) {
	filters = filters.Normalize()
	search := "%" + filters.Search + "%"
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE code ILIKE $1 OR name ILIKE $1`, search).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT id, code, name, balance, created_at, updated_at FROM accounts
		WHERE code ILIKE $1 OR name ILIKE $1 ORDER BY ` + accountSortOrder(filters.SortBy, filters.SortDir) + ` LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, search, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, a)
	}
	return accounts, total, rows.Err()
}

// AccountIDs lists every account id.
func (r *Repository) AccountIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// GetEntry loads an entry with its lines.
func (r *Repository) GetEntry(ctx context.Context, id int64) (JournalEntry, error) {
	var e JournalEntry
	err := r.pool.QueryRow(ctx, `SELECT id, entry_date, narration, created_at FROM journal_entries WHERE id = $1`, id).
		Scan(&e.ID, &e.Date, &e.Narration, &e.CreatedAt)
	if err != nil {
		return JournalEntry{}, db.MapError(err)
	}
	rows, err := r.pool.Query(ctx, `SELECT id, entry_id, account_id, debit, credit FROM journal_lines WHERE entry_id = $1 ORDER BY id`, id)
	if err != nil {
		return JournalEntry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l JournalLine
		if err := rows.Scan(&l.ID, &l.EntryID, &l.AccountID, &l.Debit, &l.Credit); err != nil {
			return JournalEntry{}, err
		}
		e.Lines = append(e.Lines, l)
	}
	return e, rows.Err()
}

// TrialBalance totals lines per account.
func (r *Repository) TrialBalance(ctx context.Context) ([]TrialBalanceRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT a.id, a.code, a.name,
			COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0), a.balance
		FROM accounts a
		LEFT JOIN journal_lines l ON l.account_id = a.id
		GROUP BY a.id, a.code, a.name, a.balance
		ORDER BY a.code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TrialBalanceRow
	for rows.Next() {
		var row TrialBalanceRow
		if err := rows.Scan(&row.AccountID, &row.Code, &row.Name, &row.TotalDebit, &row.TotalCredit, &row.Balance); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

type queries struct {
	db db.DBTX
}

func (q *queries) getAccount(ctx context.Context, id int64) (Account, error) {
	var a Account
	err := q.db.QueryRow(ctx, `SELECT id, code, name, balance, created_at, updated_at FROM accounts WHERE id = $1`, id).
		Scan(&a.ID, &a.Code, &a.Name, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Account{}, db.MapError(err)
	}
	return a, nil
}

func (q *queries) LockAccount(ctx context.Context, accountID int64) error {
	var id int64
	// NO KEY UPDATE does not conflict with the KEY SHARE locks taken by line inserts.
	err := q.db.QueryRow(ctx, `SELECT id FROM accounts WHERE id = $1 FOR NO KEY UPDATE`, accountID).Scan(&id)
	return db.MapError(err)
}

func (q *queries) SumLines(ctx context.Context, accountID int64) (decimal.Decimal, decimal.Decimal, error) {
	var debit, credit decimal.Decimal
	err := q.db.QueryRow(ctx, `SELECT COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0) FROM journal_lines WHERE account_id = $1`, accountID).
		Scan(&debit, &credit)
	return debit, credit, err
}

func (q *queries) SetAccountBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error {
	tag, err := q.db.Exec(ctx, `UPDATE accounts SET balance = $1 WHERE id = $2`, balance, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (q *queries) InsertAccount(ctx context.Context, in AccountInput) (Account, error) {
	var a Account
	err := q.db.QueryRow(ctx, `INSERT INTO accounts (code, name) VALUES ($1, $2)
		RETURNING id, code, name, balance, created_at, updated_at`, in.Code, in.Name).
		Scan(&a.ID, &a.Code, &a.Name, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Account{}, db.MapError(err)
	}
	return a, nil
}

func (q *queries) UpdateAccount(ctx context.Context, id int64, in AccountInput) (Account, error) {
	var a Account
	err := q.db.QueryRow(ctx, `UPDATE accounts SET code = $1, name = $2, updated_at = $3 WHERE id = $4
		RETURNING id, code, name, balance, created_at, updated_at`, in.Code, in.Name, time.Now(), id).
		Scan(&a.ID, &a.Code, &a.Name, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Account{}, db.MapError(err)
	}
	return a, nil
}

func (q *queries) DeleteAccount(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (q *queries) UpsertAccountByCode(ctx context.Context, in AccountInput) (bool, error) {
	var inserted bool
	err := q.db.QueryRow(ctx, `INSERT INTO accounts (code, name) VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()
		RETURNING (xmax = 0)`, in.Code, in.Name).Scan(&inserted)
	return inserted, db.MapError(err)
}

func (q *queries) InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	date := entry.Date
	if date.IsZero() {
		date = time.Now()
	}
	err := q.db.QueryRow(ctx, `INSERT INTO journal_entries (entry_date, narration) VALUES ($1, $2)
		RETURNING id, entry_date, created_at`, date, entry.Narration).Scan(&entry.ID, &entry.Date, &entry.CreatedAt)
	if err != nil {
		return JournalEntry{}, db.MapError(err)
	}
	return entry, nil
}

func (q *queries) EntryExists(ctx context.Context, id int64) error {
	var found int64
	err := q.db.QueryRow(ctx, `SELECT id FROM journal_entries WHERE id = $1 FOR UPDATE`, id).Scan(&found)
	return db.MapError(err)
}

func (q *queries) DeleteEntry(ctx context.Context, id int64) ([]int64, error) {
	rows, err := q.db.Query(ctx, `SELECT DISTINCT account_id FROM journal_lines WHERE entry_id = $1`, id)
	if err != nil {
		return nil, err
	}
	accountIDs, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, err
	}
	tag, err := q.db.Exec(ctx, `DELETE FROM journal_entries WHERE id = $1`, id)
	if err != nil {
		return nil, db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return accountIDs, nil
}

func (q *queries) InsertLine(ctx context.Context, line JournalLine) (JournalLine, error) {
	err := q.db.QueryRow(ctx, `INSERT INTO journal_lines (entry_id, account_id, debit, credit) VALUES ($1, $2, $3, $4) RETURNING id`,
		line.EntryID, line.AccountID, line.Debit, line.Credit).Scan(&line.ID)
	if err != nil {
		return JournalLine{}, mapLineError(err)
	}
	return line, nil
}

func (q *queries) GetLineForUpdate(ctx context.Context, id int64) (JournalLine, error) {
	var l JournalLine
	err := q.db.QueryRow(ctx, `SELECT id, entry_id, account_id, debit, credit FROM journal_lines WHERE id = $1 FOR UPDATE`, id).
		Scan(&l.ID, &l.EntryID, &l.AccountID, &l.Debit, &l.Credit)
	if err != nil {
		return JournalLine{}, db.MapError(err)
	}
	return l, nil
}

func (q *queries) UpdateLine(ctx context.Context, line JournalLine) error {
	tag, err := q.db.Exec(ctx, `UPDATE journal_lines SET account_id = $1, debit = $2, credit = $3 WHERE id = $4`,
		line.AccountID, line.Debit, line.Credit, line.ID)
	if err != nil {
		return mapLineError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (q *queries) DeleteLine(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM journal_lines WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// mapLineError reports a dangling account reference on insert as not found
// rather than as a protected delete.
func mapLineError(err error) error {
	mapped := db.MapError(err)
	if errors.Is(mapped, shared.ErrProtected) {
		return fmt.Errorf("accounting: referenced account or entry: %w", shared.ErrNotFound)
	}
	return mapped
}

func accountSortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "name":
		return "name " + dir
	case "balance":
		return "balance " + dir
	default:
		return "code " + dir
	}
}
