package purchases

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/inventory"
	"github.com/rudraroyaltypython/inventory-sys/internal/masterdata/products"
	"github.com/rudraroyaltypython/inventory-sys/internal/platform/db"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

// Repository persists purchases in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	q    *queries
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, q: &queries{db: pool}}
}

// TxRepository exposes transactional operations used by the service.
type TxRepository interface {
	inventory.StockStore
	InsertPurchase(ctx context.Context, p Purchase) (Purchase, error)
	LockPurchase(ctx context.Context, id int64) (Purchase, error)
	UpdatePurchase(ctx context.Context, p Purchase) error
	DeletePurchase(ctx context.Context, id int64) error
	InsertItem(ctx context.Context, item Item) (Item, error)
	GetItem(ctx context.Context, id int64) (Item, error)
	UpdateItem(ctx context.Context, item Item) error
	DeleteItem(ctx context.Context, id int64) error
	SumLineTotals(ctx context.Context, purchaseID int64) (decimal.Decimal, error)
	SetTotal(ctx context.Context, purchaseID int64, total decimal.Decimal) error
}

type txQueries struct {
	*queries
	products.Repository
}

// WithTx runs fn in a read-committed transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTxOptions(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, txQueries{queries: &queries{db: tx}, Repository: products.NewRepository(tx)})
	})
}

// Get loads a purchase with its items.
func (r *Repository) Get(ctx context.Context, id int64) (Purchase, error) {
	p, err := r.q.getPurchase(ctx, id, false)
	if err != nil {
		return Purchase{}, err
	}
	p.Items, err = r.q.listItems(ctx, id)
	return p, err
}

// List returns purchase headers ordered by date.
func (r *Repository) List(ctx context.Context, filters shared.ListFilters) ([]Purchase, int, error) {
	filters = filters.Normalize()
	search := "%" + filters.Search + "%"
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchases WHERE invoice_number ILIKE $1`, search).Scan(&total); err != nil {
		return nil, 0, err
	}
	dir := "ASC"
	if filters.SortDir == shared.SortDesc {
		dir = "DESC"
	}
	rows, err := r.pool.Query(ctx, selectPurchase+` WHERE invoice_number ILIKE $1 ORDER BY purchase_date `+dir+`, id `+dir+` LIMIT $2 OFFSET $3`,
		search, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Purchase, error) {
		return scanPurchase(row)
	})
	return out, total, err
}

type queries struct {
	db db.DBTX
}

const selectPurchase = `SELECT id, supplier_id, invoice_number, purchase_date, received, total_amount FROM purchases`

const selectItem = `SELECT id, purchase_id, product_id, quantity, unit_price, line_total FROM purchase_items`

func scanPurchase(row pgx.Row) (Purchase, error) {
	var p Purchase
	err := row.Scan(&p.ID, &p.SupplierID, &p.InvoiceNumber, &p.Date, &p.Received, &p.TotalAmount)
	return p, err
}

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.PurchaseID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.LineTotal)
	return it, err
}

func (q *queries) getPurchase(ctx context.Context, id int64, lock bool) (Purchase, error) {
	query := selectPurchase + ` WHERE id = $1`
	if lock {
		query += ` FOR NO KEY UPDATE`
	}
	p, err := scanPurchase(q.db.QueryRow(ctx, query, id))
	return p, db.MapError(err)
}

func (q *queries) listItems(ctx context.Context, purchaseID int64) ([]Item, error) {
	rows, err := q.db.Query(ctx, selectItem+` WHERE purchase_id = $1 ORDER BY id`, purchaseID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Item, error) {
		return scanItem(row)
	})
}

func (q *queries) InsertPurchase(ctx context.Context, p Purchase) (Purchase, error) {
	err := q.db.QueryRow(ctx, `INSERT INTO purchases (supplier_id, invoice_number, purchase_date, received, total_amount)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		p.SupplierID, p.InvoiceNumber, p.Date, p.Received, p.TotalAmount).Scan(&p.ID)
	if err != nil {
		// A missing supplier surfaces as a foreign key violation.
		return Purchase{}, referenceError(err)
	}
	return p, nil
}

// LockPurchase serialises item writes that feed the same header total.
func (q *queries) LockPurchase(ctx context.Context, id int64) (Purchase, error) {
	return q.getPurchase(ctx, id, true)
}

func (q *queries) UpdatePurchase(ctx context.Context, p Purchase) error {
	tag, err := q.db.Exec(ctx, `UPDATE purchases SET supplier_id = $1, invoice_number = $2, purchase_date = $3, received = $4, total_amount = $5 WHERE id = $6`,
		p.SupplierID, p.InvoiceNumber, p.Date, p.Received, p.TotalAmount, p.ID)
	if err != nil {
		return referenceError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (q *queries) DeletePurchase(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (q *queries) InsertItem(ctx context.Context, item Item) (Item, error) {
	err := q.db.QueryRow(ctx, `INSERT INTO purchase_items (purchase_id, product_id, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		item.PurchaseID, item.ProductID, item.Quantity, item.UnitPrice, item.LineTotal).Scan(&item.ID)
	if err != nil {
		return Item{}, referenceError(err)
	}
	return item, nil
}

func (q *queries) GetItem(ctx context.Context, id int64) (Item, error) {
	it, err := scanItem(q.db.QueryRow(ctx, selectItem+` WHERE id = $1`, id))
	return it, db.MapError(err)
}

func (q *queries) UpdateItem(ctx context.Context, item Item) error {
	tag, err := q.db.Exec(ctx, `UPDATE purchase_items SET product_id = $1, quantity = $2, unit_price = $3, line_total = $4 WHERE id = $5`,
		item.ProductID, item.Quantity, item.UnitPrice, item.LineTotal, item.ID)
	if err != nil {
		return referenceError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (q *queries) DeleteItem(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM purchase_items WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (q *queries) SumLineTotals(ctx context.Context, purchaseID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := q.db.QueryRow(ctx, `SELECT COALESCE(SUM(line_total), 0) FROM purchase_items WHERE purchase_id = $1`, purchaseID).Scan(&sum)
	return sum, err
}

func (q *queries) SetTotal(ctx context.Context, purchaseID int64, total decimal.Decimal) error {
	_, err := q.db.Exec(ctx, `UPDATE purchases SET total_amount = $1 WHERE id = $2`, total, purchaseID)
	return err
}

// referenceError reports an insert or update pointing at a missing row as NotFound.
func referenceError(err error) error {
	mapped := db.MapError(err)
	if errors.Is(mapped, shared.ErrProtected) {
		return fmt.Errorf("%w: referenced record", shared.ErrNotFound)
	}
	return mapped
}
