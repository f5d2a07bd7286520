package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/inventory"
	"github.com/rudraroyaltypython/inventory-sys/internal/masterdata/products"
	"github.com/rudraroyaltypython/inventory-sys/internal/platform/db"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

// Repository persists sales and invoices in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	q    *queries
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, q: &queries{db: pool}}
}

// TxRepository exposes transactional operations used by the services.
type TxRepository interface {
	inventory.StockStore

	InsertSale(ctx context.Context, s Sale) (Sale, error)
	LockSale(ctx context.Context, id int64) (Sale, error)
	UpdateSale(ctx context.Context, s Sale) error
	DeleteSale(ctx context.Context, id int64) error
	InsertSaleItem(ctx context.Context, item SaleItem) (SaleItem, error)
	GetSaleItem(ctx context.Context, id int64) (SaleItem, error)
	UpdateSaleItem(ctx context.Context, item SaleItem) error
	DeleteSaleItem(ctx context.Context, id int64) error
	DeriveSaleTotal(ctx context.Context, saleID int64) (decimal.Decimal, error)

	InsertInvoice(ctx context.Context, inv Invoice) (Invoice, error)
	LockInvoice(ctx context.Context, id int64) (Invoice, error)
	UpdateInvoice(ctx context.Context, inv Invoice) error
	DeleteInvoice(ctx context.Context, id int64) error
	InsertInvoiceItem(ctx context.Context, item InvoiceItem) (InvoiceItem, error)
	GetInvoiceItem(ctx context.Context, id int64) (InvoiceItem, error)
	UpdateInvoiceItem(ctx context.Context, item InvoiceItem) error
	DeleteInvoiceItem(ctx context.Context, id int64) error
	DeriveInvoiceTotal(ctx context.Context, invoiceID int64) (decimal.Decimal, error)
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

// GetSale loads a sale with its items.
func (r *Repository) GetSale(ctx context.Context, id int64) (Sale, error) {
	s, err := scanSale(r.pool.QueryRow(ctx, selectSale+` WHERE id = $1`, id))
	if err != nil {
		return Sale{}, db.MapError(err)
	}
	rows, err := r.pool.Query(ctx, selectSaleItem+` WHERE sale_id = $1 ORDER BY id`, id)
	if err != nil {
		return Sale{}, err
	}
	s.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (SaleItem, error) { return scanSaleItem(row) })
	return s, err
}

// ListSales returns sale headers ordered by date.
func (r *Repository) ListSales(ctx context.Context, filters shared.ListFilters) ([]Sale, int, error) {
	filters = filters.Normalize()
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, selectSale+` ORDER BY sale_date `+direction(filters)+`, id LIMIT $1 OFFSET $2`, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Sale, error) { return scanSale(row) })
	return out, total, err
}

// GetInvoice loads an invoice with its items.
func (r *Repository) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx, selectInvoice+` WHERE id = $1`, id))
	if err != nil {
		return Invoice{}, db.MapError(err)
	}
	rows, err := r.pool.Query(ctx, selectInvoiceItem+` WHERE invoice_id = $1 ORDER BY id`, id)
	if err != nil {
		return Invoice{}, err
	}
	inv.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (InvoiceItem, error) { return scanInvoiceItem(row) })
	return inv, err
}

// ListInvoices returns invoice headers, optionally searched by number.
func (r *Repository) ListInvoices(ctx context.Context, filters shared.ListFilters) ([]Invoice, int, error) {
	filters = filters.Normalize()
	search := "%" + filters.Search + "%"
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE invoice_no ILIKE $1`, search).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, selectInvoice+` WHERE invoice_no ILIKE $1 ORDER BY invoice_date `+direction(filters)+`, id LIMIT $2 OFFSET $3`,
		search, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Invoice, error) { return scanInvoice(row) })
	return out, total, err
}

func direction(filters shared.ListFilters) string {
	if filters.SortDir == shared.SortDesc {
		return "DESC"
	}
	return "ASC"
}

type queries struct {
	db db.DBTX
}

const (
	selectSale        = `SELECT id, customer_id, sale_date, total_amount FROM sales`
	selectSaleItem    = `SELECT id, sale_id, product_id, quantity, unit_price, line_total FROM sale_items`
	selectInvoice     = `SELECT id, customer_id, invoice_no, invoice_date, total_amount, paid_amount, is_paid FROM invoices`
	selectInvoiceItem = `SELECT id, invoice_id, product_id, qty, rate, line_total FROM invoice_items`
)

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.CustomerID, &s.Date, &s.TotalAmount)
	return s, err
}

func scanSaleItem(row pgx.Row) (SaleItem, error) {
	var it SaleItem
	err := row.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.LineTotal)
	return it, err
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.CustomerID, &inv.InvoiceNo, &inv.Date, &inv.TotalAmount, &inv.PaidAmount, &inv.IsPaid)
	return inv, err
}

func scanInvoiceItem(row pgx.Row) (InvoiceItem, error) {
	var it InvoiceItem
	err := row.Scan(&it.ID, &it.InvoiceID, &it.ProductID, &it.Qty, &it.Rate, &it.LineTotal)
	return it, err
}

func (q *queries) InsertSale(ctx context.Context, s Sale) (Sale, error) {
	err := q.db.QueryRow(ctx, `INSERT INTO sales (customer_id, sale_date, total_amount) VALUES ($1, $2, $3) RETURNING id`,
		s.CustomerID, s.Date, s.TotalAmount).Scan(&s.ID)
	if err != nil {
		return Sale{}, referenceError(err)
	}
	return s, nil
}

func (q *queries) LockSale(ctx context.Context, id int64) (Sale, error) {
	s, err := scanSale(q.db.QueryRow(ctx, selectSale+` WHERE id = $1 FOR NO KEY UPDATE`, id))
	return s, db.MapError(err)
}

func (q *queries) UpdateSale(ctx context.Context, s Sale) error {
	return affected(q.db.Exec(ctx, `UPDATE sales SET customer_id = $1, sale_date = $2, total_amount = $3 WHERE id = $4`,
		s.CustomerID, s.Date, s.TotalAmount, s.ID))
}

func (q *queries) DeleteSale(ctx context.Context, id int64) error {
	return affected(q.db.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id))
}

func (q *queries) InsertSaleItem(ctx context.Context, item SaleItem) (SaleItem, error) {
	err := q.db.QueryRow(ctx, `INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, line_total) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		item.SaleID, item.ProductID, item.Quantity, item.UnitPrice, item.LineTotal).Scan(&item.ID)
	if err != nil {
		return SaleItem{}, referenceError(err)
	}
	return item, nil
}

func (q *queries) GetSaleItem(ctx context.Context, id int64) (SaleItem, error) {
	it, err := scanSaleItem(q.db.QueryRow(ctx, selectSaleItem+` WHERE id = $1`, id))
	return it, db.MapError(err)
}

func (q *queries) UpdateSaleItem(ctx context.Context, item SaleItem) error {
	return affected(q.db.Exec(ctx, `UPDATE sale_items SET product_id = $1, quantity = $2, unit_price = $3, line_total = $4 WHERE id = $5`,
		item.ProductID, item.Quantity, item.UnitPrice, item.LineTotal, item.ID))
}

func (q *queries) DeleteSaleItem(ctx context.Context, id int64) error {
	return affected(q.db.Exec(ctx, `DELETE FROM sale_items WHERE id = $1`, id))
}

// DeriveSaleTotal stores the sum of the sale's line totals as its total.
func (q *queries) DeriveSaleTotal(ctx context.Context, saleID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.db.QueryRow(ctx, `UPDATE sales SET total_amount = (
			SELECT COALESCE(SUM(line_total), 0) FROM sale_items WHERE sale_id = $1
		) WHERE id = $1 RETURNING total_amount`, saleID).Scan(&total)
	return total, db.MapError(err)
}

func (q *queries) InsertInvoice(ctx context.Context, inv Invoice) (Invoice, error) {
	err := q.db.QueryRow(ctx, `INSERT INTO invoices (customer_id, invoice_no, invoice_date, total_amount, paid_amount, is_paid)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		inv.CustomerID, inv.InvoiceNo, inv.Date, inv.TotalAmount, inv.PaidAmount, inv.IsPaid).Scan(&inv.ID)
	if err != nil {
		return Invoice{}, referenceError(err)
	}
	return inv, nil
}

func (q *queries) LockInvoice(ctx context.Context, id int64) (Invoice, error) {
	inv, err := scanInvoice(q.db.QueryRow(ctx, selectInvoice+` WHERE id = $1 FOR NO KEY UPDATE`, id))
	return inv, db.MapError(err)
}

func (q *queries) UpdateInvoice(ctx context.Context, inv Invoice) error {
	return affected(q.db.Exec(ctx, `UPDATE invoices SET customer_id = $1, invoice_no = $2, invoice_date = $3, total_amount = $4, paid_amount = $5, is_paid = $6 WHERE id = $7`,
		inv.CustomerID, inv.InvoiceNo, inv.Date, inv.TotalAmount, inv.PaidAmount, inv.IsPaid, inv.ID))
}

func (q *queries) DeleteInvoice(ctx context.Context, id int64) error {
	return affected(q.db.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id))
}

func (q *queries) InsertInvoiceItem(ctx context.Context, item InvoiceItem) (InvoiceItem, error) {
	err := q.db.QueryRow(ctx, `INSERT INTO invoice_items (invoice_id, product_id, qty, rate, line_total) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		item.InvoiceID, item.ProductID, item.Qty, item.Rate, item.LineTotal).Scan(&item.ID)
	if err != nil {
		return InvoiceItem{}, referenceError(err)
	}
	return item, nil
}

func (q *queries) GetInvoiceItem(ctx context.Context, id int64) (InvoiceItem, error) {
	it, err := scanInvoiceItem(q.db.QueryRow(ctx, selectInvoiceItem+` WHERE id = $1`, id))
	return it, db.MapError(err)
}

func (q *queries) UpdateInvoiceItem(ctx context.Context, item InvoiceItem) error {
	return affected(q.db.Exec(ctx, `UPDATE invoice_items SET product_id = $1, qty = $2, rate = $3, line_total = $4 WHERE id = $5`,
		item.ProductID, item.Qty, item.Rate, item.LineTotal, item.ID))
}

func (q *queries) DeleteInvoiceItem(ctx context.Context, id int64) error {
	return affected(q.db.Exec(ctx, `DELETE FROM invoice_items WHERE id = $1`, id))
}

// DeriveInvoiceTotal stores the sum of line totals and re-evaluates is_paid.
func (q *queries) DeriveInvoiceTotal(ctx context.Context, invoiceID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.db.QueryRow(ctx, `WITH sums AS (
			SELECT COALESCE(SUM(line_total), 0) AS total FROM invoice_items WHERE invoice_id = $1
		)
		UPDATE invoices SET total_amount = sums.total, is_paid = (paid_amount > 0 AND paid_amount >= sums.total)
		FROM sums WHERE id = $1 RETURNING total_amount`, invoiceID).Scan(&total)
	return total, db.MapError(err)
}

func affected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return referenceError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// referenceError reports a write pointing at a missing row as NotFound.
func referenceError(err error) error {
	mapped := db.MapError(err)
	if errors.Is(mapped, shared.ErrProtected) {
		return fmt.Errorf("%w: referenced record", shared.ErrNotFound)
	}
	return mapped
}
