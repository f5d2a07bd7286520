package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/masterdata/categories"
	"github.com/rudraroyaltypython/inventory-sys/internal/masterdata/products"
	"github.com/rudraroyaltypython/inventory-sys/internal/platform/db"
)

// Repository persists catalog imports and serves exports in PostgreSQL.
type Repository struct {
	pool     *pgxpool.Pool
	products products.Repository
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, products: products.NewRepository(pool)}
}

// TxRepository exposes the per-row operations of an import.
type TxRepository interface {
	GetOrCreateCategory(ctx context.Context, name string) (int64, error)
	UpsertProduct(ctx context.Context, p products.Product) (products.Product, bool, error)
}

type txRepo struct {
	categories categories.Repository
	products   products.Repository
}

// WithTx executes the callback inside a read-committed transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTxOptions(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{
			categories: categories.NewRepository(tx),
			products:   products.NewRepository(tx),
		})
	})
}

// ListProducts returns every product ordered by id.
func (r *Repository) ListProducts(ctx context.Context) ([]products.Product, error) {
	return r.products.ListAll(ctx)
}

// StockDrift lists products whose stock differs from purchased minus sold quantity.
func (r *Repository) StockDrift(ctx context.Context) ([]Drift, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.sku, p.stock,
			COALESCE((SELECT SUM(quantity) FROM purchase_items WHERE product_id = p.id), 0) -
			COALESCE((SELECT SUM(quantity) FROM sale_items WHERE product_id = p.id), 0) AS movements
		FROM products p
		ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Drift
	for rows.Next() {
		var d Drift
		if err := rows.Scan(&d.ProductID, &d.SKU, &d.Stock, &d.Movements); err != nil {
			return nil, err
		}
		if !d.Stock.Equal(d.Movements) {
			out = append(out, d)
		}
	}
	return out, rows.Err()
}

// Drift compares stored stock with the net quantity of item movements.
// Direct edits and imports legitimately cause drift, so it is informational.
type Drift struct {
	ProductID int64
	SKU       string
	Stock     decimal.Decimal
	Movements decimal.Decimal
}

func (t *txRepo) GetOrCreateCategory(ctx context.Context, name string) (int64, error) {
	c, _, err := t.categories.GetOrCreateByName(ctx, name)
	if err != nil {
		return 0, err
	}
	return c.ID, nil
}

func (t *txRepo) UpsertProduct(ctx context.Context, p products.Product) (products.Product, bool, error) {
	return t.products.UpsertBySKU(ctx, p)
}
