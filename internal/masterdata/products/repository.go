package products

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/platform/db"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	ListAll(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	GetBySKU(ctx context.Context, sku string) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) (Product, error)
	UpsertBySKU(ctx context.Context, product Product) (Product, bool, error)
	Delete(ctx context.Context, id int64) error
	GetStockForUpdate(ctx context.Context, id int64) (decimal.Decimal, error)
	SetStock(ctx context.Context, id int64, stock decimal.Decimal) error
}

type repository struct {
	db db.DBTX
}

// NewRepository works on a pool or inside a caller's transaction.
func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const selectProduct = `SELECT p.id, p.sku, p.name, p.category_id, COALESCE(c.name, ''), p.unit_price, p.tax_percent, p.stock, p.created_at, p.updated_at
	FROM products p LEFT JOIN categories c ON c.id = p.category_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.CategoryID, &p.CategoryName, &p.UnitPrice, &p.TaxPercent, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	filters = filters.Normalize()
	where := ` WHERE (p.name ILIKE $1 OR p.sku ILIKE $1)`
	args := []any{"%" + filters.Search + "%"}
	if filters.CategoryID != nil {
		args = append(args, *filters.CategoryID)
		where += ` AND p.category_id = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := selectProduct + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	args = append(args, filters.Limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))
	args = append(args, filters.Offset())
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// ListAll returns every product ordered by id.
func (r *repository) ListAll(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, selectProduct+` ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, selectProduct+` WHERE p.id = $1`, id))
	return p, db.MapError(err)
}

func (r *repository) GetBySKU(ctx context.Context, sku string) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, selectProduct+` WHERE p.sku = $1`, sku))
	return p, db.MapError(err)
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO products (sku, name, category_id, unit_price, tax_percent, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`,
		product.SKU, product.Name, product.CategoryID, product.UnitPrice, product.TaxPercent, product.Stock, now).Scan(&product.ID)
	if err != nil {
		return Product{}, db.MapError(err)
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, product Product) (Product, error) {
	err := r.db.QueryRow(ctx, `UPDATE products SET sku = $1, name = $2, category_id = $3, unit_price = $4, tax_percent = $5, stock = $6, updated_at = $7
		WHERE id = $8 RETURNING id, created_at, updated_at`,
		product.SKU, product.Name, product.CategoryID, product.UnitPrice, product.TaxPercent, product.Stock, time.Now(), id).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return Product{}, db.MapError(err)
	}
	return product, nil
}

// UpsertBySKU overwrites name, category, prices and stock of the product with
// the same sku, keeping its id, or inserts a new one.
func (r *repository) UpsertBySKU(ctx context.Context, product Product) (Product, bool, error) {
	var created bool
	err := r.db.QueryRow(ctx, `INSERT INTO products (sku, name, category_id, unit_price, tax_percent, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			category_id = EXCLUDED.category_id,
			unit_price = EXCLUDED.unit_price,
			tax_percent = EXCLUDED.tax_percent,
			stock = EXCLUDED.stock,
			updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0)`,
		product.SKU, product.Name, product.CategoryID, product.UnitPrice, product.TaxPercent, product.Stock).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt, &created)
	if err != nil {
		return Product{}, false, db.MapError(err)
	}
	return product, created, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GetStockForUpdate locks the product row and returns its current stock.
func (r *repository) GetStockForUpdate(ctx context.Context, id int64) (decimal.Decimal, error) {
	var stock decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1 FOR NO KEY UPDATE`, id).Scan(&stock)
	return stock, db.MapError(err)
}

// SetStock writes only the stock column.
func (r *repository) SetStock(ctx context.Context, id int64, stock decimal.Decimal) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET stock = $1, updated_at = NOW() WHERE id = $2`, stock, id)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "sku":
		return "p.sku " + dir
	case "unit_price":
		return "p.unit_price " + dir
	case "stock":
		return "p.stock " + dir
	case "created_at":
		return "p.created_at " + dir
	case "id":
		return "p.id " + dir
	default:
		return "p.name " + dir
	}
}
