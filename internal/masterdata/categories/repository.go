package categories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/rudraroyaltypython/inventory-sys/internal/platform/db"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error)
	Get(ctx context.Context, id int64) (Category, error)
	GetByName(ctx context.Context, name string) (Category, error)
	GetOrCreateByName(ctx context.Context, name string) (Category, bool, error)
	Create(ctx context.Context, in CategoryInput) (Category, error)
	Update(ctx context.Context, id int64, in CategoryInput) (Category, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

// NewRepository works on a pool or inside a caller's transaction.
func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	filters = filters.Normalize()
	search := "%" + filters.Search + "%"
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories WHERE name ILIKE $1`, search).Scan(&total); err != nil {
		return nil, 0, err
	}
	dir := "ASC"
	if filters.SortDir == shared.SortDesc {
		dir = "DESC"
	}
	rows, err := r.db.Query(ctx, `SELECT id, name, description FROM categories WHERE name ILIKE $1 ORDER BY name `+dir+` LIMIT $2 OFFSET $3`,
		search, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := r.db.QueryRow(ctx, `SELECT id, name, description FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name, &c.Description)
	return c, db.MapError(err)
}

func (r *repository) GetByName(ctx context.Context, name string) (Category, error) {
	var c Category
	err := r.db.QueryRow(ctx, `SELECT id, name, description FROM categories WHERE name = $1`, name).Scan(&c.ID, &c.Name, &c.Description)
	return c, db.MapError(err)
}

// GetOrCreateByName returns the category named exactly name, inserting it when absent.
func (r *repository) GetOrCreateByName(ctx context.Context, name string) (Category, bool, error) {
	var c Category
	err := r.db.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING RETURNING id, name, description`, name).
		Scan(&c.ID, &c.Name, &c.Description)
	if err == nil {
		return c, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Category{}, false, db.MapError(err)
	}
	c, err = r.GetByName(ctx, name)
	return c, false, err
}

func (r *repository) Create(ctx context.Context, in CategoryInput) (Category, error) {
	c := Category{Name: in.Name, Description: in.Description}
	err := r.db.QueryRow(ctx, `INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id`, in.Name, in.Description).Scan(&c.ID)
	if err != nil {
		return Category{}, db.MapError(err)
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, id int64, in CategoryInput) (Category, error) {
	tag, err := r.db.Exec(ctx, `UPDATE categories SET name = $1, description = $2 WHERE id = $3`, in.Name, in.Description, id)
	if err != nil {
		return Category{}, db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return Category{}, shared.ErrNotFound
	}
	return Category{ID: id, Name: in.Name, Description: in.Description}, nil
}

// Delete removes the category; products referencing it fall back to no category.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
