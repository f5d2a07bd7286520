package customers

import (
	"context"

	"github.com/rudraroyaltypython/inventory-sys/internal/platform/db"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error)
	Get(ctx context.Context, id int64) (Customer, error)
	Create(ctx context.Context, in CustomerInput) (Customer, error)
	Update(ctx context.Context, id int64, in CustomerInput) (Customer, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const selectCustomer = `SELECT id, name, contact, email, phone, address, credit_limit, outstanding FROM customers`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error) {
	filters = filters.Normalize()
	search := "%" + filters.Search + "%"
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE name ILIKE $1 OR email ILIKE $1`, search).Scan(&total); err != nil {
		return nil, 0, err
	}
	order := "name"
	if filters.SortBy == "outstanding" {
		order = "outstanding"
	}
	if filters.SortDir == shared.SortDesc {
		order += " DESC"
	}
	rows, err := r.db.Query(ctx, selectCustomer+` WHERE name ILIKE $1 OR email ILIKE $1 ORDER BY `+order+` LIMIT $2 OFFSET $3`,
		search, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Contact, &c.Email, &c.Phone, &c.Address, &c.CreditLimit, &c.Outstanding); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Customer, error) {
	var c Customer
	err := r.db.QueryRow(ctx, selectCustomer+` WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Contact, &c.Email, &c.Phone, &c.Address, &c.CreditLimit, &c.Outstanding)
	return c, db.MapError(err)
}

func (r *repository) Create(ctx context.Context, in CustomerInput) (Customer, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO customers (name, contact, email, phone, address, credit_limit, outstanding)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		in.Name, in.Contact, in.Email, in.Phone, in.Address, in.CreditLimit, in.Outstanding).Scan(&id)
	if err != nil {
		return Customer{}, db.MapError(err)
	}
	return in.toCustomer(id), nil
}

func (r *repository) Update(ctx context.Context, id int64, in CustomerInput) (Customer, error) {
	tag, err := r.db.Exec(ctx, `UPDATE customers SET name = $1, contact = $2, email = $3, phone = $4, address = $5, credit_limit = $6, outstanding = $7 WHERE id = $8`,
		in.Name, in.Contact, in.Email, in.Phone, in.Address, in.CreditLimit, in.Outstanding, id)
	if err != nil {
		return Customer{}, db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return Customer{}, shared.ErrNotFound
	}
	return in.toCustomer(id), nil
}

// Delete detaches sales and invoices from the customer rather than blocking.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
