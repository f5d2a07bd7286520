package suppliers

import (
	"context"

	"github.com/rudraroyaltypython/inventory-sys/internal/platform/db"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error)
	Get(ctx context.Context, id int64) (Supplier, error)
	Create(ctx context.Context, in SupplierInput) (Supplier, error)
	Update(ctx context.Context, id int64, in SupplierInput) (Supplier, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	filters = filters.Normalize()
	search := "%" + filters.Search + "%"
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers WHERE name ILIKE $1 OR email ILIKE $1`, search).Scan(&total); err != nil {
		return nil, 0, err
	}
	dir := "ASC"
	if filters.SortDir == shared.SortDesc {
		dir = "DESC"
	}
	rows, err := r.db.Query(ctx, `SELECT id, name, contact, email, phone, address FROM suppliers
		WHERE name ILIKE $1 OR email ILIKE $1 ORDER BY name `+dir+` LIMIT $2 OFFSET $3`, search, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Contact, &s.Email, &s.Phone, &s.Address); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Supplier, error) {
	var s Supplier
	err := r.db.QueryRow(ctx, `SELECT id, name, contact, email, phone, address FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Contact, &s.Email, &s.Phone, &s.Address)
	return s, db.MapError(err)
}

func (r *repository) Create(ctx context.Context, in SupplierInput) (Supplier, error) {
	s := Supplier{Name: in.Name, Contact: in.Contact, Email: in.Email, Phone: in.Phone, Address: in.Address}
	err := r.db.QueryRow(ctx, `INSERT INTO suppliers (name, contact, email, phone, address) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		in.Name, in.Contact, in.Email, in.Phone, in.Address).Scan(&s.ID)
	if err != nil {
		return Supplier{}, db.MapError(err)
	}
	return s, nil
}

func (r *repository) Update(ctx context.Context, id int64, in SupplierInput) (Supplier, error) {
	tag, err := r.db.Exec(ctx, `UPDATE suppliers SET name = $1, contact = $2, email = $3, phone = $4, address = $5 WHERE id = $6`,
		in.Name, in.Contact, in.Email, in.Phone, in.Address, id)
	if err != nil {
		return Supplier{}, db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return Supplier{}, shared.ErrNotFound
	}
	return Supplier{ID: id, Name: in.Name, Contact: in.Contact, Email: in.Email, Phone: in.Phone, Address: in.Address}, nil
}

// Delete fails with shared.ErrProtected while purchases reference the supplier.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
