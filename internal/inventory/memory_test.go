package inventory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/masterdata/products"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

type memoryRepo struct {
	mu         sync.Mutex
	categories map[string]int64
	products   map[string]products.Product
	nextID     int64
	failSKU    string
	listCalls  int
	drift      []Drift

	// listGate, when set, holds ListProducts until closed and reports
	// the context state it saw on listSeen.
	listGate chan struct{}
	listSeen chan error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{categories: map[string]int64{}, products: map[string]products.Product{}}
}

type memoryTx struct {
	categories map[string]int64
	products   map[string]products.Product
	repo       *memoryRepo
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx := &memoryTx{categories: map[string]int64{}, products: map[string]products.Product{}, repo: r}
	for k, v := range r.categories {
		tx.categories[k] = v
	}
	for k, v := range r.products {
		tx.products[k] = v
	}
	nextID := r.nextID
	if err := fn(ctx, tx); err != nil {
		r.nextID = nextID
		return err
	}
	r.categories = tx.categories
	r.products = tx.products
	return nil
}

func (r *memoryRepo) ListProducts(ctx context.Context) ([]products.Product, error) {
	if r.listGate != nil {
		r.listSeen <- nil
		<-r.listGate
		if err := ctx.Err(); err != nil {
			r.listSeen <- err
			return nil, err
		}
		r.listSeen <- nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	names := map[int64]string{}
	for name, id := range r.categories {
		names[id] = name
	}
	var out []products.Product
	for _, p := range r.products {
		if p.CategoryID != nil {
			p.CategoryName = names[*p.CategoryID]
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepo) StockDrift(ctx context.Context) ([]Drift, error) {
	return r.drift, nil
}

func (r *memoryRepo) product(sku string) (products.Product, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[sku]
	return p, ok
}

func (t *memoryTx) GetOrCreateCategory(ctx context.Context, name string) (int64, error) {
	if id, ok := t.categories[name]; ok {
		return id, nil
	}
	t.repo.nextID++
	t.categories[name] = t.repo.nextID
	return t.repo.nextID, nil
}

func (t *memoryTx) UpsertProduct(ctx context.Context, p products.Product) (products.Product, bool, error) {
	if p.SKU == t.repo.failSKU {
		return products.Product{}, false, errors.New("store unavailable")
	}
	if existing, ok := t.products[p.SKU]; ok {
		p.ID = existing.ID
		t.products[p.SKU] = p
		return p, false, nil
	}
	t.repo.nextID++
	p.ID = t.repo.nextID
	t.products[p.SKU] = p
	return p, true, nil
}

type memoryStock struct {
	stock map[int64]decimal.Decimal
}

func (m *memoryStock) GetStockForUpdate(ctx context.Context, id int64) (decimal.Decimal, error) {
	s, ok := m.stock[id]
	if !ok {
		return decimal.Decimal{}, shared.ErrNotFound
	}
	return s, nil
}

func (m *memoryStock) SetStock(ctx context.Context, id int64, stock decimal.Decimal) error {
	m.stock[id] = stock
	return nil
}
