package purchases

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

type memoryState struct {
	purchases map[int64]Purchase
	items     map[int64]Item
	stock     map[int64]decimal.Decimal
	nextID    int64
}

func (s memoryState) clone() memoryState {
	out := memoryState{
		purchases: make(map[int64]Purchase, len(s.purchases)),
		items:     make(map[int64]Item, len(s.items)),
		stock:     make(map[int64]decimal.Decimal, len(s.stock)),
		nextID:    s.nextID,
	}
	for k, v := range s.purchases {
		out.purchases[k] = v
	}
	for k, v := range s.items {
		out.items[k] = v
	}
	for k, v := range s.stock {
		out.stock[k] = v
	}
	return out
}

type memoryRepo struct {
	mu    sync.Mutex
	state memoryState
	locks []int64
}

func newMemoryRepo(products ...int64) *memoryRepo {
	r := &memoryRepo{state: memoryState{
		purchases: map[int64]Purchase{},
		items:     map[int64]Item{},
		stock:     map[int64]decimal.Decimal{},
	}}
	for _, id := range products {
		r.state.stock[id] = decimal.Zero
	}
	return r
}

type memoryTx struct {
	repo  *memoryRepo
	state *memoryState
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	working := r.state.clone()
	if err := fn(ctx, &memoryTx{repo: r, state: &working}); err != nil {
		return err
	}
	r.state = working
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.state.purchases[id]
	if !ok {
		return Purchase{}, shared.ErrNotFound
	}
	p.Items = nil
	for _, it := range r.state.items {
		if it.PurchaseID == id {
			p.Items = append(p.Items, it)
		}
	}
	sort.Slice(p.Items, func(i, j int) bool { return p.Items[i].ID < p.Items[j].ID })
	return p, nil
}

func (r *memoryRepo) List(ctx context.Context, filters shared.ListFilters) ([]Purchase, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Purchase
	for _, p := range r.state.purchases {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *memoryRepo) stockOf(id int64) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.stock[id]
}

func (t *memoryTx) GetStockForUpdate(ctx context.Context, id int64) (decimal.Decimal, error) {
	s, ok := t.state.stock[id]
	if !ok {
		return decimal.Decimal{}, shared.ErrNotFound
	}
	t.repo.locks = append(t.repo.locks, id)
	return s, nil
}

func (t *memoryTx) SetStock(ctx context.Context, id int64, stock decimal.Decimal) error {
	t.state.stock[id] = stock
	return nil
}

func (t *memoryTx) InsertPurchase(ctx context.Context, p Purchase) (Purchase, error) {
	t.state.nextID++
	p.ID = t.state.nextID
	t.state.purchases[p.ID] = p
	return p, nil
}

func (t *memoryTx) LockPurchase(ctx context.Context, id int64) (Purchase, error) {
	p, ok := t.state.purchases[id]
	if !ok {
		return Purchase{}, shared.ErrNotFound
	}
	return p, nil
}

func (t *memoryTx) UpdatePurchase(ctx context.Context, p Purchase) error {
	t.state.purchases[p.ID] = p
	return nil
}

func (t *memoryTx) DeletePurchase(ctx context.Context, id int64) error {
	if _, ok := t.state.purchases[id]; !ok {
		return shared.ErrNotFound
	}
	delete(t.state.purchases, id)
	for itemID, it := range t.state.items {
		if it.PurchaseID == id {
			delete(t.state.items, itemID)
		}
	}
	return nil
}

func (t *memoryTx) InsertItem(ctx context.Context, item Item) (Item, error) {
	if _, ok := t.state.stock[item.ProductID]; !ok {
		return Item{}, shared.ErrNotFound
	}
	t.state.nextID++
	item.ID = t.state.nextID
	t.state.items[item.ID] = item
	return item, nil
}

func (t *memoryTx) GetItem(ctx context.Context, id int64) (Item, error) {
	it, ok := t.state.items[id]
	if !ok {
		return Item{}, shared.ErrNotFound
	}
	return it, nil
}

func (t *memoryTx) UpdateItem(ctx context.Context, item Item) error {
	t.state.items[item.ID] = item
	return nil
}

func (t *memoryTx) DeleteItem(ctx context.Context, id int64) error {
	delete(t.state.items, id)
	return nil
}

func (t *memoryTx) SumLineTotals(ctx context.Context, purchaseID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, it := range t.state.items {
		if it.PurchaseID == purchaseID {
			sum = sum.Add(it.LineTotal)
		}
	}
	return sum, nil
}

func (t *memoryTx) SetTotal(ctx context.Context, purchaseID int64, total decimal.Decimal) error {
	p := t.state.purchases[purchaseID]
	p.TotalAmount = total
	t.state.purchases[purchaseID] = p
	return nil
}
