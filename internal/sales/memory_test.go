package sales

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

type memoryState struct {
	sales        map[int64]Sale
	saleItems    map[int64]SaleItem
	invoices     map[int64]Invoice
	invoiceItems map[int64]InvoiceItem
	stock        map[int64]decimal.Decimal
	nextID       int64
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s memoryState) clone() memoryState {
	return memoryState{
		sales:        cloneMap(s.sales),
		saleItems:    cloneMap(s.saleItems),
		invoices:     cloneMap(s.invoices),
		invoiceItems: cloneMap(s.invoiceItems),
		stock:        cloneMap(s.stock),
		nextID:       s.nextID,
	}
}

type memoryRepo struct {
	mu    sync.Mutex
	state memoryState
}

func newMemoryRepo(products ...int64) *memoryRepo {
	r := &memoryRepo{state: memoryState{
		sales:        map[int64]Sale{},
		saleItems:    map[int64]SaleItem{},
		invoices:     map[int64]Invoice{},
		invoiceItems: map[int64]InvoiceItem{},
		stock:        map[int64]decimal.Decimal{},
	}}
	for _, id := range products {
		r.state.stock[id] = decimal.NewFromInt(10)
	}
	return r
}

type memoryTx struct {
	state *memoryState
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	working := r.state.clone()
	if err := fn(ctx, &memoryTx{state: &working}); err != nil {
		return err
	}
	r.state = working
	return nil
}

func (r *memoryRepo) GetSale(ctx context.Context, id int64) (Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.state.sales[id]
	if !ok {
		return Sale{}, shared.ErrNotFound
	}
	for _, it := range r.state.saleItems {
		if it.SaleID == id {
			s.Items = append(s.Items, it)
		}
	}
	sort.Slice(s.Items, func(i, j int) bool { return s.Items[i].ID < s.Items[j].ID })
	return s, nil
}

func (r *memoryRepo) ListSales(ctx context.Context, filters shared.ListFilters) ([]Sale, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Sale
	for _, s := range r.state.sales {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (r *memoryRepo) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.state.invoices[id]
	if !ok {
		return Invoice{}, shared.ErrNotFound
	}
	for _, it := range r.state.invoiceItems {
		if it.InvoiceID == id {
			inv.Items = append(inv.Items, it)
		}
	}
	sort.Slice(inv.Items, func(i, j int) bool { return inv.Items[i].ID < inv.Items[j].ID })
	return inv, nil
}

func (r *memoryRepo) ListInvoices(ctx context.Context, filters shared.ListFilters) ([]Invoice, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Invoice
	for _, inv := range r.state.invoices {
		out = append(out, inv)
	}
	return out, len(out), nil
}

func (r *memoryRepo) stockOf(id int64) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.stock[id]
}

func (t *memoryTx) id() int64 {
	t.state.nextID++
	return t.state.nextID
}

func (t *memoryTx) GetStockForUpdate(ctx context.Context, id int64) (decimal.Decimal, error) {
	s, ok := t.state.stock[id]
	if !ok {
		return decimal.Decimal{}, shared.ErrNotFound
	}
	return s, nil
}

func (t *memoryTx) SetStock(ctx context.Context, id int64, stock decimal.Decimal) error {
	t.state.stock[id] = stock
	return nil
}

func (t *memoryTx) InsertSale(ctx context.Context, s Sale) (Sale, error) {
	s.ID = t.id()
	t.state.sales[s.ID] = s
	return s, nil
}

func (t *memoryTx) LockSale(ctx context.Context, id int64) (Sale, error) {
	s, ok := t.state.sales[id]
	if !ok {
		return Sale{}, shared.ErrNotFound
	}
	return s, nil
}

func (t *memoryTx) UpdateSale(ctx context.Context, s Sale) error {
	t.state.sales[s.ID] = s
	return nil
}

func (t *memoryTx) DeleteSale(ctx context.Context, id int64) error {
	if _, ok := t.state.sales[id]; !ok {
		return shared.ErrNotFound
	}
	delete(t.state.sales, id)
	for k, it := range t.state.saleItems {
		if it.SaleID == id {
			delete(t.state.saleItems, k)
		}
	}
	return nil
}

func (t *memoryTx) InsertSaleItem(ctx context.Context, item SaleItem) (SaleItem, error) {
	if _, ok := t.state.stock[item.ProductID]; !ok {
		return SaleItem{}, shared.ErrNotFound
	}
	item.ID = t.id()
	t.state.saleItems[item.ID] = item
	return item, nil
}

func (t *memoryTx) GetSaleItem(ctx context.Context, id int64) (SaleItem, error) {
	it, ok := t.state.saleItems[id]
	if !ok {
		return SaleItem{}, shared.ErrNotFound
	}
	return it, nil
}

func (t *memoryTx) UpdateSaleItem(ctx context.Context, item SaleItem) error {
	t.state.saleItems[item.ID] = item
	return nil
}

func (t *memoryTx) DeleteSaleItem(ctx context.Context, id int64) error {
	delete(t.state.saleItems, id)
	return nil
}

func (t *memoryTx) DeriveSaleTotal(ctx context.Context, saleID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, it := range t.state.saleItems {
		if it.SaleID == saleID {
			sum = sum.Add(it.LineTotal)
		}
	}
	s := t.state.sales[saleID]
	s.TotalAmount = sum
	t.state.sales[saleID] = s
	return sum, nil
}

func (t *memoryTx) InsertInvoice(ctx context.Context, inv Invoice) (Invoice, error) {
	for _, existing := range t.state.invoices {
		if existing.InvoiceNo == inv.InvoiceNo {
			return Invoice{}, shared.ErrDuplicate
		}
	}
	inv.ID = t.id()
	t.state.invoices[inv.ID] = inv
	return inv, nil
}

func (t *memoryTx) LockInvoice(ctx context.Context, id int64) (Invoice, error) {
	inv, ok := t.state.invoices[id]
	if !ok {
		return Invoice{}, shared.ErrNotFound
	}
	return inv, nil
}

func (t *memoryTx) UpdateInvoice(ctx context.Context, inv Invoice) error {
	t.state.invoices[inv.ID] = inv
	return nil
}

func (t *memoryTx) DeleteInvoice(ctx context.Context, id int64) error {
	if _, ok := t.state.invoices[id]; !ok {
		return shared.ErrNotFound
	}
	delete(t.state.invoices, id)
	return nil
}

func (t *memoryTx) InsertInvoiceItem(ctx context.Context, item InvoiceItem) (InvoiceItem, error) {
	item.ID = t.id()
	t.state.invoiceItems[item.ID] = item
	return item, nil
}

func (t *memoryTx) GetInvoiceItem(ctx context.Context, id int64) (InvoiceItem, error) {
	it, ok := t.state.invoiceItems[id]
	if !ok {
		return InvoiceItem{}, shared.ErrNotFound
	}
	return it, nil
}

func (t *memoryTx) UpdateInvoiceItem(ctx context.Context, item InvoiceItem) error {
	t.state.invoiceItems[item.ID] = item
	return nil
}

func (t *memoryTx) DeleteInvoiceItem(ctx context.Context, id int64) error {
	delete(t.state.invoiceItems, id)
	return nil
}

func (t *memoryTx) DeriveInvoiceTotal(ctx context.Context, invoiceID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, it := range t.state.invoiceItems {
		if it.InvoiceID == invoiceID {
			sum = sum.Add(it.LineTotal)
		}
	}
	inv := t.state.invoices[invoiceID]
	inv.TotalAmount = sum
	inv.settle()
	t.state.invoices[invoiceID] = inv
	return sum, nil
}
