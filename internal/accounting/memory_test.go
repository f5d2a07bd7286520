package accounting

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

type memoryState struct {
	accounts map[int64]Account
	entries  map[int64]JournalEntry
	lines    map[int64]JournalLine
	nextID   int64
}

func (s memoryState) clone() memoryState {
	out := memoryState{
		accounts: make(map[int64]Account, len(s.accounts)),
		entries:  make(map[int64]JournalEntry, len(s.entries)),
		lines:    make(map[int64]JournalLine, len(s.lines)),
		nextID:   s.nextID,
	}
	for k, v := range s.accounts {
		out.accounts[k] = v
	}
	for k, v := range s.entries {
		out.entries[k] = v
	}
	for k, v := range s.lines {
		out.lines[k] = v
	}
	return out
}

type memoryRepo struct {
	mu         sync.Mutex
	state      memoryState
	balanceSet int
	locked     []int64
}

type memoryTx struct {
	repo  *memoryRepo
	state *memoryState
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{state: memoryState{
		accounts: map[int64]Account{},
		entries:  map[int64]JournalEntry{},
		lines:    map[int64]JournalLine{},
	}}
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

func (r *memoryRepo) GetAccount(ctx context.Context, id int64) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.state.accounts[id]
	if !ok {
		return Account{}, shared.ErrNotFound
	}
	return acc, nil
}

func (r *memoryRepo) ListAccounts(ctx context.Context, filters shared.ListFilters) ([]Account, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Account, 0, len(r.state.accounts))
	for _, acc := range r.state.accounts {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, len(out), nil
}

func (r *memoryRepo) AccountIDs(ctx context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.state.accounts))
	for id := range r.state.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *memoryRepo) GetEntry(ctx context.Context, id int64) (JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.state.entries[id]
	if !ok {
		return JournalEntry{}, shared.ErrNotFound
	}
	entry.Lines = nil
	for _, l := range r.state.sortedLines() {
		if l.EntryID == id {
			entry.Lines = append(entry.Lines, l)
		}
	}
	return entry, nil
}

func (r *memoryRepo) TrialBalance(ctx context.Context) ([]TrialBalanceRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []TrialBalanceRow
	for _, acc := range r.state.accounts {
		row := TrialBalanceRow{AccountID: acc.ID, Code: acc.Code, Name: acc.Name, Balance: acc.Balance}
		for _, l := range r.state.lines {
			if l.AccountID == acc.ID {
				row.TotalDebit = row.TotalDebit.Add(l.Debit)
				row.TotalCredit = row.TotalCredit.Add(l.Credit)
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// balanceOf reads the stored balance without recomputing it.
func (r *memoryRepo) balanceOf(id int64) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.accounts[id].Balance
}

// expected recomputes Σdebit − Σcredit straight from the lines.
func (r *memoryRepo) expected(id int64) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, l := range r.state.lines {
		if l.AccountID == id {
			sum = sum.Add(l.Debit).Sub(l.Credit)
		}
	}
	return sum
}

func (s *memoryState) sortedLines() []JournalLine {
	out := make([]JournalLine, 0, len(s.lines))
	for _, l := range s.lines {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memoryState) id() int64 {
	s.nextID++
	return s.nextID
}

func (tx *memoryTx) LockAccount(ctx context.Context, accountID int64) error {
	if _, ok := tx.state.accounts[accountID]; !ok {
		return shared.ErrNotFound
	}
	tx.repo.locked = append(tx.repo.locked, accountID)
	return nil
}

func (tx *memoryTx) SumLines(ctx context.Context, accountID int64) (decimal.Decimal, decimal.Decimal, error) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range tx.state.lines {
		if l.AccountID == accountID {
			debit = debit.Add(l.Debit)
			credit = credit.Add(l.Credit)
		}
	}
	return debit, credit, nil
}

func (tx *memoryTx) SetAccountBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error {
	acc, ok := tx.state.accounts[accountID]
	if !ok {
		return shared.ErrNotFound
	}
	acc.Balance = balance
	tx.state.accounts[accountID] = acc
	tx.repo.balanceSet++
	return nil
}

func (tx *memoryTx) InsertAccount(ctx context.Context, in AccountInput) (Account, error) {
	for _, acc := range tx.state.accounts {
		if acc.Code == in.Code {
			return Account{}, shared.ErrDuplicate
		}
	}
	acc := Account{ID: tx.state.id(), Code: in.Code, Name: in.Name}
	tx.state.accounts[acc.ID] = acc
	return acc, nil
}

func (tx *memoryTx) UpdateAccount(ctx context.Context, id int64, in AccountInput) (Account, error) {
	acc, ok := tx.state.accounts[id]
	if !ok {
		return Account{}, shared.ErrNotFound
	}
	acc.Code, acc.Name = in.Code, in.Name
	tx.state.accounts[id] = acc
	return acc, nil
}

func (tx *memoryTx) DeleteAccount(ctx context.Context, id int64) error {
	if _, ok := tx.state.accounts[id]; !ok {
		return shared.ErrNotFound
	}
	for _, l := range tx.state.lines {
		if l.AccountID == id {
			return shared.ErrProtected
		}
	}
	delete(tx.state.accounts, id)
	return nil
}

func (tx *memoryTx) UpsertAccountByCode(ctx context.Context, in AccountInput) (bool, error) {
	for id, acc := range tx.state.accounts {
		if acc.Code == in.Code {
			acc.Name = in.Name
			tx.state.accounts[id] = acc
			return false, nil
		}
	}
	_, err := tx.InsertAccount(ctx, in)
	return true, err
}

func (tx *memoryTx) InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	entry.ID = tx.state.id()
	tx.state.entries[entry.ID] = entry
	return entry, nil
}

func (tx *memoryTx) EntryExists(ctx context.Context, id int64) error {
	if _, ok := tx.state.entries[id]; !ok {
		return shared.ErrNotFound
	}
	return nil
}

func (tx *memoryTx) DeleteEntry(ctx context.Context, id int64) ([]int64, error) {
	if _, ok := tx.state.entries[id]; !ok {
		return nil, shared.ErrNotFound
	}
	var accounts []int64
	for lid, l := range tx.state.lines {
		if l.EntryID == id {
			accounts = append(accounts, l.AccountID)
			delete(tx.state.lines, lid)
		}
	}
	delete(tx.state.entries, id)
	return accounts, nil
}

func (tx *memoryTx) InsertLine(ctx context.Context, line JournalLine) (JournalLine, error) {
	if _, ok := tx.state.accounts[line.AccountID]; !ok {
		return JournalLine{}, shared.ErrNotFound
	}
	line.ID = tx.state.id()
	tx.state.lines[line.ID] = line
	return line, nil
}

func (tx *memoryTx) GetLineForUpdate(ctx context.Context, id int64) (JournalLine, error) {
	l, ok := tx.state.lines[id]
	if !ok {
		return JournalLine{}, shared.ErrNotFound
	}
	return l, nil
}

func (tx *memoryTx) UpdateLine(ctx context.Context, line JournalLine) error {
	if _, ok := tx.state.lines[line.ID]; !ok {
		return shared.ErrNotFound
	}
	if _, ok := tx.state.accounts[line.AccountID]; !ok {
		return shared.ErrNotFound
	}
	tx.state.lines[line.ID] = line
	return nil
}

func (tx *memoryTx) DeleteLine(ctx context.Context, id int64) error {
	if _, ok := tx.state.lines[id]; !ok {
		return shared.ErrNotFound
	}
	delete(tx.state.lines, id)
	return nil
}
