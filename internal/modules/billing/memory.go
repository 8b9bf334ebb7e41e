package billing

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/apperror"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/clock"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/catalog"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/ledger"
	"github.com/shopspring/decimal"
)

// MemoryRepository keeps bills in process.
type MemoryRepository struct {
	mu    sync.RWMutex
	bills map[string]Bill
	last  int64
	seq   int64 // insertion order, stands in for created_at ties
	order map[string]int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bills: make(map[string]Bill), order: make(map[string]int64)}
}

type memorySnapshot struct {
	bills map[string]Bill
	order map[string]int64
	last  int64
	seq   int64
}

func (m *MemoryRepository) snapshot() memorySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := memorySnapshot{
		bills: make(map[string]Bill, len(m.bills)),
		order: make(map[string]int64, len(m.order)),
		last:  m.last,
		seq:   m.seq,
	}
	for k, v := range m.bills {
		s.bills[k] = v
	}
	for k, v := range m.order {
		s.order[k] = v
	}
	return s
}

func (m *MemoryRepository) restore(s memorySnapshot) {
	m.mu.Lock()
	m.bills, m.order, m.last, m.seq = s.bills, s.order, s.last, s.seq
	m.mu.Unlock()
}

func (m *MemoryRepository) NextBillID(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Bills written around the counter still push it forward.
	if m.last < FirstBillID-1 {
		m.last = FirstBillID - 1
	}
	for id := range m.bills {
		if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > m.last {
			m.last = n
		}
	}
	m.last++
	return strconv.FormatInt(m.last, 10), nil
}

func (m *MemoryRepository) Insert(_ context.Context, b *Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bills[b.BillID]; ok {
		return apperror.New(apperror.ErrConflict, "Bill %s already exists", b.BillID)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	m.seq++
	m.order[b.BillID] = m.seq
	m.bills[b.BillID] = *copyBill(*b)
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, billID string) (*Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bills[billID]
	if !ok {
		return nil, apperror.NotFound("Bill not found")
	}
	return copyBill(b).normalize(), nil
}

func (m *MemoryRepository) ListByDay(_ context.Context, day string) ([]*Bill, error) {
	return m.filter(func(b Bill) bool { return b.DayIdentifier == day }, func(a, b Bill) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return m.order[a.BillID] < m.order[b.BillID]
	}), nil
}

func (m *MemoryRepository) ListBetween(_ context.Context, r clock.Range) ([]*Bill, error) {
	return m.filter(func(b Bill) bool { return r.Contains(b.Date) }, func(a, b Bill) bool {
		return a.Date.After(b.Date)
	}), nil
}

func (m *MemoryRepository) Delete(_ context.Context, billID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bills[billID]; !ok {
		return apperror.NotFound("Bill not found")
	}
	delete(m.bills, billID)
	delete(m.order, billID)
	return nil
}

// filter selects and sorts under the read lock.
func (m *MemoryRepository) filter(keep func(Bill) bool, less func(a, b Bill) bool) []*Bill {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Bill
	for _, b := range m.bills {
		if keep(b) {
			out = append(out, copyBill(b).normalize())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(*out[i], *out[j]) })
	return out
}

func copyBill(b Bill) *Bill {
	b.Items = append([]LineItem(nil), b.Items...)
	return &b
}

// ── transactions ─────────────────────────────────────────────────────────────

type memoryTx struct {
	mu      sync.Mutex
	catalog *catalog.MemoryRepository
	bills   *MemoryRepository
	ledger  *ledger.MemoryRepository
}

// NewMemoryTxManager serialises units of work and undoes a failed one by
// restoring snapshots. Only the ledger days the unit wrote are restored, since
// day close updates the ledger outside these units.
func NewMemoryTxManager(c *catalog.MemoryRepository, b *MemoryRepository, l *ledger.MemoryRepository) TxManager {
	return &memoryTx{catalog: c, bills: b, ledger: l}
}

func (m *memoryTx) WithinTx(_ context.Context, fn func(Stores) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	products, bills, days := m.catalog.Snapshot(), m.bills.snapshot(), m.ledger.Snapshot()
	written := &writtenDays{Repository: m.ledger}
	if err := fn(Stores{Catalog: m.catalog, Bills: m.bills, Ledger: written}); err != nil {
		m.catalog.Restore(products)
		m.bills.restore(bills)
		m.ledger.Restore(days, written.days...)
		return err
	}
	return nil
}

// writtenDays records which ledger days a unit of work touched.
type writtenDays struct {
	ledger.Repository
	days []string
}

func (w *writtenDays) Add(ctx context.Context, day string, amount decimal.Decimal, startedAt time.Time) error {
	w.days = append(w.days, day)
	return w.Repository.Add(ctx, day, amount, startedAt)
}

func (w *writtenDays) Subtract(ctx context.Context, day string, amount decimal.Decimal) error {
	w.days = append(w.days, day)
	return w.Repository.Subtract(ctx, day, amount)
}

func (w *writtenDays) Close(ctx context.Context, day string) (bool, error) {
	w.days = append(w.days, day)
	return w.Repository.Close(ctx, day)
}
