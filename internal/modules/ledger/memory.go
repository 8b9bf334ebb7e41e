package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/apperror"
	"github.com/shopspring/decimal"
)

// MemoryRepository keeps ledgers in process.
type MemoryRepository struct {
	mu   sync.Mutex
	days map[string]ActiveDay
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{days: make(map[string]ActiveDay)}
}

// Snapshot is a copy of every ledger.
type Snapshot map[string]ActiveDay

func (m *MemoryRepository) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(Snapshot, len(m.days))
	for k, v := range m.days {
		out[k] = v
	}
	return out
}

// Restore puts the given days back to their snapshotted state. Days not
// listed keep any change made since the snapshot.
func (m *MemoryRepository) Restore(s Snapshot, days ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, day := range days {
		if d, ok := s[day]; ok {
			m.days[day] = d
		} else {
			delete(m.days, day)
		}
	}
}

func (m *MemoryRepository) Add(_ context.Context, day string, amount decimal.Decimal, startedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.days[day]
	if !ok {
		d = ActiveDay{Date: day, IsActive: true, StartedAt: startedAt, CurrentTotal: decimal.Zero}
	}
	d.CurrentTotal = d.CurrentTotal.Add(amount)
	m.days[day] = d
	return nil
}

func (m *MemoryRepository) Subtract(_ context.Context, day string, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.days[day]
	if !ok {
		return nil
	}
	d.CurrentTotal = decimal.Max(d.CurrentTotal.Sub(amount), decimal.Zero)
	m.days[day] = d
	return nil
}

func (m *MemoryRepository) Close(_ context.Context, day string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.days[day]
	if !ok {
		return false, nil
	}
	d.IsActive = false
	m.days[day] = d
	return true, nil
}

func (m *MemoryRepository) Get(_ context.Context, day string) (*ActiveDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.days[day]
	if !ok {
		return nil, apperror.NotFound("No ledger for %s", day)
	}
	return &d, nil
}
