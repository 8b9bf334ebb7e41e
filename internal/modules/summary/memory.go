package summary

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/apperror"
)

// MemoryRepository keeps summaries in process.
type MemoryRepository struct {
	mu      sync.RWMutex
	daily   map[string]DailySummary
	monthly map[string]MonthlySummary
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		daily:   make(map[string]DailySummary),
		monthly: make(map[string]MonthlySummary),
	}
}

func (m *MemoryRepository) InsertDaily(_ context.Context, s *DailySummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.daily[s.Date]; ok {
		return apperror.New(apperror.ErrConflict, "Day %s has already been closed", s.Date)
	}
	s.CreatedAt = time.Now()
	m.daily[s.Date] = *s
	return nil
}

func (m *MemoryRepository) GetDaily(_ context.Context, day string) (*DailySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.daily[day]
	if !ok {
		return nil, apperror.NotFound("No summary found for this date")
	}
	return &s, nil
}

func (m *MemoryRepository) UpsertMonthly(_ context.Context, s *MonthlySummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if existing, ok := m.monthly[s.Month]; ok {
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
	} else {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	m.monthly[s.Month] = *s
	return nil
}

func (m *MemoryRepository) GetMonthly(_ context.Context, month string) (*MonthlySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.monthly[month]
	if !ok {
		return nil, apperror.NotFound("No summary found for this month")
	}
	return &s, nil
}

func (m *MemoryRepository) ListMonthly(_ context.Context, limit int) ([]*MonthlySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := m.keysDesc()
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	out := make([]*MonthlySummary, 0, len(keys))
	for _, k := range keys {
		s := m.monthly[k]
		out = append(out, &s)
	}
	return out, nil
}

func (m *MemoryRepository) PruneMonthly(_ context.Context, keep int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := m.keysDesc()
	if len(keys) <= keep {
		return 0, nil
	}
	for _, k := range keys[keep:] {
		delete(m.monthly, k)
	}
	return len(keys) - keep, nil
}

func (m *MemoryRepository) keysDesc() []string {
	keys := make([]string, 0, len(m.monthly))
	for k := range m.monthly {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}
