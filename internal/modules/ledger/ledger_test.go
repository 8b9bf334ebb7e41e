package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/apperror"
	"github.com/shopspring/decimal"
)

func TestAddCreatesThenIncrements(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	started := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

	repo.Add(ctx, "2026-03-04", decimal.NewFromInt(240), started)
	repo.Add(ctx, "2026-03-04", decimal.NewFromInt(60), started.Add(time.Hour))

	d, err := repo.Get(ctx, "2026-03-04")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !d.CurrentTotal.Equal(decimal.NewFromInt(300)) || !d.IsActive || !d.StartedAt.Equal(started) {
		t.Fatalf("unexpected ledger %+v", d)
	}
}

func TestSubtractFloorsAtZero(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	repo.Add(ctx, "2026-03-04", decimal.NewFromInt(100), time.Now())

	repo.Subtract(ctx, "2026-03-04", decimal.NewFromInt(240))
	d, _ := repo.Get(ctx, "2026-03-04")
	if !d.CurrentTotal.IsZero() {
		t.Fatalf("expected total floored at 0, got %s", d.CurrentTotal)
	}
	if err := repo.Subtract(ctx, "2026-01-01", decimal.NewFromInt(1)); err != nil {
		t.Fatalf("subtract on absent day should be a no-op, got %v", err)
	}
	if _, err := repo.Get(ctx, "2026-01-01"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("subtract must not create a ledger")
	}
}

func TestClose(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	if ok, _ := repo.Close(ctx, "2026-03-04"); ok {
		t.Fatalf("closing an absent day should report false")
	}
	repo.Add(ctx, "2026-03-04", decimal.NewFromInt(5), time.Now())
	if ok, _ := repo.Close(ctx, "2026-03-04"); !ok {
		t.Fatalf("expected close to find the ledger")
	}
	d, _ := repo.Get(ctx, "2026-03-04")
	if d.IsActive {
		t.Fatalf("expected inactive ledger")
	}
}

func TestConcurrentAddsAreNotLost(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			repo.Add(ctx, "2026-03-04", decimal.NewFromInt(2), time.Now())
		}()
	}
	wg.Wait()
	d, _ := repo.Get(ctx, "2026-03-04")
	if !d.CurrentTotal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100, got %s", d.CurrentTotal)
	}
}

func TestRestoreOnlyListedDays(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	repo.Add(ctx, "2026-03-03", decimal.NewFromInt(100), now)

	snap := repo.Snapshot()
	repo.Add(ctx, "2026-03-04", decimal.NewFromInt(50), now)
	repo.Close(ctx, "2026-03-03")
	repo.Restore(snap, "2026-03-04")

	if _, err := repo.Get(ctx, "2026-03-04"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected restored day to be gone, got %v", err)
	}
	d, _ := repo.Get(ctx, "2026-03-03")
	if d.IsActive {
		t.Fatalf("a day outside the restore must keep its close")
	}
}
