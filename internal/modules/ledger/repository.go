package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository is the day ledger store. Add and Subtract are single atomic
// statements so concurrent bills never lose an update.
type Repository interface {
	// Add creates the day's ledger on first use, otherwise increments it.
	Add(ctx context.Context, day string, amount decimal.Decimal, startedAt time.Time) error
	// Subtract decrements the total, floored at zero. Absent days are ignored.
	Subtract(ctx context.Context, day string, amount decimal.Decimal) error
	// Close marks the day inactive and reports whether a ledger existed.
	Close(ctx context.Context, day string) (bool, error)
	// Get returns apperror.ErrNotFound when the day has no ledger.
	Get(ctx context.Context, day string) (*ActiveDay, error)
}
