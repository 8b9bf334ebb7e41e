package summary

import "context"

// Repository defines summary data access.
type Repository interface {
	// InsertDaily fails with apperror.ErrConflict when the day already has a
	// summary.
	InsertDaily(ctx context.Context, s *DailySummary) error
	GetDaily(ctx context.Context, day string) (*DailySummary, error)

	// UpsertMonthly replaces the figures of an existing month key, keeping its
	// ID and CreatedAt.
	UpsertMonthly(ctx context.Context, s *MonthlySummary) error
	GetMonthly(ctx context.Context, month string) (*MonthlySummary, error)
	// ListMonthly returns up to limit summaries, newest month first.
	ListMonthly(ctx context.Context, limit int) ([]*MonthlySummary, error)
	// PruneMonthly deletes every summary beyond the keep most recent month
	// keys and returns how many went.
	PruneMonthly(ctx context.Context, keep int) (int, error)
}
