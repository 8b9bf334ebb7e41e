package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/apperror"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/database"
	"github.com/shopspring/decimal"
)

type postgresRepo struct{ db database.DBTX }

func NewPostgresRepository(db database.DBTX) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Add(ctx context.Context, day string, amount decimal.Decimal, startedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO active_days (day, is_active, started_at, current_total)
		VALUES ($1, TRUE, $2, $3)
		ON CONFLICT (day) DO UPDATE
		SET current_total = active_days.current_total + EXCLUDED.current_total`,
		day, startedAt, amount)
	return apperror.Storage(err)
}

func (r *postgresRepo) Subtract(ctx context.Context, day string, amount decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE active_days SET current_total = GREATEST(current_total - $2, 0)
		WHERE day=$1`, day, amount)
	return apperror.Storage(err)
}

func (r *postgresRepo) Close(ctx context.Context, day string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE active_days SET is_active=FALSE WHERE day=$1`, day)
	if err != nil {
		return false, apperror.Storage(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperror.Storage(err)
	}
	return n > 0, nil
}

func (r *postgresRepo) Get(ctx context.Context, day string) (*ActiveDay, error) {
	d := &ActiveDay{}
	err := r.db.QueryRowContext(ctx, `
		SELECT day, is_active, started_at, current_total
		FROM active_days WHERE day=$1`, day).
		Scan(&d.Date, &d.IsActive, &d.StartedAt, &d.CurrentTotal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("No ledger for %s", day)
	}
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return d, nil
}
