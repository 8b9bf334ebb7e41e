package summary

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/apperror"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/database"
)

type postgresRepo struct{ db database.DBTX }

func NewPostgresRepository(db database.DBTX) Repository { return &postgresRepo{db: db} }

// ── Daily ─────────────────────────────────────────────────────────────────────

func (r *postgresRepo) InsertDaily(ctx context.Context, s *DailySummary) error {
	items, err := json.Marshal(s.Items)
	if err != nil {
		return err
	}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO daily_summaries (id, day, items, total_income, total_profit, ended_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at`,
		s.ID, s.Date, items, s.TotalIncome, s.TotalProfit, s.EndedAt).Scan(&s.CreatedAt)
	if database.IsUniqueViolation(err) {
		return apperror.New(apperror.ErrConflict, "Day %s has already been closed", s.Date)
	}
	return apperror.Storage(err)
}

func (r *postgresRepo) GetDaily(ctx context.Context, day string) (*DailySummary, error) {
	s := &DailySummary{}
	var items []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, day, items, total_income, total_profit, ended_at, created_at
		FROM daily_summaries WHERE day=$1`, day).
		Scan(&s.ID, &s.Date, &items, &s.TotalIncome, &s.TotalProfit, &s.EndedAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("No summary found for this date")
	}
	if err != nil {
		return nil, apperror.Storage(err)
	}
	if err := json.Unmarshal(items, &s.Items); err != nil {
		return nil, apperror.Storage(err)
	}
	return s, nil
}

// ── Monthly ───────────────────────────────────────────────────────────────────

const monthlyColumns = `id, month_key, month_name, items, total_income, total_profit,
	start_date, end_date, days_included, source, created_at, updated_at`

func (r *postgresRepo) UpsertMonthly(ctx context.Context, s *MonthlySummary) error {
	items, err := json.Marshal(s.Items)
	if err != nil {
		return err
	}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO monthly_summaries
		  (id, month_key, month_name, items, total_income, total_profit,
		   start_date, end_date, days_included, source)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (month_key) DO UPDATE SET
		  month_name=EXCLUDED.month_name, items=EXCLUDED.items,
		  total_income=EXCLUDED.total_income, total_profit=EXCLUDED.total_profit,
		  start_date=EXCLUDED.start_date, end_date=EXCLUDED.end_date,
		  days_included=EXCLUDED.days_included, source=EXCLUDED.source,
		  updated_at=NOW()
		RETURNING id, created_at, updated_at`,
		s.ID, s.Month, s.MonthName, items, s.TotalIncome, s.TotalProfit,
		s.StartDate, s.EndDate, s.DaysIncluded, s.Source).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return apperror.Storage(err)
}

func (r *postgresRepo) GetMonthly(ctx context.Context, month string) (*MonthlySummary, error) {
	s, err := scanMonthly(r.db.QueryRowContext(ctx,
		`SELECT `+monthlyColumns+` FROM monthly_summaries WHERE month_key=$1`, month).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("No summary found for this month")
	}
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return s, nil
}

func (r *postgresRepo) ListMonthly(ctx context.Context, limit int) ([]*MonthlySummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+monthlyColumns+` FROM monthly_summaries ORDER BY month_key DESC LIMIT $1`, limit)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	defer rows.Close()
	var out []*MonthlySummary
	for rows.Next() {
		s, err := scanMonthly(rows.Scan)
		if err != nil {
			return nil, apperror.Storage(err)
		}
		out = append(out, s)
	}
	return out, apperror.Storage(rows.Err())
}

func (r *postgresRepo) PruneMonthly(ctx context.Context, keep int) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM monthly_summaries WHERE month_key NOT IN (
			SELECT month_key FROM monthly_summaries ORDER BY month_key DESC LIMIT $1
		)`, keep)
	if err != nil {
		return 0, apperror.Storage(err)
	}
	n, err := res.RowsAffected()
	return int(n), apperror.Storage(err)
}

func scanMonthly(scan func(...interface{}) error) (*MonthlySummary, error) {
	s := &MonthlySummary{}
	var items []byte
	if err := scan(&s.ID, &s.Month, &s.MonthName, &items, &s.TotalIncome, &s.TotalProfit,
		&s.StartDate, &s.EndDate, &s.DaysIncluded, &s.Source, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &s.Items); err != nil {
		return nil, err
	}
	return s, nil
}
