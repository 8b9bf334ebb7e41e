package billing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/apperror"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/clock"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/database"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/catalog"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/ledger"
)

type postgresRepo struct{ db database.DBTX }

func NewPostgresRepository(db database.DBTX) Repository { return &postgresRepo{db: db} }

const billColumns = `bill_id, items, total_amount, transacted_at, time_label, day_identifier, cash, change_amount, created_at`

// NextBillID advances the sequence past both its own high-water mark and
// the highest stored bill, so ids written around the sequence are skipped.
// The row lock taken by the upsert serialises concurrent callers.
func (r *postgresRepo) NextBillID(ctx context.Context) (string, error) {
	var next int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO bill_sequence (name, last_value)
		VALUES ('bill', (SELECT GREATEST(COALESCE(MAX(bill_id::BIGINT), 0), $1) FROM bills) + 1)
		ON CONFLICT (name) DO UPDATE SET last_value = GREATEST(
			bill_sequence.last_value,
			(SELECT COALESCE(MAX(bill_id::BIGINT), 0) FROM bills)) + 1
		RETURNING last_value`, FirstBillID-1).Scan(&next)
	if err != nil {
		return "", apperror.Storage(err)
	}
	return strconv.FormatInt(next, 10), nil
}

func (r *postgresRepo) Insert(ctx context.Context, b *Bill) error {
	items, err := json.Marshal(b.Items)
	if err != nil {
		return err
	}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO bills
		  (bill_id, items, total_amount, transacted_at, time_label, day_identifier, cash, change_amount)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at`,
		b.BillID, items, b.TotalAmount, b.Date, b.Time, b.DayIdentifier, b.Cash, b.Change).
		Scan(&b.CreatedAt)
	if database.IsUniqueViolation(err) {
		return apperror.New(apperror.ErrConflict, "Bill %s already exists", b.BillID)
	}
	return apperror.Storage(err)
}

func (r *postgresRepo) Get(ctx context.Context, billID string) (*Bill, error) {
	b, err := scanBill(r.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE bill_id=$1`, billID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("Bill not found")
	}
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return b, nil
}

func (r *postgresRepo) ListByDay(ctx context.Context, day string) ([]*Bill, error) {
	return r.list(ctx, `SELECT `+billColumns+` FROM bills
		WHERE day_identifier=$1 ORDER BY created_at, bill_id`, day)
}

func (r *postgresRepo) ListBetween(ctx context.Context, rg clock.Range) ([]*Bill, error) {
	return r.list(ctx, `SELECT `+billColumns+` FROM bills
		WHERE transacted_at >= $1 AND transacted_at < $2
		ORDER BY transacted_at DESC`, rg.Start, rg.End)
}

func (r *postgresRepo) Delete(ctx context.Context, billID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bills WHERE bill_id=$1`, billID)
	if err != nil {
		return apperror.Storage(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("Bill not found")
	}
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func scanBill(scan func(...interface{}) error) (*Bill, error) {
	b := &Bill{}
	var items []byte
	if err := scan(&b.BillID, &items, &b.TotalAmount, &b.Date, &b.Time,
		&b.DayIdentifier, &b.Cash, &b.Change, &b.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &b.Items); err != nil {
		return nil, err
	}
	return b.normalize(), nil
}

func (r *postgresRepo) list(ctx context.Context, query string, args ...interface{}) ([]*Bill, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	defer rows.Close()
	var bills []*Bill
	for rows.Next() {
		b, err := scanBill(rows.Scan)
		if err != nil {
			return nil, apperror.Storage(err)
		}
		bills = append(bills, b)
	}
	return bills, apperror.Storage(rows.Err())
}

// ── transactions ─────────────────────────────────────────────────────────────

type postgresTx struct{ db *sql.DB }

// NewPostgresTxManager binds every store of a unit of work to one *sql.Tx.
func NewPostgresTxManager(db *sql.DB) TxManager { return &postgresTx{db: db} }

func (m *postgresTx) WithinTx(ctx context.Context, fn func(Stores) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Storage(err)
	}
	defer tx.Rollback()

	if err := fn(Stores{
		Catalog: catalog.NewPostgresRepository(tx),
		Bills:   NewPostgresRepository(tx),
		Ledger:  ledger.NewPostgresRepository(tx),
	}); err != nil {
		return err
	}
	return apperror.Storage(tx.Commit())
}
