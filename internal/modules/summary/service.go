package summary

import (
	"context"
	"errors"
	"time"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/apperror"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/clock"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/logger"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/metrics"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/billing"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/ledger"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	rollingDays    = 30
	availableDays  = 30
	dailyCacheTTL  = 30 * time.Minute
	cacheSweepTick = time.Hour
)

// Service defines day-end and month rollup operations.
type Service interface {
	CurrentDay(ctx context.Context) (*CurrentDay, error)
	// CloseDay summarises day and closes its ledger. A day that already has a
	// summary still gets its ledger closed, then fails with ErrConflict.
	CloseDay(ctx context.Context, day string) (*DailySummary, error)
	// CloseDayIfActive closes day only when its ledger is still open.
	CloseDayIfActive(ctx context.Context, day string) (*DailySummary, bool, error)
	GetDaily(ctx context.Context, day string) (*DailySummary, error)

	// RollingMonth summarises the last 30 days under the current month key.
	RollingMonth(ctx context.Context) (*MonthlySummary, error)
	// CalendarMonth summarises one full calendar month. It writes nothing and
	// reports false when the month has no bills.
	CalendarMonth(ctx context.Context, m clock.Month) (*MonthlySummary, bool, error)
	GetMonthly(ctx context.Context, month string) (*MonthlySummary, error)
	ListMonthly(ctx context.Context) ([]*MonthlySummary, error)
	ExportMonthly(ctx context.Context, month string) ([]byte, error)

	AvailableDates() []clock.DateOption
}

type service struct {
	repo   Repository
	bills  billing.Repository
	ledger ledger.Repository
	cal    *clock.Calendar
	clock  clock.Clock
	cache  *cache.Cache
	log    logrus.FieldLogger
}

func NewService(repo Repository, bills billing.Repository, days ledger.Repository,
	cal *clock.Calendar, clk clock.Clock, log logrus.FieldLogger) Service {
	return &service{
		repo:   repo,
		bills:  bills,
		ledger: days,
		cal:    cal,
		clock:  clk,
		cache:  cache.New(dailyCacheTTL, cacheSweepTick),
		log:    log,
	}
}

// ── Day ───────────────────────────────────────────────────────────────────────

func (s *service) CurrentDay(ctx context.Context) (*CurrentDay, error) {
	today := s.cal.DayID(s.clock.Now())
	bills, err := s.bills.ListByDay(ctx, today)
	if err != nil {
		return nil, err
	}
	if bills == nil {
		bills = []*billing.Bill{}
	}
	agg := Aggregate(bills)
	return &CurrentDay{
		Date:        today,
		TotalSales:  agg.TotalIncome,
		TotalProfit: agg.TotalProfit,
		BillCount:   len(bills),
		Items:       agg.Items,
		Bills:       bills,
	}, nil
}

func (s *service) CloseDay(ctx context.Context, day string) (*DailySummary, error) {
	if _, err := s.cal.ParseDay(day); err != nil {
		return nil, apperror.Validation("%s", err.Error())
	}
	bills, err := s.bills.ListByDay(ctx, day)
	if err != nil {
		return nil, err
	}
	agg := Aggregate(bills)
	summary := &DailySummary{
		ID:          uuid.New(),
		Date:        day,
		Items:       agg.Items,
		TotalIncome: agg.TotalIncome,
		TotalProfit: agg.TotalProfit,
		EndedAt:     s.clock.Now(),
	}

	insertErr := s.repo.InsertDaily(ctx, summary)
	if insertErr != nil && !errors.Is(insertErr, apperror.ErrConflict) {
		logger.LogError(s.log, "summary", "CloseDay", "insert daily summary", day, insertErr)
		return nil, insertErr
	}
	if _, err := s.ledger.Close(ctx, day); err != nil {
		logger.LogError(s.log, "summary", "CloseDay", "close ledger", day, err)
		return nil, err
	}
	if insertErr != nil {
		return nil, insertErr
	}

	metrics.DayCloses.Inc()
	s.log.WithFields(logrus.Fields{
		"day":         day,
		"bills":       len(bills),
		"totalIncome": summary.TotalIncome.String(),
	}).Info("day closed")
	return summary, nil
}

func (s *service) CloseDayIfActive(ctx context.Context, day string) (*DailySummary, bool, error) {
	d, err := s.ledger.Get(ctx, day)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !d.IsActive {
		return nil, false, nil
	}
	summary, err := s.CloseDay(ctx, day)
	if err != nil {
		return nil, false, err
	}
	return summary, true, nil
}

// GetDaily serves from cache once loaded; daily summaries never change.
func (s *service) GetDaily(ctx context.Context, day string) (*DailySummary, error) {
	key := "daily:" + day
	if v, ok := s.cache.Get(key); ok {
		return v.(*DailySummary), nil
	}
	summary, err := s.repo.GetDaily(ctx, day)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, summary, cache.DefaultExpiration)
	return summary, nil
}

func (s *service) AvailableDates() []clock.DateOption {
	return s.cal.RecentDays(s.clock.Now(), availableDays)
}

// ── Month ─────────────────────────────────────────────────────────────────────

func (s *service) RollingMonth(ctx context.Context) (*MonthlySummary, error) {
	now := s.clock.Now()
	window := s.cal.RollingWindow(now, rollingDays)
	bills, err := s.bills.ListBetween(ctx, window)
	if err != nil {
		return nil, err
	}
	if len(bills) == 0 {
		return nil, apperror.New(apperror.ErrNoData, "No bills found in the past 30 days")
	}

	earliest := bills[0].Date
	for _, b := range bills[1:] {
		if b.Date.Before(earliest) {
			earliest = b.Date
		}
	}
	today := s.cal.DayID(now)
	span, err := clock.DaysBetween(s.cal.DayID(earliest), today)
	if err != nil {
		return nil, err
	}

	month := s.cal.MonthOf(now)
	return s.saveMonthly(ctx, &MonthlySummary{
		Month:        month.Key,
		MonthName:    month.Label,
		StartDate:    s.cal.DayID(window.Start),
		EndDate:      today,
		DaysIncluded: span + 1,
		Source:       SourceRolling,
	}, bills)
}

func (s *service) CalendarMonth(ctx context.Context, m clock.Month) (*MonthlySummary, bool, error) {
	bills, err := s.bills.ListBetween(ctx, m.Range)
	if err != nil {
		return nil, false, err
	}
	if len(bills) == 0 {
		s.log.WithField("month", m.Key).Info("no bills in month, skipping rollup")
		return nil, false, nil
	}
	summary, err := s.saveMonthly(ctx, &MonthlySummary{
		Month:        m.Key,
		MonthName:    m.Label,
		StartDate:    m.FirstDay,
		EndDate:      m.LastDay,
		DaysIncluded: m.Days,
		Source:       SourceCalendar,
	}, bills)
	if err != nil {
		return nil, false, err
	}
	return summary, true, nil
}

// saveMonthly fills in the aggregate, upserts, then enforces retention.
func (s *service) saveMonthly(ctx context.Context, summary *MonthlySummary, bills []*billing.Bill) (*MonthlySummary, error) {
	agg := Aggregate(bills)
	summary.ID = uuid.New()
	summary.Items = agg.Items
	summary.TotalIncome = agg.TotalIncome
	summary.TotalProfit = agg.TotalProfit

	if err := s.repo.UpsertMonthly(ctx, summary); err != nil {
		logger.LogError(s.log, "summary", "saveMonthly", "upsert monthly summary", summary.Month, err)
		return nil, err
	}
	metrics.MonthlyRollups.WithLabelValues(string(summary.Source)).Inc()

	pruned, err := s.repo.PruneMonthly(ctx, MonthlyRetention)
	if err != nil {
		logger.LogError(s.log, "summary", "saveMonthly", "prune monthly summaries", nil, err)
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"month":       summary.Month,
		"source":      summary.Source,
		"bills":       len(bills),
		"totalIncome": summary.TotalIncome.String(),
		"totalProfit": summary.TotalProfit.String(),
		"pruned":      pruned,
	}).Info("monthly summary saved")
	return summary, nil
}

func (s *service) GetMonthly(ctx context.Context, month string) (*MonthlySummary, error) {
	return s.repo.GetMonthly(ctx, month)
}

func (s *service) ListMonthly(ctx context.Context) ([]*MonthlySummary, error) {
	return s.repo.ListMonthly(ctx, MonthlyRetention)
}
