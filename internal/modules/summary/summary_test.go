package summary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/apperror"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/clock"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/logger"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/billing"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/ledger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var colombo = clock.MustCalendar("Asia/Colombo")

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func line(id, variant string, qty int, price, cost int64) billing.LineItem {
	li := billing.LineItem{
		ProductID: id,
		Name:      "Product " + id,
		Variant:   variant,
		Quantity:  qty,
		Price:     dec(price),
		Total:     dec(price * int64(qty)),
	}
	if cost >= 0 {
		li.BuyingPrice = decimal.NewNullDecimal(dec(cost))
	}
	return li
}

type fixture struct {
	bills *billing.MemoryRepository
	days  *ledger.MemoryRepository
	repo  *MemoryRepository
	clock *clock.Fixed
	svc   Service
	n     int
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		bills: billing.NewMemoryRepository(),
		days:  ledger.NewMemoryRepository(),
		repo:  NewMemoryRepository(),
		clock: clock.NewFixed(now),
	}
	f.svc = NewService(f.repo, f.bills, f.days, colombo, f.clock, logger.Discard())
	return f
}

// addBill stores a bill transacted at `at` and books it on the ledger.
func (f *fixture) addBill(t *testing.T, at time.Time, items ...billing.LineItem) *billing.Bill {
	t.Helper()
	f.n++
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.Total)
	}
	b := &billing.Bill{
		BillID:        fmt.Sprint(10000 + f.n),
		Items:         items,
		TotalAmount:   total,
		Date:          at,
		DayIdentifier: colombo.DayID(at),
		Cash:          total,
		Change:        decimal.Zero,
	}
	ctx := context.Background()
	if err := f.bills.Insert(ctx, b); err != nil {
		t.Fatalf("insert bill: %v", err)
	}
	f.days.Add(ctx, b.DayIdentifier, total, at)
	return b
}

func local(y int, m time.Month, d, h, minute int) time.Time {
	return time.Date(y, m, d, h, minute, 0, 0, colombo.Location())
}

func TestAggregate(t *testing.T) {
	bills := []*billing.Bill{
		{Items: []billing.LineItem{line("001", "Standard", 3, 80, 50), line("002", "Small", 1, 30, 20)}},
		{Items: []billing.LineItem{line("001", "", 2, 70, 50), line("003", "", 1, 100, -1)}},
	}
	agg := Aggregate(bills)

	if len(agg.Items) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(agg.Items))
	}
	first := agg.Items[0]
	if first.ProductID != "001" || first.Variant != "Standard" || first.SoldQuantity != 5 {
		t.Fatalf("legacy blank variant must merge into Standard, got %+v", first)
	}
	if !first.TotalIncome.Equal(dec(380)) || !first.Profit.Equal(dec(130)) {
		t.Fatalf("expected income 380 profit 130, got %s / %s", first.TotalIncome, first.Profit)
	}
	if agg.Items[1].ProductID != "002" || agg.Items[2].ProductID != "003" {
		t.Fatalf("rows must keep first-seen order")
	}
	if !agg.Items[2].Profit.Equal(dec(100)) {
		t.Fatalf("line without cost counts full price as profit, got %s", agg.Items[2].Profit)
	}
	if !agg.TotalIncome.Equal(dec(510)) || !agg.TotalProfit.Equal(dec(240)) {
		t.Fatalf("expected totals 510 / 240, got %s / %s", agg.TotalIncome, agg.TotalProfit)
	}
	if empty := Aggregate(nil); len(empty.Items) != 0 || !empty.TotalIncome.IsZero() {
		t.Fatalf("expected empty aggregation")
	}
}

func TestCurrentDay(t *testing.T) {
	f := newFixture(local(2026, 3, 4, 18, 0))
	f.addBill(t, local(2026, 3, 3, 12, 0), line("001", "", 1, 80, 50))
	f.addBill(t, local(2026, 3, 4, 9, 0), line("001", "", 2, 80, 50))
	f.addBill(t, local(2026, 3, 4, 10, 0), line("002", "Small", 1, 30, 20))

	cur, err := f.svc.CurrentDay(context.Background())
	if err != nil {
		t.Fatalf("current day: %v", err)
	}
	if cur.Date != "2026-03-04" || cur.BillCount != 2 || len(cur.Bills) != 2 {
		t.Fatalf("unexpected current day %+v", cur)
	}
	if !cur.TotalSales.Equal(dec(190)) || !cur.TotalProfit.Equal(dec(70)) {
		t.Fatalf("expected 190 / 70, got %s / %s", cur.TotalSales, cur.TotalProfit)
	}
	if _, err := f.repo.GetDaily(context.Background(), "2026-03-04"); err == nil {
		t.Fatalf("current day must not write a summary")
	}
}

func TestCloseDay(t *testing.T) {
	f := newFixture(local(2026, 3, 4, 22, 0))
	ctx := context.Background()
	f.addBill(t, local(2026, 3, 4, 9, 0), line("001", "", 3, 80, 50))
	f.addBill(t, local(2026, 3, 4, 11, 0), line("001", "", 1, 60, -1))

	s, err := f.svc.CloseDay(ctx, "2026-03-04")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if !s.TotalIncome.Equal(dec(300)) || !s.TotalProfit.Equal(dec(150)) {
		t.Fatalf("expected 300 / 150, got %s / %s", s.TotalIncome, s.TotalProfit)
	}
	d, _ := f.days.Get(ctx, "2026-03-04")
	if d.IsActive {
		t.Fatalf("ledger must be closed")
	}

	got, err := f.svc.GetDaily(ctx, "2026-03-04")
	if err != nil || got.ID != s.ID {
		t.Fatalf("expected stored summary, got %v (%v)", got, err)
	}
	if _, err := f.svc.CloseDay(ctx, "2026-03-04"); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second close must conflict, got %v", err)
	}
	if _, err := f.svc.GetDaily(ctx, "2026-03-05"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.svc.CloseDay(ctx, "March 4"); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCloseDayIfActive(t *testing.T) {
	f := newFixture(local(2026, 3, 5, 0, 0))
	ctx := context.Background()

	if _, ran, err := f.svc.CloseDayIfActive(ctx, "2026-03-04"); ran || err != nil {
		t.Fatalf("day without ledger must be skipped, ran=%v err=%v", ran, err)
	}
	f.addBill(t, local(2026, 3, 4, 9, 0), line("001", "", 1, 80, 50))
	if _, ran, err := f.svc.CloseDayIfActive(ctx, "2026-03-04"); !ran || err != nil {
		t.Fatalf("expected active day to close, ran=%v err=%v", ran, err)
	}
	if _, ran, err := f.svc.CloseDayIfActive(ctx, "2026-03-04"); ran || err != nil {
		t.Fatalf("closed day must be skipped, ran=%v err=%v", ran, err)
	}
}

func TestRollingMonth(t *testing.T) {
	f := newFixture(local(2026, 3, 20, 15, 0))
	ctx := context.Background()
	f.addBill(t, local(2026, 2, 10, 9, 0), line("009", "", 1, 999, 0)) // outside the window
	f.addBill(t, local(2026, 2, 25, 9, 0), line("001", "", 1, 80, 50))
	f.addBill(t, local(2026, 3, 20, 9, 0), line("001", "", 2, 80, 50))

	s, err := f.svc.RollingMonth(ctx)
	if err != nil {
		t.Fatalf("rolling: %v", err)
	}
	if s.Month != "2026-03" || s.MonthName != "March 2026" || s.Source != SourceRolling {
		t.Fatalf("unexpected key %+v", s)
	}
	if s.StartDate != "2026-02-19" || s.EndDate != "2026-03-20" {
		t.Fatalf("unexpected window %s..%s", s.StartDate, s.EndDate)
	}
	if s.DaysIncluded != 24 {
		t.Fatalf("expected 24 days from Feb 25 to Mar 20, got %d", s.DaysIncluded)
	}
	if !s.TotalIncome.Equal(dec(240)) || !s.TotalProfit.Equal(dec(90)) {
		t.Fatalf("expected 240 / 90, got %s / %s", s.TotalIncome, s.TotalProfit)
	}

	empty := newFixture(local(2026, 3, 20, 15, 0))
	if _, err := empty.svc.RollingMonth(ctx); !errors.Is(err, apperror.ErrNoData) {
		t.Fatalf("expected no data, got %v", err)
	}
}

func TestCalendarMonth(t *testing.T) {
	f := newFixture(local(2024, 3, 1, 0, 1))
	ctx := context.Background()
	f.addBill(t, local(2024, 1, 31, 23, 59), line("001", "", 1, 10, 5))
	f.addBill(t, local(2024, 2, 1, 0, 0), line("001", "", 1, 80, 50))
	f.addBill(t, local(2024, 2, 29, 23, 59), line("001", "", 1, 80, 50))
	f.addBill(t, local(2024, 3, 1, 0, 0), line("001", "", 1, 10, 5))

	s, ran, err := f.svc.CalendarMonth(ctx, colombo.PreviousMonth(f.clock.Now()))
	if err != nil || !ran {
		t.Fatalf("calendar: ran=%v err=%v", ran, err)
	}
	if s.Month != "2024-02" || s.StartDate != "2024-02-01" || s.EndDate != "2024-02-29" || s.DaysIncluded != 29 {
		t.Fatalf("unexpected bounds %+v", s)
	}
	if !s.TotalIncome.Equal(dec(160)) || s.Source != SourceCalendar {
		t.Fatalf("expected only February bills, got %s", s.TotalIncome)
	}

	_, ran, err = f.svc.CalendarMonth(ctx, colombo.MonthOf(local(2023, 6, 15, 0, 0)))
	if ran || err != nil {
		t.Fatalf("empty month must be skipped, ran=%v err=%v", ran, err)
	}
	if _, err := f.svc.GetMonthly(ctx, "2023-06"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("empty month must not be written")
	}
}

func TestRollingAndCalendarShareKey(t *testing.T) {
	f := newFixture(local(2026, 3, 31, 20, 0))
	ctx := context.Background()
	f.addBill(t, local(2026, 3, 2, 9, 0), line("001", "", 1, 80, 50))

	rolling, _ := f.svc.RollingMonth(ctx)
	calendar, _, _ := f.svc.CalendarMonth(ctx, colombo.MonthOf(f.clock.Now()))
	got, _ := f.svc.GetMonthly(ctx, "2026-03")
	if got.Source != SourceCalendar || got.ID != rolling.ID || calendar.ID != rolling.ID {
		t.Fatalf("last writer wins on the same key and keeps its identity, got %+v", got)
	}
}

func TestMonthlyRetention(t *testing.T) {
	f := newFixture(local(2026, 3, 1, 0, 1))
	ctx := context.Background()
	start := local(2024, 1, 15, 12, 0)
	for i := 0; i < 15; i++ {
		at := start.AddDate(0, i, 0)
		f.addBill(t, at, line("001", "", 1, 80, 50))
		if _, _, err := f.svc.CalendarMonth(ctx, colombo.MonthOf(at)); err != nil {
			t.Fatalf("rollup %d: %v", i, err)
		}
	}
	all, _ := f.svc.ListMonthly(ctx)
	if len(all) != MonthlyRetention {
		t.Fatalf("expected %d summaries, got %d", MonthlyRetention, len(all))
	}
	if all[0].Month != "2025-03" || all[11].Month != "2024-04" {
		t.Fatalf("expected 2025-03..2024-04 newest first, got %s..%s", all[0].Month, all[11].Month)
	}
	if _, err := f.svc.GetMonthly(ctx, "2024-03"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("oldest months must be pruned")
	}
}

func TestExportMonthly(t *testing.T) {
	f := newFixture(local(2026, 3, 20, 15, 0))
	ctx := context.Background()
	f.addBill(t, local(2026, 3, 2, 9, 0), line("001", "Small", 2, 80, 50))
	f.svc.RollingMonth(ctx)

	data, err := f.svc.ExportMonthly(ctx, "2026-03")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()
	if v, _ := wb.GetCellValue(exportSheet, "A1"); v != "March 2026" {
		t.Fatalf("unexpected title %q", v)
	}
	if v, _ := wb.GetCellValue(exportSheet, "C5"); v != "Small" {
		t.Fatalf("unexpected variant cell %q", v)
	}
	if v, _ := wb.GetCellValue(exportSheet, "F6"); v != "60" {
		t.Fatalf("unexpected total profit cell %q", v)
	}
	if _, err := f.svc.ExportMonthly(ctx, "2020-01"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAvailableDates(t *testing.T) {
	f := newFixture(local(2026, 3, 4, 0, 30))
	dates := f.svc.AvailableDates()
	if len(dates) != 30 || dates[0].Label != "Today" || dates[0].Date != "2026-03-04" {
		t.Fatalf("unexpected first entry %+v", dates[0])
	}
	if dates[29].Date != "2026-02-03" || dates[29].Label != "Feb 3, 2026" {
		t.Fatalf("unexpected last entry %+v", dates[29])
	}
}

func TestHandlerDayEnd(t *testing.T) {
	f := newFixture(local(2026, 3, 4, 21, 0))
	f.addBill(t, local(2026, 3, 4, 9, 0), line("001", "", 1, 80, 50))
	r := chi.NewRouter()
	NewHandler(f.svc, colombo, f.clock).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/day/end", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/day/end", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second close, got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summary/daily/2026-03-01", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/summary/monthly/create", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summary/monthly/2026-03/export", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != xlsxContentType {
		t.Fatalf("unexpected export response %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}
