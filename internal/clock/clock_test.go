package clock

import (
	"testing"
	"time"
)

var colombo = MustCalendar("Asia/Colombo")

func TestDayIDUsesLocalDateNotUTC(t *testing.T) {
	// 19:00 UTC on Feb 28 is already 00:30 on Mar 1 in Colombo (UTC+05:30).
	at := time.Date(2026, time.February, 28, 19, 0, 0, 0, time.UTC)
	if got := colombo.DayID(at); got != "2026-03-01" {
		t.Fatalf("expected 2026-03-01, got %s", got)
	}
	if got := colombo.TimeLabel(at); got != "12:30 AM" {
		t.Fatalf("expected 12:30 AM, got %s", got)
	}
}

func TestPreviousMonthSpansWholeMonth(t *testing.T) {
	cases := []struct {
		now   time.Time
		key   string
		label string
		first string
		last  string
		days  int
	}{
		{time.Date(2026, time.March, 1, 0, 1, 0, 0, colombo.Location()), "2026-02", "February 2026", "2026-02-01", "2026-02-28", 28},
		{time.Date(2024, time.March, 1, 0, 1, 0, 0, colombo.Location()), "2024-02", "February 2024", "2024-02-01", "2024-02-29", 29},
		{time.Date(2026, time.January, 1, 0, 1, 0, 0, colombo.Location()), "2025-12", "December 2025", "2025-12-01", "2025-12-31", 31},
		{time.Date(2026, time.May, 1, 0, 1, 0, 0, colombo.Location()), "2026-04", "April 2026", "2026-04-01", "2026-04-30", 30},
	}
	for _, tc := range cases {
		m := colombo.PreviousMonth(tc.now)
		if m.Key != tc.key || m.Label != tc.label || m.FirstDay != tc.first || m.LastDay != tc.last || m.Days != tc.days {
			t.Fatalf("PreviousMonth(%s) = %+v", tc.now, m)
		}
		if !m.Contains(m.Start) || m.Contains(m.End) {
			t.Fatalf("month range must be half-open: %+v", m.Range)
		}
		if got := colombo.DayID(m.End.Add(-time.Nanosecond)); got != tc.last {
			t.Fatalf("last instant of %s falls on %s", tc.key, got)
		}
	}
}

func TestRollingWindowIsThirtyLocalDays(t *testing.T) {
	now := time.Date(2026, time.October, 19, 15, 0, 0, 0, colombo.Location())
	w := colombo.RollingWindow(now, 30)
	if got := colombo.DayID(w.Start); got != "2026-09-20" {
		t.Fatalf("window start %s", got)
	}
	if !w.Start.Equal(colombo.StartOfDay(w.Start)) {
		t.Fatalf("window must start at local midnight")
	}
	if !w.Contains(time.Date(2026, time.October, 19, 23, 59, 59, 0, colombo.Location())) {
		t.Fatalf("window must include the whole of today")
	}
	if w.Contains(time.Date(2026, time.September, 19, 23, 59, 59, 0, colombo.Location())) {
		t.Fatalf("window must exclude day 31")
	}
}

func TestDayRangeAndParse(t *testing.T) {
	r, err := colombo.DayRange("2026-10-19")
	if err != nil {
		t.Fatalf("DayRange: %v", err)
	}
	if r.End.Sub(r.Start) != 24*time.Hour {
		t.Fatalf("expected a 24h day, got %s", r.End.Sub(r.Start))
	}
	if _, err := colombo.DayRange("19/10/2026"); err == nil {
		t.Fatalf("expected an error for a malformed day")
	}
}

func TestRecentDaysAndDaysBetween(t *testing.T) {
	now := time.Date(2026, time.January, 2, 10, 0, 0, 0, colombo.Location())
	days := colombo.RecentDays(now, 30)
	if len(days) != 30 {
		t.Fatalf("expected 30 days, got %d", len(days))
	}
	if days[0].Date != "2026-01-02" || days[0].Label != "Today" {
		t.Fatalf("first entry %+v", days[0])
	}
	if days[1].Date != "2026-01-01" || days[1].Label != "Jan 1, 2026" {
		t.Fatalf("second entry %+v", days[1])
	}
	if days[29].Date != "2025-12-04" {
		t.Fatalf("last entry %+v", days[29])
	}

	n, err := DaysBetween("2026-02-25", "2026-03-02")
	if err != nil || n != 5 {
		t.Fatalf("DaysBetween = %d, %v", n, err)
	}
}
