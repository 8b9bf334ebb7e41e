// Package clock resolves trading days and months in the shop's fixed local
// timezone. Bills are bucketed by the local calendar date, never by UTC.
package clock

import (
	"fmt"
	"sync"
	"time"

	// The fixed zone must resolve even on hosts without a zoneinfo database.
	_ "time/tzdata"
)

const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
	timeLayout  = "03:04 PM"
	monthLabel  = "January 2006"
	dateLabel   = "Jan 2, 2006"
)

// Clock is the source of "now".
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Fixed is a settable clock for tests and replays.
type Fixed struct {
	mu sync.Mutex
	t  time.Time
}

func NewFixed(t time.Time) *Fixed { return &Fixed{t: t} }

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.t = t
	f.mu.Unlock()
}

func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

// Range is a half-open instant interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Month is one calendar month in the shop's timezone.
type Month struct {
	Range
	Key      string // YYYY-MM
	Label    string // January 2026
	FirstDay string
	LastDay  string
	Days     int
}

// DateOption is a selectable trading day.
type DateOption struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

// Calendar converts instants into trading days and months of one location.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(zone string) (*Calendar, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", zone, err)
	}
	return &Calendar{loc: loc}, nil
}

// MustCalendar panics on an unknown zone. Intended for tests and constants.
func MustCalendar(zone string) *Calendar {
	c, err := NewCalendar(zone)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Calendar) Location() *time.Location { return c.loc }

func (c *Calendar) In(t time.Time) time.Time { return t.In(c.loc) }

func (c *Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// DayID is the local calendar date of t, YYYY-MM-DD.
func (c *Calendar) DayID(t time.Time) string { return t.In(c.loc).Format(DayLayout) }

// TimeLabel is the local wall time of t, hh:mm AM.
func (c *Calendar) TimeLabel(t time.Time) string { return t.In(c.loc).Format(timeLayout) }

// ParseDay returns local midnight of a YYYY-MM-DD day id.
func (c *Calendar) ParseDay(id string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, id, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", id)
	}
	return t, nil
}

// DayRange spans one local calendar day.
func (c *Calendar) DayRange(id string) (Range, error) {
	start, err := c.ParseDay(id)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: start, End: time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, c.loc)}, nil
}

// RollingWindow covers the last `days` calendar days ending with the day of
// now, inclusive.
func (c *Calendar) RollingWindow(now time.Time, days int) Range {
	t := now.In(c.loc)
	return Range{
		Start: time.Date(t.Year(), t.Month(), t.Day()-(days-1), 0, 0, 0, 0, c.loc),
		End:   time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, c.loc),
	}
}

// MonthOf returns the calendar month containing t.
func (c *Calendar) MonthOf(t time.Time) Month {
	t = t.In(c.loc)
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.loc)
	end := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, c.loc)
	last := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, c.loc)
	return Month{
		Range:    Range{Start: start, End: end},
		Key:      start.Format(MonthLayout),
		Label:    start.Format(monthLabel),
		FirstDay: start.Format(DayLayout),
		LastDay:  last.Format(DayLayout),
		Days:     last.Day(),
	}
}

// PreviousMonth is the full calendar month before the one containing now.
func (c *Calendar) PreviousMonth(now time.Time) Month {
	t := now.In(c.loc)
	return c.MonthOf(time.Date(t.Year(), t.Month()-1, 1, 12, 0, 0, 0, c.loc))
}

// RecentDays lists today followed by the n-1 preceding days.
func (c *Calendar) RecentDays(now time.Time, n int) []DateOption {
	t := now.In(c.loc)
	out := make([]DateOption, 0, n)
	for i := 0; i < n; i++ {
		d := time.Date(t.Year(), t.Month(), t.Day()-i, 0, 0, 0, 0, c.loc)
		label := d.Format(dateLabel)
		if i == 0 {
			label = "Today"
		}
		out = append(out, DateOption{Date: d.Format(DayLayout), Label: label})
	}
	return out
}

// DaysBetween counts calendar days from one day id to another.
func DaysBetween(from, to string) (int, error) {
	f, err := time.Parse(DayLayout, from)
	if err != nil {
		return 0, err
	}
	t, err := time.Parse(DayLayout, to)
	if err != nil {
		return 0, err
	}
	return int(t.Sub(f).Hours() / 24), nil
}
