package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Period is the half-open interval [From, To).
type Period struct {
	From time.Time
	To   time.Time
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && t.Before(p.To)
}

// PeriodFromPrefix turns a date prefix (YYYY, YYYY-MM or YYYY-MM-DD) into the
// period it covers in loc. An empty prefix means no period.
func PeriodFromPrefix(prefix string, loc *time.Location) (*Period, error) {
	if prefix == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}

	var (
		layout string
		next   func(time.Time) time.Time
	)
	switch len(prefix) {
	case 4:
		layout, next = "2006", func(t time.Time) time.Time { return t.AddDate(1, 0, 0) }
	case 7:
		layout, next = "2006-01", func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
	case 10:
		layout, next = DateLayout, func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	default:
		return nil, &ValidationError{Field: "date", Reason: fmt.Sprintf("unsupported prefix %q", prefix)}
	}

	from, err := time.ParseInLocation(layout, prefix, loc)
	if err != nil {
		return nil, &ValidationError{Field: "date", Reason: fmt.Sprintf("unsupported prefix %q", prefix)}
	}
	return &Period{From: from, To: next(from)}, nil
}

// DayRange covers whole days from start through end, both inclusive.
func DayRange(start, end string, loc *time.Location) (Period, error) {
	if loc == nil {
		loc = time.Local
	}
	from, err := time.ParseInLocation(DateLayout, start, loc)
	if err != nil {
		return Period{}, &ValidationError{Field: "start_date", Reason: "expected YYYY-MM-DD"}
	}
	to, err := time.ParseInLocation(DateLayout, end, loc)
	if err != nil {
		return Period{}, &ValidationError{Field: "end_date", Reason: "expected YYYY-MM-DD"}
	}
	if to.Before(from) {
		return Period{}, &ValidationError{Field: "end_date", Reason: "before start_date"}
	}
	return Period{From: from, To: to.AddDate(0, 0, 1)}, nil
}

// WeekKey formats t as year and Monday-based week number (strftime "%Y-%W").
// Days before the first Monday of the year fall in week 00.
func WeekKey(t time.Time) string {
	weekday := (int(t.Weekday()) + 6) % 7
	week := (t.YearDay() - 1 + 7 - weekday) / 7
	return fmt.Sprintf("%04d-%02d", t.Year(), week)
}

// WeekSpan widens p to whole Monday-based weeks in loc, so every WeekKey
// bucket touched by p is covered from its first day to its last.
func WeekSpan(p Period, loc *time.Location) Period {
	if loc == nil {
		loc = time.Local
	}
	monday := func(t time.Time) time.Time {
		t = t.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		return day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	}
	return Period{From: monday(p.From), To: monday(p.To.Add(-time.Nanosecond)).AddDate(0, 0, 7)}
}
