package analytics

import (
	"fmt"
	"strings"
	"time"
)

// maxPeriodDays caps how many days a single request may span.
const maxPeriodDays = 3660

const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// Period is an inclusive range of calendar days.
type Period struct {
	Label string
	From  time.Time
	To    time.Time
}

func (p Period) Days() int {
	return DaysBetween(p.From, p.To) + 1
}

func (p Period) Contains(day time.Time) bool {
	return inRange(day, p.From, p.To)
}

func newPeriod(label string, from, to time.Time) (Period, error) {
	from, to = normalize(from), normalize(to)
	if to.Before(from) {
		return Period{}, invalidParam("period %q ends before it starts", label)
	}
	p := Period{Label: label, From: from, To: to}
	if p.Days() > maxPeriodDays {
		return Period{}, invalidParam("period %q spans more than %d days", label, maxPeriodDays)
	}
	return p, nil
}

// ResolvePeriod turns week|month|year into the ISO week (Mon-Sun), calendar month
// or calendar year containing today.
func ResolvePeriod(keyword string, today time.Time) (Period, error) {
	today = normalize(today)
	switch strings.ToLower(strings.TrimSpace(keyword)) {
	case PeriodWeek:
		offset := (int(today.Weekday()) + 6) % 7
		from := AddDays(today, -offset)
		return newPeriod(PeriodWeek, from, AddDays(from, 6))
	case PeriodMonth:
		return MonthPeriod(today.Year(), today.Month()), nil
	case PeriodYear:
		from, to := YearBounds(today.Year())
		return newPeriod(fmt.Sprintf("%04d", today.Year()), from, to)
	}
	return Period{}, invalidParam("unknown period %q, want week, month or year", keyword)
}

// MonthPeriod returns the calendar month of year/month.
func MonthPeriod(year int, month time.Month) Period {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Label: from.Format("2006-01"),
		From:  from,
		To:    from.AddDate(0, 1, -1),
	}
}

// ParsePeriod accepts YYYY, YYYY-MM, YYYY-MM-DD or YYYY-MM-DD..YYYY-MM-DD.
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	if from, to, ok := strings.Cut(s, ".."); ok {
		f, err := ParseDate(from)
		if err != nil {
			return Period{}, err
		}
		t, err := ParseDate(to)
		if err != nil {
			return Period{}, err
		}
		return newPeriod(s, f, t)
	}

	switch len(s) {
	case len("2006"):
		t, err := time.Parse("2006", s)
		if err != nil {
			return Period{}, invalidParam("invalid year %q", s)
		}
		from, to := YearBounds(t.Year())
		return newPeriod(s, from, to)
	case len("2006-01"):
		t, err := time.Parse("2006-01", s)
		if err != nil {
			return Period{}, invalidParam("invalid month %q", s)
		}
		return MonthPeriod(t.Year(), t.Month()), nil
	case len(DateLayout):
		d, err := ParseDate(s)
		if err != nil {
			return Period{}, err
		}
		return newPeriod(s, d, d)
	}
	return Period{}, invalidParam("invalid period %q", s)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, invalidParam("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// TrailingPeriod returns the n days ending on today.
func TrailingPeriod(today time.Time, n int) Period {
	today = normalize(today)
	return Period{
		Label: fmt.Sprintf("last_%d_days", n),
		From:  AddDays(today, -(n - 1)),
		To:    today,
	}
}
