package analytics

import (
	"math"
	"sort"
	"time"
)

// DateLayout is the wire format of every calendar date.
const DateLayout = "2006-01-02"

// DayOf returns the calendar day of t in loc as a UTC midnight.
// All day arithmetic in this package works on such values.
func DayOf(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// normalize treats t as an already-resolved calendar date.
func normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func AddDays(day time.Time, n int) time.Time {
	return day.AddDate(0, 0, n)
}

// DaysBetween returns to-from in whole days; negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// DayRange returns every day in [from, to]; empty when to precedes from.
func DayRange(from, to time.Time) []time.Time {
	n := DaysBetween(from, to) + 1
	if n <= 0 {
		return nil
	}
	days := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, AddDays(from, i))
	}
	return days
}

func maxDay(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func inRange(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}

func formatDay(d time.Time) string {
	return d.Format(DateLayout)
}

// DaySet is a sparse set of completed days.
type DaySet map[time.Time]struct{}

func NewDaySet(days []time.Time) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		s[normalize(d)] = struct{}{}
	}
	return s
}

func (s DaySet) Has(day time.Time) bool {
	_, ok := s[day]
	return ok
}

// Sorted returns the days within [from, to] in ascending order.
func (s DaySet) Sorted(from, to time.Time) []time.Time {
	out := make([]time.Time, 0, len(s))
	for d := range s {
		if inRange(d, from, to) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// CountIn counts days within [from, to].
func (s DaySet) CountIn(from, to time.Time) int {
	n := 0
	for d := range s {
		if inRange(d, from, to) {
			n++
		}
	}
	return n
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// percent returns part/whole*100, or 0 when whole is not positive.
func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
