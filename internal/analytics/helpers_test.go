package analytics

import (
	"testing"
	"time"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func habit(t *testing.T, id int, name, created string, done ...string) HabitSeries {
	t.Helper()
	days := make([]time.Time, 0, len(done))
	for _, d := range done {
		days = append(days, day(t, d))
	}
	return HabitSeries{ID: id, Name: name, Created: day(t, created), Done: NewDaySet(days)}
}

// consecutive returns n day strings starting at from.
func consecutive(t *testing.T, from string, n int) []string {
	t.Helper()
	start := day(t, from)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, formatDay(AddDays(start, i)))
	}
	return out
}

// everyOther returns n day strings starting at from, skipping every second day.
func everyOther(t *testing.T, from string, n int) []string {
	t.Helper()
	start := day(t, from)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, formatDay(AddDays(start, 2*i)))
	}
	return out
}
