package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePeriod(t *testing.T) {
	today := day(t, "2026-10-15") // Thursday

	week, err := ResolvePeriod("week", today)
	require.NoError(t, err)
	assert.Equal(t, day(t, "2026-10-12"), week.From)
	assert.Equal(t, day(t, "2026-10-18"), week.To)

	month, err := ResolvePeriod("Month", today)
	require.NoError(t, err)
	assert.Equal(t, day(t, "2026-10-01"), month.From)
	assert.Equal(t, day(t, "2026-10-31"), month.To)
	assert.Equal(t, "2026-10", month.Label)

	year, err := ResolvePeriod("year", today)
	require.NoError(t, err)
	assert.Equal(t, 365, year.Days())

	_, err = ResolvePeriod("fortnight", today)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestResolvePeriod_WeekStartsMonday(t *testing.T) {
	sunday := day(t, "2026-10-18")

	week, err := ResolvePeriod("week", sunday)
	require.NoError(t, err)
	assert.Equal(t, day(t, "2026-10-12"), week.From)
}

func TestParsePeriod(t *testing.T) {
	feb, err := ParsePeriod("2026-02")
	require.NoError(t, err)
	assert.Equal(t, day(t, "2026-02-28"), feb.To)

	leap, err := ParsePeriod("2024")
	require.NoError(t, err)
	assert.Equal(t, 366, leap.Days())

	one, err := ParsePeriod("2026-03-04")
	require.NoError(t, err)
	assert.Equal(t, 1, one.Days())

	rng, err := ParsePeriod("2026-03-01..2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, 10, rng.Days())
	assert.True(t, rng.Contains(day(t, "2026-03-10")))
	assert.False(t, rng.Contains(day(t, "2026-03-11")))
}

func TestParsePeriod_Invalid(t *testing.T) {
	for _, s := range []string{"", "soon", "2026-13", "2026-02-30", "2026-03-10..2026-03-01", "1900-01-01..2026-01-01"} {
		_, err := ParsePeriod(s)
		assert.ErrorIs(t, err, ErrInvalidParameter, "input %q", s)
	}
}

func TestTrailingPeriod(t *testing.T) {
	p := TrailingPeriod(day(t, "2026-10-15"), 7)

	assert.Equal(t, day(t, "2026-10-09"), p.From)
	assert.Equal(t, 7, p.Days())
}
