package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPearson(t *testing.T) {
	a := []float64{1, 0, 1, 1, 0, 0, 1}
	b := []float64{0, 0, 1, 1, 1, 0, 1}

	ab, ok := Pearson(a, b)
	require.True(t, ok)
	ba, ok := Pearson(b, a)
	require.True(t, ok)
	assert.InDelta(t, ab, ba, 1e-12)
	assert.GreaterOrEqual(t, ab, -1.0)
	assert.LessOrEqual(t, ab, 1.0)

	self, ok := Pearson(a, a)
	require.True(t, ok)
	assert.InDelta(t, 1.0, self, 1e-9)

	inv := []float64{0, 1, 0, 0, 1, 1, 0}
	neg, ok := Pearson(a, inv)
	require.True(t, ok)
	assert.InDelta(t, -1.0, neg, 1e-9)
}

func TestPearson_Undefined(t *testing.T) {
	_, ok := Pearson([]float64{1, 1, 1}, []float64{0, 1, 0})
	assert.False(t, ok)

	_, ok = Pearson([]float64{1}, []float64{1})
	assert.False(t, ok)

	_, ok = Pearson([]float64{1, 0}, []float64{1, 0, 1})
	assert.False(t, ok)
}

func TestCorrelate_DailyAndAlternateDays(t *testing.T) {
	series := []HabitSeries{
		habit(t, 1, "Meditation", "2026-01-01", consecutive(t, "2026-01-01", 14)...),
		habit(t, 2, "Exercise", "2026-01-01", everyOther(t, "2026-01-01", 7)...),
	}

	res := Correlate(series, day(t, "2026-01-14"), 14, 7)

	require.Len(t, res.Correlations, 1)
	c := res.Correlations[0]
	assert.Equal(t, MethodCoOccurrence, c.Method)
	assert.Greater(t, c.Correlation, 0.0)
	assert.Less(t, c.Correlation, 1.0)
	assert.InDelta(t, 0.5, c.Correlation, 1e-9)
	assert.Equal(t, 14, c.OverlapDays)
	assert.Equal(t, 7, c.DaysTogether)
	assert.Zero(t, res.InsufficientPairs)
}

func TestCorrelate_MatchedAndOpposed(t *testing.T) {
	even := everyOther(t, "2026-01-01", 7)
	odd := everyOther(t, "2026-01-02", 7)
	series := []HabitSeries{
		habit(t, 1, "Journal", "2026-01-01", even...),
		habit(t, 2, "Stretch", "2026-01-01", even...),
		habit(t, 3, "Gaming", "2026-01-01", odd...),
	}

	res := Correlate(series, day(t, "2026-01-14"), 14, 7)

	require.Len(t, res.Correlations, 3)
	for _, c := range res.Correlations {
		assert.Equal(t, MethodPearson, c.Method)
		assert.InDelta(t, 1.0, abs(c.Correlation), 1e-9)
	}
	byPair := map[[2]int]float64{}
	for _, c := range res.Correlations {
		byPair[[2]int{c.HabitAID, c.HabitBID}] = c.Correlation
	}
	assert.InDelta(t, 1.0, byPair[[2]int{1, 2}], 1e-9)
	assert.InDelta(t, -1.0, byPair[[2]int{1, 3}], 1e-9)
	assert.InDelta(t, -1.0, byPair[[2]int{2, 3}], 1e-9)
}

func TestCorrelate_NeedsTwoHabits(t *testing.T) {
	res := Correlate([]HabitSeries{habit(t, 1, "Solo", "2026-01-01")}, day(t, "2026-01-14"), 14, 7)

	assert.Empty(t, res.Correlations)
	assert.NotEmpty(t, res.Message)
}

func TestCorrelate_InsufficientOverlap(t *testing.T) {
	series := []HabitSeries{
		habit(t, 1, "Old", "2026-01-01", consecutive(t, "2026-01-01", 14)...),
		habit(t, 2, "New", "2026-01-12", "2026-01-12", "2026-01-13"),
		habit(t, 3, "Never", "2026-01-01"),
		habit(t, 4, "Never2", "2026-01-01"),
	}

	res := Correlate(series, day(t, "2026-01-14"), 14, 7)

	// Every pair with New lacks overlap, Never/Never2 has no completions at all.
	assert.Equal(t, 4, res.InsufficientPairs)
	require.Len(t, res.Correlations, 2)
	for _, c := range res.Correlations {
		assert.Equal(t, "Old", c.HabitA)
		assert.Equal(t, MethodCoOccurrence, c.Method)
		assert.Zero(t, c.Correlation)
	}
}

func TestTopCorrelations(t *testing.T) {
	ranked := []HabitCorrelation{
		{HabitA: "a", Correlation: 0.9},
		{HabitA: "b", Correlation: -0.6},
		{HabitA: "c", Correlation: 0.2},
		{HabitA: "d", Correlation: 0.1},
	}

	assert.Len(t, TopCorrelations(ranked, 5, 0.3), 2)
	assert.Len(t, TopCorrelations(ranked, 1, 0), 1)
	assert.Empty(t, TopCorrelations(nil, 5, 0))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
