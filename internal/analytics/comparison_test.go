package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentChange(t *testing.T) {
	cases := []struct {
		before, after int
		change        float64
		isNew         bool
	}{
		{10, 15, 50, false},
		{10, 5, -50, false},
		{3, 4, 33.3, false},
		{7, 7, 0, false},
		{0, 5, 0, true},
		{0, 0, 0, false},
	}
	for _, c := range cases {
		change, isNew := PercentChange(c.before, c.after)
		assert.Equal(t, c.change, change, "%d -> %d", c.before, c.after)
		assert.Equal(t, c.isNew, isNew, "%d -> %d", c.before, c.after)
	}
}

func TestComparePeriods(t *testing.T) {
	series := []HabitSeries{
		habit(t, 1, "Read", "2026-01-01", "2026-01-05", "2026-02-03", "2026-02-04"),
		habit(t, 2, "Run", "2026-01-01", "2026-01-07", "2026-02-10"),
	}
	tasks := []TaskRecord{
		{ID: 1, Day: day(t, "2026-02-01"), Completed: true, CompletedOn: day(t, "2026-02-02")},
		{ID: 2, Day: day(t, "2026-01-31"), Completed: true, CompletedOn: day(t, "2026-02-01")},
		{ID: 3, Day: day(t, "2026-02-01")},
	}
	jan, err := ParsePeriod("2026-01")
	require.NoError(t, err)
	feb, err := ParsePeriod("2026-02")
	require.NoError(t, err)

	res := ComparePeriods(series, tasks, jan, feb)

	assert.Equal(t, 2, res.Period1.HabitsCompleted)
	assert.Equal(t, 3, res.Period2.HabitsCompleted)
	assert.Equal(t, 0, res.Period1.TasksCompleted)
	assert.Equal(t, 2, res.Period2.TasksCompleted)
	assert.Equal(t, 50.0, res.Comparison.HabitsChange)
	assert.Equal(t, 0.0, res.Comparison.TasksChange)
	assert.True(t, res.Comparison.TasksNew)
	assert.False(t, res.Comparison.HabitsNew)
}

func TestComparePeriods_AgainstItself(t *testing.T) {
	series := []HabitSeries{habit(t, 1, "Read", "2026-01-01", consecutive(t, "2026-01-01", 20)...)}
	tasks := []TaskRecord{{ID: 1, Day: day(t, "2026-01-03"), Completed: true, CompletedOn: day(t, "2026-01-03")}}
	jan, err := ParsePeriod("2026-01")
	require.NoError(t, err)

	res := ComparePeriods(series, tasks, jan, jan)

	assert.Equal(t, res.Period1, res.Period2)
	assert.Zero(t, res.Comparison.HabitsChange)
	assert.Zero(t, res.Comparison.TasksChange)
}
