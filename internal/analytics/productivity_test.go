package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifesync/internal/model"
)

func TestCompositeScore(t *testing.T) {
	assert.Equal(t, 80.0, CompositeScore(100, 50))
	assert.Equal(t, 0.0, CompositeScore(0, 0))
	assert.Equal(t, 100.0, CompositeScore(100, 100))
	assert.Equal(t, 33.3, CompositeScore(33.3, 33.3))
}

func TestProductivityScores(t *testing.T) {
	series := []HabitSeries{habit(t, 1, "Read", "2026-06-01", "2026-06-01", "2026-06-03")}
	tasks := []TaskRecord{
		{ID: 1, Day: day(t, "2026-06-01"), Completed: true, CompletedOn: day(t, "2026-06-01")},
		{ID: 2, Day: day(t, "2026-06-01")},
	}
	p, err := ParsePeriod("2026-06-01..2026-06-03")
	require.NoError(t, err)

	res := ProductivityScores(series, tasks, p)

	require.Len(t, res.Scores, 3)
	assert.Equal(t, ProductivityPoint{Date: "2026-06-01", Score: 80, HabitsScore: 100, TasksScore: 50}, res.Scores[0])
	assert.Equal(t, 0.0, res.Scores[1].Score)
	assert.Equal(t, 60.0, res.Scores[2].Score)
	assert.Equal(t, 46.7, res.AverageScore)
	require.NotNil(t, res.BestDay)
	assert.Equal(t, "2026-06-01", res.BestDay.Date)
	require.NotNil(t, res.WorstDay)
	assert.Equal(t, "2026-06-02", res.WorstDay.Date)
}

func TestProductivityScores_NoData(t *testing.T) {
	p, err := ParsePeriod("2026-06")
	require.NoError(t, err)

	res := ProductivityScores(nil, nil, p)

	assert.Len(t, res.Scores, 30)
	assert.Zero(t, res.AverageScore)
	for _, pt := range res.Scores {
		assert.Zero(t, pt.Score)
	}
}

func TestNewTaskRecord(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	created := time.Date(2026, 6, 1, 23, 30, 0, 0, time.UTC)
	due := time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC)
	done := time.Date(2026, 6, 4, 22, 15, 0, 0, time.UTC)

	undated := NewTaskRecord(model.Task{ID: 1, CreatedAt: created}, loc)
	assert.Equal(t, day(t, "2026-06-02"), undated.Day)
	assert.True(t, undated.CompletedOn.IsZero())

	dated := NewTaskRecord(model.Task{ID: 2, CreatedAt: created, DueDate: &due, IsCompleted: true, CompletedAt: &done}, loc)
	assert.Equal(t, day(t, "2026-06-05"), dated.Day)
	assert.Equal(t, day(t, "2026-06-05"), dated.CompletedOn)
}
