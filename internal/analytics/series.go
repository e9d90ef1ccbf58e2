package analytics

import (
	"sort"
	"time"

	"lifesync/internal/model"
)

// HabitSeries is one active habit with its completed days.
type HabitSeries struct {
	ID   int
	Name string
	// Created is the first day the habit could be logged.
	Created time.Time
	Done    DaySet
}

// EligibleOn reports whether the habit existed on day.
func (s HabitSeries) EligibleOn(day time.Time) bool {
	return !s.Created.After(day)
}

func NewHabitSeries(h model.Habit, completions []time.Time, loc *time.Location) HabitSeries {
	return HabitSeries{
		ID:      h.ID,
		Name:    h.Name,
		Created: DayOf(h.CreatedAt, loc),
		Done:    NewDaySet(completions),
	}
}

func sortSeries(series []HabitSeries) {
	sort.Slice(series, func(i, j int) bool { return series[i].ID < series[j].ID })
}

// TaskRecord is a task reduced to the days the aggregators care about.
type TaskRecord struct {
	ID int
	// Day is the due date, or the creation date for undated tasks.
	Day       time.Time
	Completed bool
	// CompletedOn is the zero time unless the task is completed.
	CompletedOn time.Time
}

func NewTaskRecord(t model.Task, loc *time.Location) TaskRecord {
	r := TaskRecord{ID: t.ID, Completed: t.IsCompleted}
	if t.DueDate != nil {
		r.Day = normalize(*t.DueDate)
	} else {
		r.Day = DayOf(t.CreatedAt, loc)
	}
	if t.IsCompleted && t.CompletedAt != nil {
		r.CompletedOn = DayOf(*t.CompletedAt, loc)
	}
	return r
}

// habitsOn returns how many habits were eligible on day and how many of those were completed.
func habitsOn(series []HabitSeries, day time.Time) (completed, total int) {
	for _, s := range series {
		if !s.EligibleOn(day) {
			continue
		}
		total++
		if s.Done.Has(day) {
			completed++
		}
	}
	return completed, total
}

// tasksOn returns how many tasks are attributed to day and how many of those are completed.
func tasksOn(tasks []TaskRecord, day time.Time) (completed, total int) {
	for _, t := range tasks {
		if !t.Day.Equal(day) {
			continue
		}
		total++
		if t.Completed {
			completed++
		}
	}
	return completed, total
}
