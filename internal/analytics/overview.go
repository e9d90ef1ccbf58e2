package analytics

import "time"

type Progress struct {
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"`
}

type Overview struct {
	Date    string   `json:"date"`
	Habits  Progress `json:"habits"`
	Tasks   Progress `json:"tasks"`
	Overall Progress `json:"overall"`
}

func newProgress(completed, total int) Progress {
	return Progress{Total: total, Completed: completed, Percentage: round1(percent(completed, total))}
}

// DailyOverview summarizes habits and tasks for a single day.
func DailyOverview(series []HabitSeries, tasks []TaskRecord, day time.Time) Overview {
	hc, ht := habitsOn(series, day)
	tc, tt := tasksOn(tasks, day)
	return Overview{
		Date:    formatDay(day),
		Habits:  newProgress(hc, ht),
		Tasks:   newProgress(tc, tt),
		Overall: newProgress(hc+tc, ht+tt),
	}
}
