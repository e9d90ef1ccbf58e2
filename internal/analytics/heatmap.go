package analytics

import (
	"math"
	"time"
)

type HeatmapDay struct {
	Date       string `json:"date"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Level      int    `json:"level"`
}

type Heatmap struct {
	Year int          `json:"year,omitempty"`
	From string       `json:"from"`
	To   string       `json:"to"`
	Days []HeatmapDay `json:"data"`
}

// HeatmapLevel maps a completion percentage to intensity 0-4:
// 0 -> 0, 1-25 -> 1, 26-50 -> 2, 51-75 -> 3, 76-100 -> 4.
func HeatmapLevel(percentage int) int {
	switch {
	case percentage <= 0:
		return 0
	case percentage <= 25:
		return 1
	case percentage <= 50:
		return 2
	case percentage <= 75:
		return 3
	default:
		return 4
	}
}

// BuildHeatmap emits one entry per day in [from, to], zero-filled where nothing was logged.
// A habit only counts toward a day's total once it has been created.
func BuildHeatmap(series []HabitSeries, from, to time.Time) Heatmap {
	days := DayRange(from, to)
	hm := Heatmap{From: formatDay(from), To: formatDay(to), Days: make([]HeatmapDay, 0, len(days))}
	for _, day := range days {
		completed, total := habitsOn(series, day)
		pct := int(math.Round(percent(completed, total)))
		hm.Days = append(hm.Days, HeatmapDay{
			Date:       formatDay(day),
			Completed:  completed,
			Total:      total,
			Percentage: pct,
			Level:      HeatmapLevel(pct),
		})
	}
	return hm
}

// YearBounds returns Jan 1 and Dec 31 of year.
func YearBounds(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}
