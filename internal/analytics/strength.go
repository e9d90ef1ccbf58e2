package analytics

import (
	"math"
	"sort"
	"time"
)

const (
	// A current streak of a week and a best streak of two weeks earn full marks.
	currentStreakTarget = 7
	bestStreakTarget    = 14

	rateWeight    = 0.5
	currentWeight = 30
	bestWeight    = 20
)

type HabitStrength struct {
	HabitID          int    `json:"habit_id"`
	Name             string `json:"name"`
	CompletionRate   int    `json:"completion_rate"`
	CurrentStreak    int    `json:"current_streak"`
	BestStreak       int    `json:"best_streak"`
	ConsistencyScore int    `json:"consistency_score"`
}

type StrengthResult struct {
	Habits       []HabitStrength `json:"habits"`
	LookbackDays int             `json:"lookback_days"`
	Totals       StreakTotals    `json:"totals"`
}

type StreakTotals struct {
	CurrentStreak int `json:"total_current_streak"`
	BestStreak    int `json:"total_best_streak"`
}

// Strength scores one habit as of today. lookbackDays <= 0 means the habit's full history.
func Strength(s HabitSeries, today time.Time, lookbackDays int) HabitStrength {
	start := s.Created
	if lookbackDays > 0 {
		start = maxDay(start, AddDays(today, -(lookbackDays - 1)))
	}

	out := HabitStrength{HabitID: s.ID, Name: s.Name}

	elapsed := DaysBetween(start, today) + 1
	if elapsed <= 0 {
		return out
	}

	done := s.Done.Sorted(start, today)
	if len(done) == 0 {
		return out
	}

	out.CompletionRate = int(math.Round(math.Min(percent(len(done), elapsed), 100)))
	out.CurrentStreak = currentStreak(s.Done, start, today)
	out.BestStreak = longestRun(done)
	out.ConsistencyScore = ConsistencyScore(out.CompletionRate, out.CurrentStreak, out.BestStreak)
	return out
}

// currentStreak counts consecutive days ending today, or ending yesterday
// when today has not been logged yet.
func currentStreak(done DaySet, start, today time.Time) int {
	check := today
	if !done.Has(check) {
		check = AddDays(today, -1)
	}
	n := 0
	for !check.Before(start) && done.Has(check) {
		n++
		check = AddDays(check, -1)
	}
	return n
}

// longestRun expects ascending, de-duplicated days.
func longestRun(days []time.Time) int {
	if len(days) == 0 {
		return 0
	}
	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		if DaysBetween(days[i-1], days[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// ConsistencyScore blends completion rate with streak strength into [0, 100].
func ConsistencyScore(completionRate, current, best int) int {
	score := float64(completionRate)*rateWeight +
		math.Min(float64(current)/currentStreakTarget, 1)*currentWeight +
		math.Min(float64(best)/bestStreakTarget, 1)*bestWeight
	return int(math.Round(math.Max(0, math.Min(score, 100))))
}

// Strengths scores every habit, strongest first.
func Strengths(series []HabitSeries, today time.Time, lookbackDays int) StrengthResult {
	res := StrengthResult{Habits: make([]HabitStrength, 0, len(series)), LookbackDays: lookbackDays}
	for _, s := range series {
		h := Strength(s, today, lookbackDays)
		res.Totals.CurrentStreak += h.CurrentStreak
		res.Totals.BestStreak += h.BestStreak
		res.Habits = append(res.Habits, h)
	}
	sort.SliceStable(res.Habits, func(i, j int) bool {
		a, b := res.Habits[i], res.Habits[j]
		if a.ConsistencyScore != b.ConsistencyScore {
			return a.ConsistencyScore > b.ConsistencyScore
		}
		return a.Name < b.Name
	})
	return res
}
