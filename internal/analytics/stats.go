package analytics

import (
	"context"
	"fmt"
	"math"
	"time"
)

// 月报图表按 7 天分桶，最后一个桶可能不足 7 天
const statsBucketDays = 7

// StatsBucket is one bar of the period chart: a day for weekly stats, a week for monthly.
type StatsBucket struct {
	Label       string `json:"label"`
	From        string `json:"from"`
	To          string `json:"to"`
	Completions int    `json:"completions"`
	// Percentage is completions over habits × bucket days, capped at 100.
	Percentage int `json:"percentage"`
}

type HabitBreakdown struct {
	HabitID     int    `json:"habit_id"`
	Name        string `json:"name"`
	Completions int    `json:"completions"`
	OutOf       int    `json:"out_of"`
}

// PeriodStats is the headline of a weekly or monthly report.
type PeriodStats struct {
	Kind             ReportKind `json:"period"`
	From             string     `json:"from"`
	To               string     `json:"to"`
	TotalHabits      int        `json:"total_habits"`
	HabitCompletions int        `json:"habit_completions"`
	// CompletionPercentage is HabitCompletions over habits × days, one decimal.
	CompletionPercentage float64          `json:"completion_percentage"`
	Consistency          int              `json:"consistency"`
	TasksCompleted       int              `json:"tasks_completed"`
	TasksTotal           int              `json:"tasks_total"`
	Breakdown            []StatsBucket    `json:"breakdown"`
	Habits               []HabitBreakdown `json:"habits_breakdown"`
}

// BuildPeriodStats summarizes the trailing kind.Days() days ending today.
// Every active habit counts for the whole window; tasks count by their attributed day.
func BuildPeriodStats(kind ReportKind, series []HabitSeries, tasks []TaskRecord, today time.Time) PeriodStats {
	n := kind.Days()
	p := TrailingPeriod(today, n)

	st := PeriodStats{
		Kind:        kind,
		From:        formatDay(p.From),
		To:          formatDay(p.To),
		TotalHabits: len(series),
		Habits:      make([]HabitBreakdown, 0, len(series)),
	}

	for _, s := range series {
		c := s.Done.CountIn(p.From, p.To)
		st.HabitCompletions += c
		st.Habits = append(st.Habits, HabitBreakdown{HabitID: s.ID, Name: s.Name, Completions: c, OutOf: n})
	}
	if st.TotalHabits > 0 {
		pct := math.Min(percent(st.HabitCompletions, st.TotalHabits*n), 100)
		st.CompletionPercentage = round1(pct)
		st.Consistency = int(math.Round(pct))
	}

	for _, t := range tasks {
		if !inRange(t.Day, p.From, p.To) {
			continue
		}
		st.TasksTotal++
		if t.Completed {
			st.TasksCompleted++
		}
	}

	if kind == ReportWeekly {
		st.Breakdown = dailyBuckets(series, p)
	} else {
		st.Breakdown = weeklyBuckets(series, p)
	}
	return st
}

func dailyBuckets(series []HabitSeries, p Period) []StatsBucket {
	out := make([]StatsBucket, 0, p.Days())
	for _, d := range DayRange(p.From, p.To) {
		out = append(out, bucket(series, d.Format("Mon"), d, d))
	}
	return out
}

func weeklyBuckets(series []HabitSeries, p Period) []StatsBucket {
	var out []StatsBucket
	for from, i := p.From, 1; !from.After(p.To); from, i = AddDays(from, statsBucketDays), i+1 {
		to := AddDays(from, statsBucketDays-1)
		if to.After(p.To) {
			to = p.To
		}
		out = append(out, bucket(series, fmt.Sprintf("Week %d", i), from, to))
	}
	return out
}

func bucket(series []HabitSeries, label string, from, to time.Time) StatsBucket {
	b := StatsBucket{Label: label, From: formatDay(from), To: formatDay(to)}
	for _, s := range series {
		b.Completions += s.Done.CountIn(from, to)
	}
	if len(series) > 0 {
		days := DaysBetween(from, to) + 1
		b.Percentage = int(math.Round(math.Min(percent(b.Completions, len(series)*days), 100)))
	}
	return b
}

// PeriodStats loads the trailing window of kind and summarizes it.
func (s *Service) PeriodStats(ctx context.Context, ownerID int, kind ReportKind) (PeriodStats, error) {
	var st PeriodStats
	if _, err := ParseReportKind(string(kind)); err != nil {
		return st, err
	}
	err := s.observe(ctx, "stats", ownerID, func(ctx context.Context) error {
		today := s.Today()
		p := TrailingPeriod(today, kind.Days())
		series, tasks, err := s.loadAll(ctx, ownerID, p.From, p.To)
		if err != nil {
			return err
		}
		st = BuildPeriodStats(kind, series, tasks, today)
		return nil
	})
	return st, err
}
