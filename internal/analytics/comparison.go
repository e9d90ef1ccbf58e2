package analytics

type PeriodCounts struct {
	Label           string `json:"label"`
	From            string `json:"from"`
	To              string `json:"to"`
	HabitsCompleted int    `json:"habits_completed"`
	TasksCompleted  int    `json:"tasks_completed"`
}

type Comparison struct {
	HabitsChange float64 `json:"habits_change"`
	TasksChange  float64 `json:"tasks_change"`
	// HabitsNew and TasksNew flag growth from a zero baseline, where the change is reported as 0.
	HabitsNew bool `json:"habits_new"`
	TasksNew  bool `json:"tasks_new"`
}

type ComparisonResult struct {
	Period1    PeriodCounts `json:"period1"`
	Period2    PeriodCounts `json:"period2"`
	Comparison Comparison   `json:"comparison"`
}

// PercentChange returns (after-before)/before*100 rounded to one decimal.
// A zero baseline yields 0 and isNew=true when after is positive.
func PercentChange(before, after int) (change float64, isNew bool) {
	if before == 0 {
		return 0, after > 0
	}
	return round1(float64(after-before) / float64(before) * 100), false
}

// CountPeriod counts habit log rows and tasks completed within p.
func CountPeriod(series []HabitSeries, tasks []TaskRecord, p Period) PeriodCounts {
	c := PeriodCounts{Label: p.Label, From: formatDay(p.From), To: formatDay(p.To)}
	for _, s := range series {
		c.HabitsCompleted += s.Done.CountIn(p.From, p.To)
	}
	for _, t := range tasks {
		if t.Completed && !t.CompletedOn.IsZero() && p.Contains(t.CompletedOn) {
			c.TasksCompleted++
		}
	}
	return c
}

// ComparePeriods reports period2 relative to period1.
func ComparePeriods(series []HabitSeries, tasks []TaskRecord, p1, p2 Period) ComparisonResult {
	res := ComparisonResult{
		Period1: CountPeriod(series, tasks, p1),
		Period2: CountPeriod(series, tasks, p2),
	}
	res.Comparison.HabitsChange, res.Comparison.HabitsNew = PercentChange(res.Period1.HabitsCompleted, res.Period2.HabitsCompleted)
	res.Comparison.TasksChange, res.Comparison.TasksNew = PercentChange(res.Period1.TasksCompleted, res.Period2.TasksCompleted)
	return res
}
