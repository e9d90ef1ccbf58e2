package analytics

import "time"

const (
	habitScoreWeight = 0.6
	taskScoreWeight  = 0.4
)

type ProductivityPoint struct {
	Date        string  `json:"date"`
	Score       float64 `json:"score"`
	HabitsScore float64 `json:"habits_score"`
	TasksScore  float64 `json:"tasks_score"`
}

type ProductivityResult struct {
	Period       string              `json:"period"`
	From         string              `json:"from"`
	To           string              `json:"to"`
	Scores       []ProductivityPoint `json:"scores"`
	AverageScore float64             `json:"average_score"`
	BestDay      *ProductivityPoint  `json:"best_day"`
	WorstDay     *ProductivityPoint  `json:"worst_day"`
}

// CompositeScore blends the habit and task percentages for one day.
func CompositeScore(habitsScore, tasksScore float64) float64 {
	return round1(habitsScore*habitScoreWeight + tasksScore*taskScoreWeight)
}

// ProductivityScores emits one point per day of p, in order.
func ProductivityScores(series []HabitSeries, tasks []TaskRecord, p Period) ProductivityResult {
	days := DayRange(p.From, p.To)
	res := ProductivityResult{
		Period: p.Label,
		From:   formatDay(p.From),
		To:     formatDay(p.To),
		Scores: make([]ProductivityPoint, 0, len(days)),
	}

	var sum float64
	for _, day := range days {
		res.Scores = append(res.Scores, productivityOn(series, tasks, day))
		sum += res.Scores[len(res.Scores)-1].Score
	}
	if len(res.Scores) == 0 {
		return res
	}

	res.AverageScore = round1(sum / float64(len(res.Scores)))
	best, worst := 0, 0
	for i, pt := range res.Scores {
		if pt.Score > res.Scores[best].Score {
			best = i
		}
		if pt.Score < res.Scores[worst].Score {
			worst = i
		}
	}
	bp, wp := res.Scores[best], res.Scores[worst]
	res.BestDay, res.WorstDay = &bp, &wp
	return res
}

func productivityOn(series []HabitSeries, tasks []TaskRecord, day time.Time) ProductivityPoint {
	hc, ht := habitsOn(series, day)
	tc, tt := tasksOn(tasks, day)
	habits := round1(percent(hc, ht))
	taskScore := round1(percent(tc, tt))
	return ProductivityPoint{
		Date:        formatDay(day),
		Score:       CompositeScore(habits, taskScore),
		HabitsScore: habits,
		TasksScore:  taskScore,
	}
}
