package analytics

import (
	"math"
	"sort"
	"time"
)

const (
	MethodPearson      = "pearson"
	MethodCoOccurrence = "co_occurrence"
)

type HabitCorrelation struct {
	HabitAID     int     `json:"habit_a_id"`
	HabitA       string  `json:"habit_a"`
	HabitBID     int     `json:"habit_b_id"`
	HabitB       string  `json:"habit_b"`
	Correlation  float64 `json:"correlation"`
	Method       string  `json:"method"`
	OverlapDays  int     `json:"overlap_days"`
	DaysTogether int     `json:"days_together"`
}

type CorrelationResult struct {
	Correlations []HabitCorrelation `json:"correlations"`
	// AnalysisPeriod is the window length in days.
	AnalysisPeriod    int    `json:"analysis_period"`
	InsufficientPairs int    `json:"insufficient_pairs"`
	Message           string `json:"message,omitempty"`
}

// Pearson returns the correlation coefficient of a and b.
// ok is false when the lengths differ, are shorter than 2, or either vector is constant.
func Pearson(a, b []float64) (r float64, ok bool) {
	n := len(a)
	if n < 2 || n != len(b) {
		return 0, false
	}
	var meanA, meanB float64
	for i := 0; i < n; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(n)
	meanB /= float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0, false
	}
	r = cov / math.Sqrt(varA*varB)
	return math.Max(-1, math.Min(1, r)), true
}

// Correlate compares every pair of habits over the trailing window ending today.
// Pairs whose shared history is shorter than minOverlap days, or that were never
// completed by either habit, are left out and counted as insufficient. When one of
// the vectors is constant the co-occurrence ratio (days both / days either) stands
// in for Pearson.
func Correlate(series []HabitSeries, today time.Time, windowDays, minOverlap int) CorrelationResult {
	res := CorrelationResult{Correlations: []HabitCorrelation{}, AnalysisPeriod: windowDays}
	if len(series) < 2 {
		res.Message = "Need at least 2 habits to analyze correlations"
		return res
	}

	windowStart := AddDays(today, -(windowDays - 1))
	for i := 0; i < len(series); i++ {
		for j := i + 1; j < len(series); j++ {
			c, ok := correlatePair(series[i], series[j], windowStart, today, minOverlap)
			if !ok {
				res.InsufficientPairs++
				continue
			}
			res.Correlations = append(res.Correlations, c)
		}
	}

	sort.SliceStable(res.Correlations, func(i, j int) bool {
		a, b := res.Correlations[i], res.Correlations[j]
		if ra, rb := math.Abs(a.Correlation), math.Abs(b.Correlation); ra != rb {
			return ra > rb
		}
		if a.HabitA != b.HabitA {
			return a.HabitA < b.HabitA
		}
		return a.HabitB < b.HabitB
	})
	if len(res.Correlations) == 0 {
		res.Message = "Not enough shared history to analyze correlations"
	}
	return res
}

func correlatePair(a, b HabitSeries, windowStart, today time.Time, minOverlap int) (HabitCorrelation, bool) {
	start := maxDay(windowStart, maxDay(a.Created, b.Created))
	days := DayRange(start, today)
	if len(days) < minOverlap {
		return HabitCorrelation{}, false
	}

	va := make([]float64, len(days))
	vb := make([]float64, len(days))
	both, either := 0, 0
	for i, d := range days {
		da, db := a.Done.Has(d), b.Done.Has(d)
		if da {
			va[i] = 1
		}
		if db {
			vb[i] = 1
		}
		if da && db {
			both++
		}
		if da || db {
			either++
		}
	}
	if either == 0 {
		return HabitCorrelation{}, false
	}

	c := HabitCorrelation{
		HabitAID:     a.ID,
		HabitA:       a.Name,
		HabitBID:     b.ID,
		HabitB:       b.Name,
		OverlapDays:  len(days),
		DaysTogether: both,
	}
	if r, ok := Pearson(va, vb); ok {
		c.Correlation, c.Method = round4(r), MethodPearson
	} else {
		c.Correlation, c.Method = round4(float64(both)/float64(either)), MethodCoOccurrence
	}
	return c, true
}

// TopCorrelations keeps pairs with |r| >= minStrength, at most n of them.
// The input must already be ranked.
func TopCorrelations(ranked []HabitCorrelation, n int, minStrength float64) []HabitCorrelation {
	out := make([]HabitCorrelation, 0, n)
	for _, c := range ranked {
		if len(out) >= n {
			break
		}
		if math.Abs(c.Correlation) >= minStrength {
			out = append(out, c)
		}
	}
	return out
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
