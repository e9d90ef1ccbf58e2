package analytics

import (
	"context"
	"time"
)

type ReportKind string

const (
	ReportWeekly  ReportKind = "weekly"
	ReportMonthly ReportKind = "monthly"

	reportTopCorrelations = 5
	reportMinCorrelation  = 0.3
	reportHeatmapDays     = 30
)

// ParseReportKind accepts weekly or monthly.
func ParseReportKind(s string) (ReportKind, error) {
	switch k := ReportKind(s); k {
	case ReportWeekly, ReportMonthly:
		return k, nil
	}
	return "", invalidParam("unknown report kind %q, want weekly or monthly", s)
}

// Days is the length of the trailing window a report covers.
func (k ReportKind) Days() int {
	if k == ReportMonthly {
		return 30
	}
	return 7
}

// Report bundles every aggregator over one trailing window.
type Report struct {
	Kind         ReportKind         `json:"kind"`
	OwnerID      int                `json:"owner_id"`
	GeneratedAt  time.Time          `json:"generated_at"`
	From         string             `json:"from"`
	To           string             `json:"to"`
	Stats        PeriodStats        `json:"stats"`
	Productivity ProductivityResult `json:"productivity"`
	Habits       StrengthResult     `json:"habits"`
	Correlations []HabitCorrelation `json:"correlations"`
	// Heatmap is only filled for monthly reports.
	Heatmap    *Heatmap         `json:"heatmap,omitempty"`
	Comparison ComparisonResult `json:"comparison"`
}

// BuildReport composes a report from already loaded data. series must cover the
// full habit history so streaks are not cut short.
func BuildReport(kind ReportKind, series []HabitSeries, tasks []TaskRecord, today time.Time, lookbackDays, minOverlap int) Report {
	n := kind.Days()
	current := TrailingPeriod(today, n)
	previous := Period{Label: "previous_" + current.Label, From: AddDays(current.From, -n), To: AddDays(current.From, -1)}

	r := Report{
		Kind:         kind,
		From:         formatDay(current.From),
		To:           formatDay(current.To),
		Stats:        BuildPeriodStats(kind, series, tasks, today),
		Productivity: ProductivityScores(series, tasks, current),
		Habits:       Strengths(series, today, lookbackDays),
		Comparison:   ComparePeriods(series, tasks, previous, current),
	}

	corr := Correlate(series, today, n, minOverlap)
	r.Correlations = TopCorrelations(corr.Correlations, reportTopCorrelations, reportMinCorrelation)

	if kind == ReportMonthly {
		hp := TrailingPeriod(today, reportHeatmapDays)
		hm := BuildHeatmap(series, hp.From, hp.To)
		r.Heatmap = &hm
	}
	return r
}

// Report loads the owner's history once and composes a weekly or monthly report.
func (s *Service) Report(ctx context.Context, ownerID int, kind ReportKind) (Report, error) {
	var r Report
	if _, err := ParseReportKind(string(kind)); err != nil {
		return r, err
	}
	err := s.observe(ctx, "report", ownerID, func(ctx context.Context) error {
		today := s.Today()
		windowStart := AddDays(today, -(2*kind.Days() - 1))
		var from time.Time
		if s.opts.LookbackDays > 0 {
			from = AddDays(today, -(s.opts.LookbackDays - 1))
			if windowStart.Before(from) {
				from = windowStart
			}
		}
		series, err := s.loadSeries(ctx, ownerID, from, today)
		if err != nil {
			return err
		}
		tasks, err := s.loadTasks(ctx, ownerID, windowStart, today)
		if err != nil {
			return err
		}
		r = BuildReport(kind, series, tasks, today, s.opts.LookbackDays, s.opts.MinOverlapDays)
		r.OwnerID = ownerID
		r.GeneratedAt = s.opts.Now().UTC()
		return nil
	})
	return r, err
}
