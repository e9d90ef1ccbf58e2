package analytics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"lifesync/internal/model"
	"lifesync/pkg/logger"
	"lifesync/pkg/metrics"
	"lifesync/pkg/otel"
)

// Store is the read side of the habit/task store. Every call is scoped by owner,
// habit IDs come from ActiveHabits of the same owner.
type Store interface {
	ActiveHabits(ctx context.Context, ownerID int) ([]model.Habit, error)
	CompletionDates(ctx context.Context, habitID int, from, to time.Time) ([]time.Time, error)
	Tasks(ctx context.Context, ownerID int, from, to time.Time) ([]model.Task, error)
}

type Options struct {
	Location        *time.Location
	LookbackDays    int
	CorrelationDays int
	MinOverlapDays  int
	TopCorrelations int
	// Now is overridden in tests.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.CorrelationDays <= 0 {
		o.CorrelationDays = 90
	}
	if o.MinOverlapDays <= 0 {
		o.MinOverlapDays = 7
	}
	if o.TopCorrelations <= 0 {
		o.TopCorrelations = 10
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Service computes derived metrics on demand. It holds no per-request state and
// is safe for concurrent use.
type Service struct {
	store  Store
	opts   Options
	logger *zap.Logger
}

func NewService(store Store, opts Options, logger *zap.Logger) *Service {
	return &Service{store: store, opts: opts.withDefaults(), logger: logger}
}

// Today is the current calendar day in the configured timezone.
func (s *Service) Today() time.Time {
	return DayOf(s.opts.Now(), s.opts.Location)
}

func (s *Service) Options() Options {
	return s.opts
}

// HabitStrengths scores every active habit. lookbackDays 0 covers full history.
func (s *Service) HabitStrengths(ctx context.Context, ownerID, lookbackDays int) (StrengthResult, error) {
	var res StrengthResult
	if lookbackDays < 0 || lookbackDays > maxPeriodDays {
		return res, invalidParam("lookback_days must be between 0 and %d", maxPeriodDays)
	}
	err := s.observe(ctx, "strength", ownerID, func(ctx context.Context) error {
		today := s.Today()
		var from time.Time
		if lookbackDays > 0 {
			from = AddDays(today, -(lookbackDays - 1))
		}
		series, err := s.loadSeries(ctx, ownerID, from, today)
		if err != nil {
			return err
		}
		res = Strengths(series, today, lookbackDays)
		return nil
	})
	return res, err
}

// Heatmap covers every day of year.
func (s *Service) Heatmap(ctx context.Context, ownerID, year int) (Heatmap, error) {
	var hm Heatmap
	if year < 1900 || year > 9999 {
		return hm, invalidParam("year %d out of range", year)
	}
	from, to := YearBounds(year)
	err := s.observe(ctx, "heatmap", ownerID, func(ctx context.Context) error {
		series, err := s.loadSeries(ctx, ownerID, from, to)
		if err != nil {
			return err
		}
		hm = BuildHeatmap(series, from, to)
		hm.Year = year
		return nil
	})
	return hm, err
}

// RecentHeatmap covers the trailing days ending today.
func (s *Service) RecentHeatmap(ctx context.Context, ownerID, days int) (Heatmap, error) {
	var hm Heatmap
	if days < 1 || days > 366 {
		return hm, invalidParam("days must be between 1 and 366")
	}
	p := TrailingPeriod(s.Today(), days)
	err := s.observe(ctx, "heatmap", ownerID, func(ctx context.Context) error {
		series, err := s.loadSeries(ctx, ownerID, p.From, p.To)
		if err != nil {
			return err
		}
		hm = BuildHeatmap(series, p.From, p.To)
		return nil
	})
	return hm, err
}

// Correlations ranks habit pairs over the trailing window; days 0 uses the configured default.
func (s *Service) Correlations(ctx context.Context, ownerID, days int) (CorrelationResult, error) {
	var res CorrelationResult
	if days == 0 {
		days = s.opts.CorrelationDays
	}
	if days < s.opts.MinOverlapDays || days > maxPeriodDays {
		return res, invalidParam("days must be between %d and %d", s.opts.MinOverlapDays, maxPeriodDays)
	}
	p := TrailingPeriod(s.Today(), days)
	err := s.observe(ctx, "correlation", ownerID, func(ctx context.Context) error {
		series, err := s.loadSeries(ctx, ownerID, p.From, p.To)
		if err != nil {
			return err
		}
		res = Correlate(series, p.To, days, s.opts.MinOverlapDays)
		return nil
	})
	return res, err
}

// ResolvePeriod resolves week|month|year around today.
func (s *Service) ResolvePeriod(keyword string) (Period, error) {
	return ResolvePeriod(keyword, s.Today())
}

// Productivity emits the daily score series over p.
func (s *Service) Productivity(ctx context.Context, ownerID int, p Period) (ProductivityResult, error) {
	var res ProductivityResult
	if p.Days() <= 0 || p.Days() > maxPeriodDays {
		return res, invalidParam("period must span 1 to %d days", maxPeriodDays)
	}
	err := s.observe(ctx, "productivity", ownerID, func(ctx context.Context) error {
		series, tasks, err := s.loadAll(ctx, ownerID, p.From, p.To)
		if err != nil {
			return err
		}
		res = ProductivityScores(series, tasks, p)
		return nil
	})
	return res, err
}

// DefaultComparison returns the previous and current calendar months.
func (s *Service) DefaultComparison() (Period, Period) {
	today := s.Today()
	current := MonthPeriod(today.Year(), today.Month())
	prev := AddDays(current.From, -1)
	return MonthPeriod(prev.Year(), prev.Month()), current
}

// Compare reports period2 relative to period1.
func (s *Service) Compare(ctx context.Context, ownerID int, p1, p2 Period) (ComparisonResult, error) {
	var res ComparisonResult
	for _, p := range []Period{p1, p2} {
		if p.Days() <= 0 || p.Days() > maxPeriodDays {
			return res, invalidParam("period %q must span 1 to %d days", p.Label, maxPeriodDays)
		}
	}
	from, to := p1.From, p1.To
	if p2.From.Before(from) {
		from = p2.From
	}
	if p2.To.After(to) {
		to = p2.To
	}
	err := s.observe(ctx, "comparison", ownerID, func(ctx context.Context) error {
		series, tasks, err := s.loadAll(ctx, ownerID, from, to)
		if err != nil {
			return err
		}
		res = ComparePeriods(series, tasks, p1, p2)
		return nil
	})
	return res, err
}

// Overview summarizes one day; the zero day means today.
func (s *Service) Overview(ctx context.Context, ownerID int, day time.Time) (Overview, error) {
	var res Overview
	if day.IsZero() {
		day = s.Today()
	}
	day = normalize(day)
	err := s.observe(ctx, "overview", ownerID, func(ctx context.Context) error {
		series, tasks, err := s.loadAll(ctx, ownerID, day, day)
		if err != nil {
			return err
		}
		res = DailyOverview(series, tasks, day)
		return nil
	})
	return res, err
}

func (s *Service) observe(ctx context.Context, aggregator string, ownerID int, fn func(ctx context.Context) error) error {
	ctx, span := otel.StartSpan(ctx, "analytics."+aggregator)
	span.SetAttributes(attribute.Int("owner_id", ownerID))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	took := time.Since(start)
	metrics.RecordAggregation(aggregator, err, took)

	log := logger.WithTrace(ctx, s.logger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("Aggregation failed",
			zap.String("aggregator", aggregator),
			zap.Int("owner_id", ownerID),
			zap.Duration("took", took),
			zap.Error(err),
		)
		return err
	}
	log.Debug("Aggregation computed",
		zap.String("aggregator", aggregator),
		zap.Int("owner_id", ownerID),
		zap.Duration("took", took),
	)
	return nil
}

// loadSeries reads active habits and their completions within [from, to].
// A zero from reaches back to the earliest habit creation.
func (s *Service) loadSeries(ctx context.Context, ownerID int, from, to time.Time) ([]HabitSeries, error) {
	habits, err := s.store.ActiveHabits(ctx, ownerID)
	if err != nil {
		return nil, storeFailure("list active habits", err)
	}
	if len(habits) == 0 {
		return nil, nil
	}

	if from.IsZero() {
		from = to
		for _, h := range habits {
			if d := DayOf(h.CreatedAt, s.opts.Location); d.Before(from) {
				from = d
			}
		}
	}

	series := make([]HabitSeries, 0, len(habits))
	for _, h := range habits {
		dates, err := s.store.CompletionDates(ctx, h.ID, from, to)
		if err != nil {
			return nil, storeFailure("load completion dates", err)
		}
		series = append(series, NewHabitSeries(h, dates, s.opts.Location))
	}
	sortSeries(series)
	return series, nil
}

func (s *Service) loadTasks(ctx context.Context, ownerID int, from, to time.Time) ([]TaskRecord, error) {
	tasks, err := s.store.Tasks(ctx, ownerID, from, to)
	if err != nil {
		return nil, storeFailure("list tasks", err)
	}
	out := make([]TaskRecord, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskRecord(t, s.opts.Location))
	}
	return out, nil
}

func (s *Service) loadAll(ctx context.Context, ownerID int, from, to time.Time) ([]HabitSeries, []TaskRecord, error) {
	series, err := s.loadSeries(ctx, ownerID, from, to)
	if err != nil {
		return nil, nil, err
	}
	tasks, err := s.loadTasks(ctx, ownerID, from, to)
	if err != nil {
		return nil, nil, err
	}
	return series, tasks, nil
}
