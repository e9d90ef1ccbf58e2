package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifesync/internal/analytics"
)

const maxCorrelationLimit = 100

// AnalyticsService is the read API the handlers serve.
type AnalyticsService interface {
	Today() time.Time
	Options() analytics.Options
	HabitStrengths(ctx context.Context, ownerID, lookbackDays int) (analytics.StrengthResult, error)
	Heatmap(ctx context.Context, ownerID, year int) (analytics.Heatmap, error)
	RecentHeatmap(ctx context.Context, ownerID, days int) (analytics.Heatmap, error)
	Correlations(ctx context.Context, ownerID, days int) (analytics.CorrelationResult, error)
	ResolvePeriod(keyword string) (analytics.Period, error)
	Productivity(ctx context.Context, ownerID int, p analytics.Period) (analytics.ProductivityResult, error)
	DefaultComparison() (analytics.Period, analytics.Period)
	Compare(ctx context.Context, ownerID int, p1, p2 analytics.Period) (analytics.ComparisonResult, error)
	Overview(ctx context.Context, ownerID int, day time.Time) (analytics.Overview, error)
	PeriodStats(ctx context.Context, ownerID int, kind analytics.ReportKind) (analytics.PeriodStats, error)
}

type AnalyticsHandler struct {
	svc     AnalyticsService
	timeout time.Duration
	logger  *zap.Logger
}

func NewAnalyticsHandler(svc AnalyticsService, timeout time.Duration, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, timeout: timeout, logger: logger}
}

func (h *AnalyticsHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// Streaks handles GET /analytics/streaks
func (h *AnalyticsHandler) Streaks(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	lookback, err := queryInt(c, "lookback_days", h.svc.Options().LookbackDays)
	if err != nil {
		writeError(c, h.logger, "Streaks", err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()
	res, err := h.svc.HabitStrengths(ctx, userID, lookback)
	if err != nil {
		writeError(c, h.logger, "Streaks", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Heatmap handles GET /analytics/heatmap?year= or ?days=
func (h *AnalyticsHandler) Heatmap(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if c.Query("year") != "" && c.Query("days") != "" {
		writeError(c, h.logger, "Heatmap", invalid("year and days are mutually exclusive"))
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	var (
		res analytics.Heatmap
		err error
	)
	if c.Query("days") != "" {
		var days int
		if days, err = queryInt(c, "days", 0); err == nil {
			res, err = h.svc.RecentHeatmap(ctx, userID, days)
		}
	} else {
		var year int
		if year, err = queryInt(c, "year", h.svc.Today().Year()); err == nil {
			res, err = h.svc.Heatmap(ctx, userID, year)
		}
	}
	if err != nil {
		writeError(c, h.logger, "Heatmap", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Correlations handles GET /analytics/correlations
func (h *AnalyticsHandler) Correlations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	days, err := queryInt(c, "days", 0)
	if err != nil {
		writeError(c, h.logger, "Correlations", err)
		return
	}
	limit, err := queryInt(c, "limit", h.svc.Options().TopCorrelations)
	if err != nil {
		writeError(c, h.logger, "Correlations", err)
		return
	}
	if limit < 1 || limit > maxCorrelationLimit {
		writeError(c, h.logger, "Correlations", invalid("limit must be between 1 and %d", maxCorrelationLimit))
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()
	res, err := h.svc.Correlations(ctx, userID, days)
	if err != nil {
		writeError(c, h.logger, "Correlations", err)
		return
	}
	res.Correlations = analytics.TopCorrelations(res.Correlations, limit, 0)
	c.JSON(http.StatusOK, res)
}

// Productivity handles GET /analytics/productivity?period= or ?from=&to=
func (h *AnalyticsHandler) Productivity(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	p, err := h.productivityPeriod(c)
	if err != nil {
		writeError(c, h.logger, "Productivity", err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()
	res, err := h.svc.Productivity(ctx, userID, p)
	if err != nil {
		writeError(c, h.logger, "Productivity", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AnalyticsHandler) productivityPeriod(c *gin.Context) (analytics.Period, error) {
	from, to := c.Query("from"), c.Query("to")
	if from != "" || to != "" {
		if from == "" || to == "" || c.Query("period") != "" {
			return analytics.Period{}, invalid("from and to must be given together and without period")
		}
		return analytics.ParsePeriod(from + ".." + to)
	}

	period := c.DefaultQuery("period", analytics.PeriodWeek)
	switch strings.ToLower(period) {
	case analytics.PeriodWeek, analytics.PeriodMonth, analytics.PeriodYear:
		return h.svc.ResolvePeriod(period)
	}
	return analytics.ParsePeriod(period)
}

// Compare handles GET /analytics/compare?period1=&period2=
func (h *AnalyticsHandler) Compare(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	raw1, raw2 := c.Query("period1"), c.Query("period2")
	p1, p2 := h.svc.DefaultComparison()
	if raw1 != "" || raw2 != "" {
		if raw1 == "" || raw2 == "" {
			writeError(c, h.logger, "Compare", invalid("period1 and period2 must be given together"))
			return
		}
		var err error
		if p1, err = analytics.ParsePeriod(raw1); err != nil {
			writeError(c, h.logger, "Compare", err)
			return
		}
		if p2, err = analytics.ParsePeriod(raw2); err != nil {
			writeError(c, h.logger, "Compare", err)
			return
		}
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()
	res, err := h.svc.Compare(ctx, userID, p1, p2)
	if err != nil {
		writeError(c, h.logger, "Compare", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Overview handles GET /analytics/overview?date=
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var day time.Time
	if raw := c.Query("date"); raw != "" {
		var err error
		if day, err = analytics.ParseDate(raw); err != nil {
			writeError(c, h.logger, "Overview", err)
			return
		}
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()
	res, err := h.svc.Overview(ctx, userID, day)
	if err != nil {
		writeError(c, h.logger, "Overview", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Stats handles GET /analytics/stats/:period (weekly|monthly)
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	kind, err := analytics.ParseReportKind(c.Param("period"))
	if err != nil {
		writeError(c, h.logger, "Stats", err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()
	res, err := h.svc.PeriodStats(ctx, userID, kind)
	if err != nil {
		writeError(c, h.logger, "Stats", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid("%s must be an integer", key)
	}
	return n, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", analytics.ErrInvalidParameter, fmt.Sprintf(format, args...))
}
