package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	contractsmq "lifesync/contracts/mq"
	"lifesync/internal/analytics"
	"lifesync/internal/repository"
	"lifesync/pkg/logger"
	"lifesync/pkg/metrics"
	"lifesync/pkg/mq"
)

const (
	actionMark   = "mark"
	actionUnmark = "unmark"
)

// HabitLogStore toggles completions. Both calls are idempotent and report
// whether a row actually changed.
type HabitLogStore interface {
	MarkComplete(ctx context.Context, userID, habitID int, day time.Time) (bool, error)
	Unmark(ctx context.Context, userID, habitID int, day time.Time) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type HabitLogHandler struct {
	store     HabitLogStore
	today     func() time.Time
	publisher EventPublisher
	logger    *zap.Logger
}

// NewHabitLogHandler builds the handler; publisher may be nil when MQ is disabled.
func NewHabitLogHandler(store HabitLogStore, today func() time.Time, publisher EventPublisher, logger *zap.Logger) *HabitLogHandler {
	return &HabitLogHandler{store: store, today: today, publisher: publisher, logger: logger}
}

// Mark handles PUT /habits/:id/logs/:date
func (h *HabitLogHandler) Mark(c *gin.Context) {
	h.toggle(c, actionMark, h.store.MarkComplete)
}

// Unmark handles DELETE /habits/:id/logs/:date
func (h *HabitLogHandler) Unmark(c *gin.Context) {
	h.toggle(c, actionUnmark, h.store.Unmark)
}

func (h *HabitLogHandler) toggle(c *gin.Context, action string, fn func(context.Context, int, int, time.Time) (bool, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	log := logger.WithTrace(c.Request.Context(), h.logger)

	habitID, err := strconv.Atoi(c.Param("id"))
	if err != nil || habitID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}
	day, err := analytics.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if day.After(h.today()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot log a future date"})
		return
	}

	changed, err := fn(c.Request.Context(), userID, habitID, day)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		log.Error("Habit log update failed",
			zap.String("action", action),
			zap.Int("habit_id", habitID),
			zap.Error(err),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable", "retryable": true})
		return
	}
	metrics.IncrementHabitLogMutation(action, changed)

	date := day.Format(analytics.DateLayout)
	if changed && h.publisher != nil {
		payload := contractsmq.HabitLogChangedPayload{
			UserID:        userID,
			HabitID:       habitID,
			CompletedDate: date,
			Action:        action,
		}
		if err := h.publisher.Publish(c.Request.Context(), mq.RoutingHabitLogChanged, payload); err != nil {
			log.Warn("Failed to publish habit log change", zap.Int("habit_id", habitID), zap.Error(err))
		}
	}

	log.Info("Habit log updated",
		zap.String("action", action),
		zap.Int("habit_id", habitID),
		zap.String("date", date),
		zap.Bool("changed", changed),
	)
	c.JSON(http.StatusOK, gin.H{
		"habit_id":  habitID,
		"date":      date,
		"completed": action == actionMark,
		"changed":   changed,
	})
}
