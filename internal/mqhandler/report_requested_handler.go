package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	mqcontracts "lifesync/contracts/mq"
	"lifesync/internal/analytics"
	"lifesync/pkg/logger"
	"lifesync/pkg/metrics"
	"lifesync/pkg/mq"
	"lifesync/pkg/util"
)

const (
	handlerName       = "report"
	defaultMaxRetries = 3
)

type ReportBuilder interface {
	Today() time.Time
	Report(ctx context.Context, ownerID int, kind analytics.ReportKind) (analytics.Report, error)
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type Deduper interface {
	AcquireOnce(ctx context.Context, handler string, key string) bool
	Release(ctx context.Context, handler string, key string)
}

type RetryCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

type ReportRequestedHandler struct {
	reports    ReportBuilder
	publisher  Publisher
	deduper    Deduper
	retries    RetryCounter
	maxRetries int64
	logger     *zap.Logger
}

func NewReportRequestedHandler(
	reports ReportBuilder,
	publisher Publisher,
	deduper Deduper,
	retries RetryCounter,
	logger *zap.Logger,
) *ReportRequestedHandler {
	return &ReportRequestedHandler{
		reports:    reports,
		publisher:  publisher,
		deduper:    deduper,
		retries:    retries,
		maxRetries: defaultMaxRetries,
		logger:     logger,
	}
}

// HandleReportRequested composes the requested report and publishes report.generated.
// Duplicate deliveries of the same request are skipped; failures are retried up to
// maxRetries times before the message is dead-lettered.
func (h *ReportRequestedHandler) HandleReportRequested(ctx context.Context, raw json.RawMessage) error {
	log := logger.WithTrace(ctx, h.logger)

	var p mqcontracts.ReportRequestedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error("Failed to unmarshal report requested payload (non-retryable)", zap.Error(err))
		return fmt.Errorf("%w: decode payload: %w", util.ErrPermanent, err)
	}
	kind, err := analytics.ParseReportKind(p.Period)
	if err != nil || p.UserID <= 0 {
		log.Error("Invalid report request (non-retryable)",
			zap.Int("user_id", p.UserID),
			zap.String("period", p.Period),
		)
		metrics.IncrementReportGenerated(p.Period, "failed")
		return fmt.Errorf("%w: invalid report request for user %d period %q", util.ErrPermanent, p.UserID, p.Period)
	}

	key := p.RequestID
	if key == "" {
		key = strconv.Itoa(p.UserID) + ":" + string(kind) + ":" + h.reports.Today().Format(analytics.DateLayout)
	}
	log = log.With(zap.Int("user_id", p.UserID), zap.String("period", string(kind)), zap.String("request_id", key))

	// Redis 去重
	if !h.deduper.AcquireOnce(ctx, handlerName, key) {
		log.Info("Duplicate report request skipped")
		metrics.IncrementReportGenerated(string(kind), "duplicate")
		return nil
	}

	report, err := h.reports.Report(ctx, p.UserID, kind)
	if err == nil {
		err = h.publisher.Publish(ctx, mq.RoutingReportGenerated, mqcontracts.ReportGeneratedPayload{
			RequestID:   p.RequestID,
			UserID:      p.UserID,
			Period:      string(kind),
			GeneratedAt: report.GeneratedAt,
			Report:      report,
		})
	}
	if err != nil {
		// 失败后释放去重标记，允许重新投递的消息再次处理
		h.deduper.Release(ctx, handlerName, key)
		return h.retryOrGiveUp(ctx, log, kind, key, err)
	}

	if err := h.retries.Reset(ctx, util.FormatRetryKey(handlerName, key)); err != nil {
		log.Warn("Failed to reset retry counter", zap.Error(err))
	}
	metrics.IncrementReportGenerated(string(kind), "success")
	log.Info("Report generated", zap.Time("generated_at", report.GeneratedAt))
	return nil
}

func (h *ReportRequestedHandler) retryOrGiveUp(ctx context.Context, log *zap.Logger, kind analytics.ReportKind, key string, cause error) error {
	if errors.Is(cause, analytics.ErrInvalidParameter) {
		metrics.IncrementReportGenerated(string(kind), "failed")
		return fmt.Errorf("%w: %w", util.ErrPermanent, cause)
	}

	retryable, errType := util.IsRetryableError(cause)
	if errors.Is(cause, analytics.ErrStoreUnavailable) {
		retryable = true
	}

	count, err := h.retries.IncrementAndGet(ctx, util.FormatRetryKey(handlerName, key))
	if err != nil {
		// 计数器不可用时退化为 broker 的 redelivered 标记：最多重投一次
		log.Warn("Retry counter unavailable", zap.Error(err))
		count = 1
		if mq.Redelivered(ctx) {
			count = h.maxRetries + 1
		}
	}

	if !util.ShouldRetry(count, h.maxRetries, retryable) {
		log.Error("Report generation failed, giving up",
			zap.Int64("attempts", count),
			zap.String("error_type", errType),
			zap.Error(cause),
		)
		metrics.IncrementReportGenerated(string(kind), "failed")
		return fmt.Errorf("%w: after %d attempts: %w", util.ErrPermanent, count, cause)
	}

	log.Warn("Report generation failed, will retry",
		zap.Int64("attempt", count),
		zap.String("error_type", errType),
		zap.Error(cause),
	)
	return fmt.Errorf("%w: %w", util.ErrRetryable, cause)
}
