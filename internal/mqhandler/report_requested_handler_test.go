package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "lifesync/contracts/mq"
	"lifesync/internal/analytics"
	"lifesync/pkg/mq"
	"lifesync/pkg/util"
)

type fakeReports struct {
	err   error
	calls int
}

func (f *fakeReports) Today() time.Time {
	return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
}

func (f *fakeReports) Report(_ context.Context, ownerID int, kind analytics.ReportKind) (analytics.Report, error) {
	f.calls++
	if f.err != nil {
		return analytics.Report{}, f.err
	}
	return analytics.Report{Kind: kind, OwnerID: ownerID, GeneratedAt: f.Today()}, nil
}

type fakePublisher struct {
	err  error
	sent []mqcontracts.ReportGeneratedPayload
	keys []string
}

func (f *fakePublisher) Publish(_ context.Context, routingKey string, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, routingKey)
	f.sent = append(f.sent, payload.(mqcontracts.ReportGeneratedPayload))
	return nil
}

type memDeduper struct{ seen map[string]bool }

func (d *memDeduper) AcquireOnce(_ context.Context, handler, key string) bool {
	k := handler + ":" + key
	if d.seen[k] {
		return false
	}
	d.seen[k] = true
	return true
}

func (d *memDeduper) Release(_ context.Context, handler, key string) {
	delete(d.seen, handler+":"+key)
}

type memCounter struct {
	counts map[string]int64
	err    error
}

func (c *memCounter) IncrementAndGet(_ context.Context, key string) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.counts[key]++
	return c.counts[key], nil
}

func (c *memCounter) Reset(_ context.Context, key string) error {
	delete(c.counts, key)
	return nil
}

type fixture struct {
	reports   *fakeReports
	publisher *fakePublisher
	deduper   *memDeduper
	counter   *memCounter
	handler   *ReportRequestedHandler
}

func newFixture() *fixture {
	f := &fixture{
		reports:   &fakeReports{},
		publisher: &fakePublisher{},
		deduper:   &memDeduper{seen: map[string]bool{}},
		counter:   &memCounter{counts: map[string]int64{}},
	}
	f.handler = NewReportRequestedHandler(f.reports, f.publisher, f.deduper, f.counter, zap.NewNop())
	return f
}

func payload(t *testing.T, p mqcontracts.ReportRequestedPayload) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	return raw
}

func TestReportRequested_PublishesReport(t *testing.T) {
	f := newFixture()

	err := f.handler.HandleReportRequested(context.Background(),
		payload(t, mqcontracts.ReportRequestedPayload{RequestID: "r-1", UserID: 4, Period: "weekly"}))

	require.NoError(t, err)
	require.Len(t, f.publisher.sent, 1)
	assert.Equal(t, "report.generated", f.publisher.keys[0])
	assert.Equal(t, "r-1", f.publisher.sent[0].RequestID)
	assert.Equal(t, 4, f.publisher.sent[0].UserID)
	assert.Equal(t, "weekly", f.publisher.sent[0].Period)
}

func TestReportRequested_SkipsDuplicates(t *testing.T) {
	f := newFixture()
	raw := payload(t, mqcontracts.ReportRequestedPayload{UserID: 4, Period: "monthly"})

	require.NoError(t, f.handler.HandleReportRequested(context.Background(), raw))
	require.NoError(t, f.handler.HandleReportRequested(context.Background(), raw))

	assert.Equal(t, 1, f.reports.calls)
	assert.Len(t, f.publisher.sent, 1)
	assert.True(t, f.deduper.seen["report:4:monthly:2026-10-15"])
}

func TestReportRequested_InvalidPayloadIsPermanent(t *testing.T) {
	f := newFixture()

	for _, raw := range []json.RawMessage{
		json.RawMessage(`{not json`),
		payload(t, mqcontracts.ReportRequestedPayload{UserID: 4, Period: "daily"}),
		payload(t, mqcontracts.ReportRequestedPayload{UserID: 0, Period: "weekly"}),
	} {
		err := f.handler.HandleReportRequested(context.Background(), raw)
		require.Error(t, err)
		retryable, _ := util.IsRetryableError(err)
		assert.False(t, retryable, string(raw))
	}
	assert.Zero(t, f.reports.calls)
}

func TestReportRequested_RetriesThenGivesUp(t *testing.T) {
	f := newFixture()
	f.reports.err = fmt.Errorf("%w: list active habits: %w", analytics.ErrStoreUnavailable, errors.New("pool closed"))
	raw := payload(t, mqcontracts.ReportRequestedPayload{RequestID: "r-2", UserID: 4, Period: "weekly"})

	for attempt := 1; attempt <= defaultMaxRetries; attempt++ {
		err := f.handler.HandleReportRequested(context.Background(), raw)
		require.Error(t, err)
		retryable, _ := util.IsRetryableError(err)
		assert.True(t, retryable, "attempt %d", attempt)
	}

	err := f.handler.HandleReportRequested(context.Background(), raw)
	require.Error(t, err)
	retryable, _ := util.IsRetryableError(err)
	assert.False(t, retryable)
	assert.ErrorIs(t, err, analytics.ErrStoreUnavailable)
	assert.Equal(t, defaultMaxRetries+1, f.reports.calls)
	assert.Empty(t, f.publisher.sent)
}

func TestReportRequested_PublishFailureReleasesKey(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("channel/connection is not open")
	raw := payload(t, mqcontracts.ReportRequestedPayload{RequestID: "r-3", UserID: 4, Period: "weekly"})

	err := f.handler.HandleReportRequested(context.Background(), raw)
	require.Error(t, err)
	retryable, _ := util.IsRetryableError(err)
	assert.True(t, retryable)
	assert.False(t, f.deduper.seen["report:r-3"])

	f.publisher.err = nil
	require.NoError(t, f.handler.HandleReportRequested(context.Background(), raw))
	assert.Len(t, f.publisher.sent, 1)
	assert.Empty(t, f.counter.counts)
}

func TestReportRequested_CounterDownBoundsRetries(t *testing.T) {
	f := newFixture()
	f.counter.err = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
	f.reports.err = fmt.Errorf("%w: list active habits: %w", analytics.ErrStoreUnavailable, errors.New("connection refused"))
	raw := payload(t, mqcontracts.ReportRequestedPayload{RequestID: "r-4", UserID: 4, Period: "weekly"})

	err := f.handler.HandleReportRequested(context.Background(), raw)
	require.Error(t, err)
	retryable, _ := util.IsRetryableError(err)
	assert.True(t, retryable, "first delivery is retried")

	err = f.handler.HandleReportRequested(mq.WithRedelivered(context.Background(), true), raw)
	require.Error(t, err)
	retryable, _ = util.IsRetryableError(err)
	assert.False(t, retryable, "a redelivered message is dead-lettered")
	assert.ErrorIs(t, err, analytics.ErrStoreUnavailable)
}

func TestReportRequested_CounterDownKeepsPermanentErrors(t *testing.T) {
	f := newFixture()
	f.counter.err = errors.New("redis: connection pool timeout")
	f.reports.err = errors.New("report template missing")
	raw := payload(t, mqcontracts.ReportRequestedPayload{RequestID: "r-5", UserID: 4, Period: "weekly"})

	err := f.handler.HandleReportRequested(context.Background(), raw)
	require.Error(t, err)
	retryable, _ := util.IsRetryableError(err)
	assert.False(t, retryable)
}
