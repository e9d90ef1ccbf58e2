package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newTestBreaker(clock *time.Time, transitions *[]string) *CircuitBreaker {
	cb := New(Config{
		FailureThreshold:    2,
		SuccessThreshold:    2,
		OpenTimeout:         time.Minute,
		HalfOpenMaxRequests: 1,
		OnStateChange: func(from, to State) {
			*transitions = append(*transitions, from.String()+"->"+to.String())
		},
	})
	cb.now = func() time.Time { return *clock }
	return cb
}

func fail() error    { return errBoom }
func succeed() error { return nil }

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	clock := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	var transitions []string
	cb := newTestBreaker(&clock, &transitions)

	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	require.NoError(t, cb.Execute(succeed))
	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, StateClosed, cb.State(), "a success resets the failure count")

	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	clock := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	var transitions []string
	cb := newTestBreaker(&clock, &transitions)
	_ = cb.Execute(fail)
	_ = cb.Execute(fail)
	require.Equal(t, StateOpen, cb.State())

	clock = clock.Add(time.Minute)
	require.NoError(t, cb.Execute(succeed))
	assert.Equal(t, StateHalfOpen, cb.State())
	require.NoError(t, cb.Execute(succeed))
	assert.Equal(t, StateClosed, cb.State())

	assert.Equal(t, []string{"closed->open", "open->half_open", "half_open->closed"}, transitions)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	var transitions []string
	cb := newTestBreaker(&clock, &transitions)
	_ = cb.Execute(fail)
	_ = cb.Execute(fail)

	clock = clock.Add(2 * time.Minute)
	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Execute(succeed), ErrOpen)
}

func TestCircuitBreaker_HalfOpenLimitsConcurrentProbes(t *testing.T) {
	clock := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	var transitions []string
	cb := newTestBreaker(&clock, &transitions)
	_ = cb.Execute(fail)
	_ = cb.Execute(fail)
	clock = clock.Add(time.Minute)

	err := cb.Execute(func() error {
		// 第一个探测请求尚未返回，第二个应被拒绝
		return cb.Execute(succeed)
	})
	assert.ErrorIs(t, err, ErrOpen)
}

func TestCircuitBreaker_CancellationIsNotAFailure(t *testing.T) {
	clock := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	var transitions []string
	cb := newTestBreaker(&clock, &transitions)

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return context.Canceled }), context.Canceled)
	}
	assert.Equal(t, StateClosed, cb.State())
	assert.Empty(t, transitions)
}

func TestCircuitBreaker_Reset(t *testing.T) {
	clock := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	var transitions []string
	cb := newTestBreaker(&clock, &transitions)
	_ = cb.Execute(fail)
	_ = cb.Execute(fail)

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
	assert.NoError(t, cb.Execute(succeed))
}
