package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"lifesync/internal/analytics"
	"lifesync/internal/handler"
	"lifesync/internal/model"
	"lifesync/pkg/util"
)

type emptyStore struct{}

func (emptyStore) ActiveHabits(context.Context, int) ([]model.Habit, error) { return nil, nil }

func (emptyStore) CompletionDates(context.Context, int, time.Time, time.Time) ([]time.Time, error) {
	return nil, nil
}

func (emptyStore) Tasks(context.Context, int, time.Time, time.Time) ([]model.Task, error) {
	return nil, nil
}

type noopLogs struct{}

func (noopLogs) MarkComplete(context.Context, int, int, time.Time) (bool, error) {
	return true, nil
}

func (noopLogs) Unmark(context.Context, int, int, time.Time) (bool, error) {
	return true, nil
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

const secret = "test-secret"

func newTestRouter(db Pinger, mqReady ReadinessCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := analytics.NewService(emptyStore{}, analytics.Options{}, zap.NewNop())
	return NewRouter(Deps{
		Analytics: handler.NewAnalyticsHandler(svc, time.Second, zap.NewNop()),
		HabitLogs: handler.NewHabitLogHandler(noopLogs{}, svc.Today, nil, zap.NewNop()),
		JWTSecret: secret,
		DB:        db,
		MQReady:   mqReady,
		Logger:    zap.NewNop(),
	})
}

func TestRouter_RequiresToken(t *testing.T) {
	r := newTestRouter(pinger{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analytics/streaks", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/analytics/streaks", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AuthenticatedRequest(t *testing.T) {
	r := newTestRouter(pinger{}, nil)
	token, err := util.GenerateJWT(3, secret, time.Hour)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/analytics/overview", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-1", w.Header().Get("X-Trace-ID"))
}

func TestRouter_Health(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(pinger{}, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	w = httptest.NewRecorder()
	newTestRouter(pinger{}, func() bool { return true }).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	newTestRouter(pinger{err: errors.New("down")}, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	newTestRouter(pinger{}, func() bool { return false }).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	newTestRouter(pinger{}, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
