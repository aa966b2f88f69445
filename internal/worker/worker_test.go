package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/stride/internal/app"
	goalCommands "github.com/felixgeelhaar/stride/internal/goals/application/commands"
	goalQueries "github.com/felixgeelhaar/stride/internal/goals/application/queries"
	"github.com/felixgeelhaar/stride/pkg/config"
	"github.com/felixgeelhaar/stride/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorker(t *testing.T, cfg *config.Config) (*Worker, *app.Container) {
	t.Helper()
	cfg.AppEnv = "test"
	cfg.UserID = "local-user"
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "stride.db")
	c, err := app.NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return New(c), c
}

func completeOneOfTwo(t *testing.T, c *app.Container) {
	t.Helper()
	ctx := context.Background()
	created, err := c.CreateGoalHandler.Handle(ctx, goalCommands.CreateGoalCommand{
		UserID: "local-user",
		Title:  "Run a half marathon",
		Tasks: []goalCommands.NewTask{
			{Title: "Buy running shoes", EstimatedDuration: "1 hour"},
			{Title: "Run 10k", EstimatedDuration: "1 hour"},
		},
	})
	require.NoError(t, err)
	goal, err := c.GetGoalHandler.Handle(ctx, goalQueries.GetGoalQuery{UserID: "local-user", GoalID: created.GoalID})
	require.NoError(t, err)

	status := "completed"
	_, err = c.UpdateTaskHandler.Handle(ctx, goalCommands.UpdateTaskCommand{
		UserID: "local-user",
		GoalID: created.GoalID,
		TaskID: goal.Tasks[0].ID,
		Status: &status,
	})
	require.NoError(t, err)
}

func TestWorker_GenerateReflections(t *testing.T) {
	w, c := newTestWorker(t, &config.Config{})
	completeOneOfTwo(t, c)
	w.now = func() time.Time { return time.Now().Add(time.Minute) }

	require.NoError(t, w.GenerateReflections(context.Background()))

	saved, err := c.ReflectionRepo.FindByUserID(context.Background(), "local-user", 10)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, 50, saved[0].ProductivityScore)

	assert.Equal(t, int64(1), c.Metrics.GetCounter(observability.MetricReflectionsGenerated))
	assert.Equal(t, int64(1), c.Metrics.GetCounter(observability.MetricJobRuns, observability.T("job", jobReflections)))
	assert.Equal(t, int64(1), c.Metrics.TimingCount(observability.MetricJobDuration, observability.T("job", jobReflections)))
	assert.Zero(t, c.Metrics.GetCounter(observability.MetricJobErrors, observability.T("job", jobReflections)))
}

func TestWorker_CleanupWithNothingToDelete(t *testing.T) {
	w, c := newTestWorker(t, &config.Config{RetentionMonths: 6, OutboxRetentionDays: 14})

	require.NoError(t, w.Cleanup(context.Background()))

	assert.Equal(t, int64(1), c.Metrics.GetCounter(observability.MetricJobRuns, observability.T("job", jobCleanup)))
	assert.Zero(t, c.Metrics.GetCounter(observability.MetricReflectionsDeleted))
	assert.Zero(t, c.Metrics.GetCounter(observability.MetricOutboxDeleted))
}

func TestWorker_CleanupRemovesPublishedOutboxMessages(t *testing.T) {
	w, c := newTestWorker(t, &config.Config{OutboxRetentionDays: 1})
	completeOneOfTwo(t, c)
	require.NoError(t, c.OutboxProcessor.ProcessOnce(context.Background()))

	w.now = func() time.Time { return time.Now().AddDate(0, 0, 2) }
	require.NoError(t, w.Cleanup(context.Background()))

	assert.Positive(t, c.Metrics.GetCounter(observability.MetricOutboxDeleted))
}

func TestWorker_RecordOutboxStats(t *testing.T) {
	w, c := newTestWorker(t, &config.Config{})
	completeOneOfTwo(t, c)
	require.NoError(t, c.OutboxProcessor.ProcessOnce(context.Background()))

	w.RecordOutboxStats()

	snap := c.Metrics.Snapshot()
	assert.Contains(t, snap.Gauges, observability.MetricOutboxLagSeconds)
	assert.Positive(t, snap.Counters[observability.MetricOutboxPublished])
}

func TestWorker_Handler(t *testing.T) {
	w, _ := newTestWorker(t, &config.Config{})
	w.RecordOutboxStats()
	h := w.Handler()

	t.Run("healthz", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, false, body["running"])
	})

	t.Run("readyz", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "database")
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var snap observability.MetricsSnapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
		assert.Contains(t, snap.Gauges, observability.MetricOutboxLagSeconds)
	})
}

func TestWorker_RunSchedulesJobsUntilCancelled(t *testing.T) {
	w, c := newTestWorker(t, &config.Config{
		ReflectionInterval:  20 * time.Millisecond,
		OutboxStatsInterval: 20 * time.Millisecond,
		OutboxPollInterval:  time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return c.Metrics.GetCounter(observability.MetricJobRuns, observability.T("job", jobReflections)) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, c.OutboxProcessor.IsRunning, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.False(t, c.OutboxProcessor.IsRunning())
}
