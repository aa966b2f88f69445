package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/stride/internal/app"
	breakdownCommands "github.com/felixgeelhaar/stride/internal/breakdown/application/commands"
	breakdownDomain "github.com/felixgeelhaar/stride/internal/breakdown/domain"
	goalDomain "github.com/felixgeelhaar/stride/internal/goals/domain"
	intelligenceDomain "github.com/felixgeelhaar/stride/internal/intelligence/domain"
	reflectionsDomain "github.com/felixgeelhaar/stride/internal/reflections/domain"
	"github.com/felixgeelhaar/stride/pkg/config"
	"github.com/felixgeelhaar/stride/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	breakdown *breakdownDomain.GoalBreakdown
	err       error
}

func (s *stubGenerator) Breakdown(_ context.Context, _, _ string) (*breakdownDomain.GoalBreakdown, error) {
	return s.breakdown, s.err
}

func newTestServer(t *testing.T, gen breakdownDomain.Generator) (http.Handler, *app.Container) {
	t.Helper()
	cfg := &config.Config{
		AppEnv:      "test",
		UserID:      "local-user",
		DatabaseURL: filepath.Join(t.TempDir(), "api.db"),
	}
	c, err := app.NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	if gen != nil {
		c.BreakdownGoalHandler = breakdownCommands.NewBreakdownGoalHandler(gen, c.CreateGoalHandler, c.Logger)
	}

	srvCfg := DefaultServerConfig()
	srvCfg.DefaultUserID = cfg.UserID
	return NewServerFromContainer(srvCfg, c).Handler(), c
}

func do(t *testing.T, h http.Handler, method, path string, body any, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set(UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func createGoal(t *testing.T, h http.Handler, userID string) (string, []any) {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/goals", map[string]any{
		"title":    "Learn Go",
		"category": "learning",
		"priority": "high",
		"tasks": []map[string]any{
			{"title": "Read the tour", "estimatedDuration": "2 hours", "priority": "high", "order": 1},
			{"title": "Write a CLI", "estimatedDuration": "1 day", "priority": "medium", "order": 2},
		},
	}, userID)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	goalID := decode(t, rec)["goalId"].(string)

	rec = do(t, h, http.MethodGet, "/api/v1/goals/"+goalID, nil, userID)
	require.Equal(t, http.StatusOK, rec.Code)
	return goalID, decode(t, rec)["tasks"].([]any)
}

func TestServer_Health(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestServer_RecordsRequestMetrics(t *testing.T) {
	h, c := newTestServer(t, nil)

	do(t, h, http.MethodGet, "/health", nil, "")
	do(t, h, http.MethodGet, "/health", nil, "")

	assert.Equal(t, int64(2), c.Metrics.GetCounter(observability.MetricHTTPRequests,
		observability.T("method", http.MethodGet),
		observability.T("route", "GET /health"),
		observability.T("status", "200"),
	))
}

func TestServer_GoalLifecycle(t *testing.T) {
	h, _ := newTestServer(t, nil)

	goalID, tasks := createGoal(t, h, "")
	require.Len(t, tasks, 2)
	taskID := tasks[0].(map[string]any)["id"].(string)

	rec := do(t, h, http.MethodGet, "/api/v1/goals", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["goals"], 1)

	status := "in-progress"
	rec = do(t, h, http.MethodPatch, "/api/v1/goals/"+goalID, map[string]any{"status": status}, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodPatch, fmt.Sprintf("/api/v1/goals/%s/tasks/%s", goalID, taskID),
		map[string]any{"status": "completed", "actualDuration": "3 hours"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, float64(50), body["completionPercentage"])
	assert.Equal(t, true, body["completed"])

	rec = do(t, h, http.MethodGet, "/api/v1/goals/"+goalID+"/priorities", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["priorities"], 1, "completed tasks are not ranked")

	rec = do(t, h, http.MethodDelete, "/api/v1/goals/"+goalID, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/goals/"+goalID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_GoalsAreScopedToUser(t *testing.T) {
	h, _ := newTestServer(t, nil)
	goalID, _ := createGoal(t, h, "alice")

	rec := do(t, h, http.MethodGet, "/api/v1/goals/"+goalID, nil, "bob")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/goals", nil, "bob")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["goals"])
}

func TestServer_BadRequests(t *testing.T) {
	h, _ := newTestServer(t, nil)

	t.Run("invalid goal id", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/goals/not-a-uuid", nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty title", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/goals", map[string]any{"title": ""}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/insights", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing task for priority", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/ai/calculate-priority", map[string]any{}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid reflection limit", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/reflections?limit=abc", nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_CalculatePriority(t *testing.T) {
	h, _ := newTestServer(t, nil)

	task := map[string]any{"id": "t1", "title": "Fix login bug", "status": "pending", "priority": "high", "estimatedDuration": "1 hour"}
	rec := do(t, h, http.MethodPost, "/api/v1/ai/calculate-priority", map[string]any{
		"task":            task,
		"goal":            map[string]any{"id": "g1", "title": "Ship", "priority": "high", "tasks": []any{task}},
		"userPreferences": map[string]any{"userId": "local-user"},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	score := decode(t, rec)["priorityScore"].(map[string]any)
	assert.Equal(t, "t1", score["taskId"])
	value := score["score"].(float64)
	assert.GreaterOrEqual(t, value, float64(0))
	assert.LessOrEqual(t, value, float64(100))
	assert.NotEmpty(t, score["recommendation"])
}

func TestServer_CompletionUpdatesPreferences(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/api/v1/ai/completions", map[string]any{
		"taskId":            "t1",
		"category":          "work",
		"taskType":          "coding",
		"estimatedDuration": 60,
		"actualDuration":    90,
		"completedAt":       "2026-03-02T10:00:00Z",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/preferences", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	prefs := decode(t, rec)["preferences"].(map[string]any)
	assert.Equal(t, "local-user", prefs["userId"])
}

func TestServer_Insights(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/api/v1/ai/insights", map[string]any{"goals": []any{}}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, decode(t, rec), "insights")
}

func TestServer_Motivation(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/api/v1/ai/motivation", map[string]any{"streakDays": 10}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10-day streak! You're unstoppable!", decode(t, rec)["message"])
}

func TestServer_BreakdownGoal(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		h, _ := newTestServer(t, nil)
		rec := do(t, h, http.MethodPost, "/api/v1/ai/breakdown-goal", map[string]any{"goal": "Learn Go"}, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("persists generated goal", func(t *testing.T) {
		gen := &stubGenerator{breakdown: &breakdownDomain.GoalBreakdown{
			Goal: breakdownDomain.GoalOutline{Title: "Learn Go", Category: "learning"},
			Tasks: []breakdownDomain.TaskOutline{
				{Title: "Read the tour", Priority: "High", Order: 1},
			},
		}}
		h, _ := newTestServer(t, gen)

		rec := do(t, h, http.MethodPost, "/api/v1/ai/breakdown-goal", map[string]any{"goal": "Learn Go", "persist": true}, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decode(t, rec)
		assert.Contains(t, body, "breakdown")
		goalID := body["goalId"].(string)

		rec = do(t, h, http.MethodGet, "/api/v1/goals/"+goalID, nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decode(t, rec)["aiGenerated"])
	})

	t.Run("upstream failure", func(t *testing.T) {
		gen := &stubGenerator{err: fmt.Errorf("%w: status=500", breakdownDomain.ErrUpstream)}
		h, _ := newTestServer(t, gen)
		rec := do(t, h, http.MethodPost, "/api/v1/ai/breakdown-goal", map[string]any{"goal": "Learn Go"}, "")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestServer_ListReflections(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/reflections?limit=5", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec), "reflections")
}

type stubTaskGenerator struct {
	breakdown *breakdownDomain.TaskBreakdown
}

func (s *stubTaskGenerator) BreakdownTask(_ context.Context, req breakdownDomain.TaskRequest) (*breakdownDomain.TaskBreakdown, error) {
	b := *s.breakdown
	b.RefinedTitle = req.Title + " (refined)"
	return &b, nil
}

func TestServer_BreakdownTask(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		h, _ := newTestServer(t, nil)
		rec := do(t, h, http.MethodPost, "/api/v1/ai/breakdown-task", map[string]any{"taskTitle": "Write intro"}, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		h, _ := newTestServer(t, nil)
		rec := do(t, h, http.MethodPost, "/api/v1/ai/breakdown-task", map[string]any{"taskDescription": "x"}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns subtasks", func(t *testing.T) {
		h, c := newTestServer(t, nil)
		c.BreakdownTaskHandler = breakdownCommands.NewBreakdownTaskHandler(&stubTaskGenerator{
			breakdown: &breakdownDomain.TaskBreakdown{Subtasks: []string{"Outline", "Draft"}},
		}, c.Logger)
		srvCfg := DefaultServerConfig()
		srvCfg.DefaultUserID = c.Config.UserID
		h = NewServerFromContainer(srvCfg, c).Handler()

		rec := do(t, h, http.MethodPost, "/api/v1/ai/breakdown-task", map[string]any{"taskTitle": "Write intro"}, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		b := decode(t, rec)["breakdown"].(map[string]any)
		assert.Equal(t, "Write intro (refined)", b["refinedTitle"])
		assert.Equal(t, []any{"Outline", "Draft"}, b["subtasks"])
	})
}

func TestServer_ProductivityReport(t *testing.T) {
	h, _ := newTestServer(t, nil)
	createGoal(t, h, "")

	rec := do(t, h, http.MethodGet, "/api/v1/reports/productivity", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode(t, rec)["report"].(map[string]any)
	assert.Equal(t, float64(2), report["tasksCreated"])
	assert.Equal(t, float64(0), report["completionRate"])
	assert.Equal(t, "learning", report["topCategory"])
	assert.Equal(t, "Keep up the great work!", report["aiSummary"])

	rec = do(t, h, http.MethodGet, "/api/v1/reports/productivity?weekStart=2026-03-09&weekEnd=2026-03-02", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/reports/productivity?weekStart=yesterday", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{intelligenceDomain.NewValidationError("task", "is required"), http.StatusBadRequest},
		{goalDomain.ErrEmptyTitle, http.StatusBadRequest},
		{breakdownDomain.ErrEmptyGoal, http.StatusBadRequest},
		{breakdownDomain.ErrEmptyTask, http.StatusBadRequest},
		{fmt.Errorf("%w: later", reflectionsDomain.ErrInvalidWindow), http.StatusBadRequest},
		{goalDomain.ErrGoalNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", goalDomain.ErrTaskNotFound), http.StatusNotFound},
		{goalDomain.ErrConcurrentUpdate, http.StatusConflict},
		{intelligenceDomain.ErrConcurrentUpdate, http.StatusConflict},
		{breakdownDomain.ErrMalformedResponse, http.StatusBadGateway},
		{breakdownDomain.ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestServer_UnknownGoalPriorities(t *testing.T) {
	h, _ := newTestServer(t, nil)
	rec := do(t, h, http.MethodGet, "/api/v1/goals/"+uuid.NewString()+"/priorities", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_DeadlinesAndCalendarFeed(t *testing.T) {
	h, _ := newTestServer(t, nil)
	createGoal(t, h, "alice")

	rec := do(t, h, http.MethodGet, "/api/v1/deadlines", nil, "alice")
	require.Equal(t, http.StatusOK, rec.Code)
	deadlines := decode(t, rec)["deadlines"].([]any)
	require.Len(t, deadlines, 1)
	assert.Equal(t, "goal", deadlines[0].(map[string]any)["kind"])

	rec = do(t, h, http.MethodGet, "/api/v1/deadlines", nil, "bob")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["deadlines"])

	rec = do(t, h, http.MethodGet, "/api/v1/calendar.ics", nil, "alice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rec.Body.String(), "SUMMARY:Goal due: Learn Go")
}

func TestServer_CorrelationIDReachesOutbox(t *testing.T) {
	h, c := newTestServer(t, nil)
	corr := uuid.New()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{"title": "Run a 10k", "category": "health"}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/goals", &buf)
	req.Header.Set(CorrelationIDHeader, corr.String())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	msgs, err := c.OutboxRepo.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.NotEmpty(t, msgs)
	for _, msg := range msgs {
		assert.Contains(t, string(msg.Metadata), corr.String())
	}
}
