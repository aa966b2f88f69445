package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	breakdownCommands "github.com/felixgeelhaar/stride/internal/breakdown/application/commands"
	intelligenceCommands "github.com/felixgeelhaar/stride/internal/intelligence/application/commands"
	intelligenceQueries "github.com/felixgeelhaar/stride/internal/intelligence/application/queries"
	"github.com/felixgeelhaar/stride/internal/intelligence/application/services"
	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
	reflectionQueries "github.com/felixgeelhaar/stride/internal/reflections/application/queries"
)

// AIHandler serves the scoring, insight, breakdown and reflection endpoints.
type AIHandler struct {
	calculatePriority *intelligenceQueries.CalculatePriorityHandler
	detectInsights    *intelligenceQueries.DetectInsightsHandler
	recordCompletion  *intelligenceCommands.RecordCompletionHandler
	getPreferences    *intelligenceQueries.GetPreferencesHandler
	breakdownGoal     *breakdownCommands.BreakdownGoalHandler
	breakdownTask     *breakdownCommands.BreakdownTaskHandler
	listReflections   *reflectionQueries.ListReflectionsHandler
	report            *reflectionQueries.ProductivityReportHandler
	logger            *slog.Logger
}

// AIHandlerConfig holds dependencies for the AI handler.
type AIHandlerConfig struct {
	CalculatePriority *intelligenceQueries.CalculatePriorityHandler
	DetectInsights    *intelligenceQueries.DetectInsightsHandler
	RecordCompletion  *intelligenceCommands.RecordCompletionHandler
	GetPreferences    *intelligenceQueries.GetPreferencesHandler
	BreakdownGoal     *breakdownCommands.BreakdownGoalHandler
	BreakdownTask     *breakdownCommands.BreakdownTaskHandler
	ListReflections   *reflectionQueries.ListReflectionsHandler
	Report            *reflectionQueries.ProductivityReportHandler
	Logger            *slog.Logger
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(cfg AIHandlerConfig) *AIHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &AIHandler{
		calculatePriority: cfg.CalculatePriority,
		detectInsights:    cfg.DetectInsights,
		recordCompletion:  cfg.RecordCompletion,
		getPreferences:    cfg.GetPreferences,
		breakdownGoal:     cfg.BreakdownGoal,
		breakdownTask:     cfg.BreakdownTask,
		listReflections:   cfg.ListReflections,
		report:            cfg.Report,
		logger:            cfg.Logger,
	}
}

type calculatePriorityRequest struct {
	intelligenceQueries.CalculatePriorityQuery
	UserPreferences *domain.UserPreferences `json:"userPreferences"`
}

// CalculatePriority handles POST /api/v1/ai/calculate-priority
func (h *AIHandler) CalculatePriority(w http.ResponseWriter, r *http.Request) {
	var req calculatePriorityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	query := req.CalculatePriorityQuery
	if query.Preferences == nil {
		query.Preferences = req.UserPreferences
	}

	score, err := h.calculatePriority.Handle(r.Context(), query)
	if err != nil {
		writeAppError(w, r, h.logger, "calculate priority", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"priorityScore": score})
}

type detectInsightsRequest struct {
	intelligenceQueries.DetectInsightsQuery
	UserPreferences *domain.UserPreferences `json:"userPreferences"`
}

// Insights handles POST /api/v1/ai/insights. Without preferences in the body
// the caller's stored preferences are used.
func (h *AIHandler) Insights(w http.ResponseWriter, r *http.Request) {
	var req detectInsightsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	query := req.DetectInsightsQuery
	query.UserID = userID(r)
	if query.Preferences == nil {
		query.Preferences = req.UserPreferences
	}
	if query.Preferences == nil {
		prefs, err := h.getPreferences.Handle(r.Context(), intelligenceQueries.GetPreferencesQuery{UserID: query.UserID})
		if err != nil {
			writeAppError(w, r, h.logger, "load preferences", err)
			return
		}
		query.Preferences = &prefs
	}

	insights, err := h.detectInsights.Handle(r.Context(), query)
	if err != nil {
		writeAppError(w, r, h.logger, "detect insights", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"insights": insights})
}

// RecordCompletion handles POST /api/v1/ai/completions
func (h *AIHandler) RecordCompletion(w http.ResponseWriter, r *http.Request) {
	var stats domain.TaskCompletionStats
	if err := decodeJSON(r, &stats); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	prefs, err := h.recordCompletion.Handle(r.Context(), intelligenceCommands.RecordCompletionCommand{
		UserID: userID(r),
		Stats:  stats,
	})
	if err != nil {
		writeAppError(w, r, h.logger, "record completion", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preferences": prefs})
}

// GetPreferences handles GET /api/v1/preferences
func (h *AIHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.getPreferences.Handle(r.Context(), intelligenceQueries.GetPreferencesQuery{UserID: userID(r)})
	if err != nil {
		writeAppError(w, r, h.logger, "get preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preferences": prefs})
}

type breakdownGoalRequest struct {
	Goal    string `json:"goal"`
	Context string `json:"context"`
	Persist bool   `json:"persist"`
}

// BreakdownGoal handles POST /api/v1/ai/breakdown-goal
func (h *AIHandler) BreakdownGoal(w http.ResponseWriter, r *http.Request) {
	var req breakdownGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := h.breakdownGoal.Handle(r.Context(), breakdownCommands.BreakdownGoalCommand{
		UserID:  userID(r),
		Goal:    req.Goal,
		Context: req.Context,
		Persist: req.Persist,
	})
	if err != nil {
		writeAppError(w, r, h.logger, "breakdown goal", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type breakdownTaskRequest struct {
	TaskTitle       string `json:"taskTitle"`
	TaskDescription string `json:"taskDescription"`
	GoalContext     string `json:"goalContext"`
}

// BreakdownTask handles POST /api/v1/ai/breakdown-task
func (h *AIHandler) BreakdownTask(w http.ResponseWriter, r *http.Request) {
	var req breakdownTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	breakdown, err := h.breakdownTask.Handle(r.Context(), breakdownCommands.BreakdownTaskCommand{
		UserID:      userID(r),
		Title:       req.TaskTitle,
		Description: req.TaskDescription,
		GoalContext: req.GoalContext,
	})
	if err != nil {
		writeAppError(w, r, h.logger, "breakdown task", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"breakdown": breakdown})
}

// ProductivityReport handles GET /api/v1/reports/productivity
func (h *AIHandler) ProductivityReport(w http.ResponseWriter, r *http.Request) {
	start, err := parseTimeParam(r, "weekStart")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid weekStart")
		return
	}
	end, err := parseTimeParam(r, "weekEnd")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid weekEnd")
		return
	}

	report, err := h.report.Handle(r.Context(), reflectionQueries.ProductivityReportQuery{
		UserID:    userID(r),
		WeekStart: start,
		WeekEnd:   end,
	})
	if err != nil {
		writeAppError(w, r, h.logger, "productivity report", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": report})
}

// Motivation handles POST /api/v1/ai/motivation
func (h *AIHandler) Motivation(w http.ResponseWriter, r *http.Request) {
	var in services.MotivationInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": services.MotivationMessage(in)})
}

// ListReflections handles GET /api/v1/reflections
func (h *AIHandler) ListReflections(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r, "limit", reflectionQueries.DefaultListLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	reflections, err := h.listReflections.Handle(r.Context(), reflectionQueries.ListReflectionsQuery{
		UserID: userID(r),
		Limit:  limit,
	})
	if err != nil {
		writeAppError(w, r, h.logger, "list reflections", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reflections": reflections})
}

func parseIntParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

// parseTimeParam accepts RFC 3339 timestamps or plain dates.
func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}
