package api

import (
	"log/slog"
	"net/http"
	"time"

	goalCommands "github.com/felixgeelhaar/stride/internal/goals/application/commands"
	goalQueries "github.com/felixgeelhaar/stride/internal/goals/application/queries"
	intelligenceQueries "github.com/felixgeelhaar/stride/internal/intelligence/application/queries"
	"github.com/google/uuid"
)

// GoalsHandler handles goal and task requests.
type GoalsHandler struct {
	createGoal *goalCommands.CreateGoalHandler
	updateGoal *goalCommands.UpdateGoalHandler
	deleteGoal *goalCommands.DeleteGoalHandler
	updateTask *goalCommands.UpdateTaskHandler
	getGoal    *goalQueries.GetGoalHandler
	listGoals  *goalQueries.ListGoalsHandler
	rankTasks  *intelligenceQueries.RankGoalTasksHandler
	deadlines  *goalQueries.ListDeadlinesHandler
	logger     *slog.Logger
}

// GoalsHandlerConfig holds dependencies for the goals handler.
type GoalsHandlerConfig struct {
	CreateGoal *goalCommands.CreateGoalHandler
	UpdateGoal *goalCommands.UpdateGoalHandler
	DeleteGoal *goalCommands.DeleteGoalHandler
	UpdateTask *goalCommands.UpdateTaskHandler
	GetGoal    *goalQueries.GetGoalHandler
	ListGoals  *goalQueries.ListGoalsHandler
	RankTasks  *intelligenceQueries.RankGoalTasksHandler
	Deadlines  *goalQueries.ListDeadlinesHandler
	Logger     *slog.Logger
}

// NewGoalsHandler creates a new goals handler.
func NewGoalsHandler(cfg GoalsHandlerConfig) *GoalsHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &GoalsHandler{
		createGoal: cfg.CreateGoal,
		updateGoal: cfg.UpdateGoal,
		deleteGoal: cfg.DeleteGoal,
		updateTask: cfg.UpdateTask,
		getGoal:    cfg.GetGoal,
		listGoals:  cfg.ListGoals,
		rankTasks:  cfg.RankTasks,
		deadlines:  cfg.Deadlines,
		logger:     cfg.Logger,
	}
}

type createGoalRequest struct {
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	Category          string                 `json:"category"`
	Priority          string                 `json:"priority"`
	EstimatedDuration string                 `json:"estimatedDuration"`
	AIGenerated       bool                   `json:"aiGenerated"`
	Tasks             []goalCommands.NewTask `json:"tasks"`
}

// CreateGoal handles POST /api/v1/goals
func (h *GoalsHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := h.createGoal.Handle(r.Context(), goalCommands.CreateGoalCommand{
		UserID:            userID(r),
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		Priority:          req.Priority,
		EstimatedDuration: req.EstimatedDuration,
		AIGenerated:       req.AIGenerated,
		Tasks:             req.Tasks,
	})
	if err != nil {
		writeAppError(w, r, h.logger, "create goal", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"goalId":    result.GoalID,
		"taskCount": result.TaskCount,
	})
}

// ListGoals handles GET /api/v1/goals
func (h *GoalsHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.listGoals.Handle(r.Context(), goalQueries.ListGoalsQuery{
		UserID: userID(r),
		Status: r.URL.Query().Get("status"),
	})
	if err != nil {
		writeAppError(w, r, h.logger, "list goals", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

// GetGoal handles GET /api/v1/goals/{goalID}
func (h *GoalsHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathUUID(w, r, "goalID")
	if !ok {
		return
	}
	goal, err := h.getGoal.Handle(r.Context(), goalQueries.GetGoalQuery{UserID: userID(r), GoalID: goalID})
	if err != nil {
		writeAppError(w, r, h.logger, "get goal", err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

type updateGoalRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	Category    *string `json:"category"`
}

// UpdateGoal handles PATCH /api/v1/goals/{goalID}
func (h *GoalsHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathUUID(w, r, "goalID")
	if !ok {
		return
	}
	var req updateGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	err := h.updateGoal.Handle(r.Context(), goalCommands.UpdateGoalCommand{
		UserID:      userID(r),
		GoalID:      goalID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		writeAppError(w, r, h.logger, "update goal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteGoal handles DELETE /api/v1/goals/{goalID}
func (h *GoalsHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathUUID(w, r, "goalID")
	if !ok {
		return
	}
	if err := h.deleteGoal.Handle(r.Context(), goalCommands.DeleteGoalCommand{UserID: userID(r), GoalID: goalID}); err != nil {
		writeAppError(w, r, h.logger, "delete goal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateTaskRequest struct {
	Title          *string    `json:"title"`
	Status         *string    `json:"status"`
	Priority       *string    `json:"priority"`
	DueDate        *time.Time `json:"dueDate"`
	ClearDueDate   bool       `json:"clearDueDate"`
	ActualDuration *string    `json:"actualDuration"`
}

// UpdateTask handles PATCH /api/v1/goals/{goalID}/tasks/{taskID}
func (h *GoalsHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathUUID(w, r, "goalID")
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskID")
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := h.updateTask.Handle(r.Context(), goalCommands.UpdateTaskCommand{
		UserID:         userID(r),
		GoalID:         goalID,
		TaskID:         taskID,
		Title:          req.Title,
		Status:         req.Status,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
		ClearDueDate:   req.ClearDueDate,
		ActualDuration: req.ActualDuration,
	})
	if err != nil {
		writeAppError(w, r, h.logger, "update task", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"completionPercentage": result.CompletionPercentage,
		"completed":            result.Completed,
	})
}

// Priorities handles GET /api/v1/goals/{goalID}/priorities
func (h *GoalsHandler) Priorities(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathUUID(w, r, "goalID")
	if !ok {
		return
	}
	scores, err := h.rankTasks.Handle(r.Context(), intelligenceQueries.RankGoalTasksQuery{UserID: userID(r), GoalID: goalID})
	if err != nil {
		writeAppError(w, r, h.logger, "rank tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"priorities": scores})
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
