package queries

import (
	"context"

	"github.com/felixgeelhaar/stride/internal/intelligence/application/services"
	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
)

// CalculatePriorityQuery carries everything the scorer needs. Task and Goal
// are pointers so a missing field in a JSON body can be told apart.
type CalculatePriorityQuery struct {
	Task        *domain.Task            `json:"task"`
	Goal        *domain.Goal            `json:"goal"`
	AllTasks    []domain.Task           `json:"allTasks"`
	Preferences *domain.UserPreferences `json:"preferences"`
}

// CalculatePriorityHandler handles the CalculatePriorityQuery.
type CalculatePriorityHandler struct {
	engine *services.Engine
}

// NewCalculatePriorityHandler creates a new CalculatePriorityHandler.
func NewCalculatePriorityHandler(engine *services.Engine) *CalculatePriorityHandler {
	return &CalculatePriorityHandler{engine: engine}
}

// Handle executes the CalculatePriorityQuery.
func (h *CalculatePriorityHandler) Handle(_ context.Context, query CalculatePriorityQuery) (domain.TaskPriorityScore, error) {
	if query.Task == nil {
		return domain.TaskPriorityScore{}, domain.NewValidationError("task", "is required")
	}
	if query.Goal == nil {
		return domain.TaskPriorityScore{}, domain.NewValidationError("goal", "is required")
	}

	allTasks := query.AllTasks
	if allTasks == nil {
		allTasks = query.Goal.Tasks
	}
	var prefs domain.UserPreferences
	if query.Preferences != nil {
		prefs = *query.Preferences
	}
	return h.engine.ScorePriority(*query.Task, *query.Goal, allTasks, prefs), nil
}
