package queries

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/stride/internal/intelligence/application/services"
	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
	"github.com/google/uuid"
)

// GoalReader provides goal snapshots owned by a user.
type GoalReader interface {
	GoalSnapshot(ctx context.Context, userID string, goalID uuid.UUID) (domain.Goal, error)
}

// RankGoalTasksQuery asks for the open tasks of one goal in priority order.
type RankGoalTasksQuery struct {
	UserID string
	GoalID uuid.UUID
}

// RankGoalTasksHandler handles the RankGoalTasksQuery.
type RankGoalTasksHandler struct {
	goals     GoalReader
	prefsRepo domain.PreferencesRepository
	engine    *services.Engine
}

// NewRankGoalTasksHandler creates a new RankGoalTasksHandler.
func NewRankGoalTasksHandler(goals GoalReader, prefsRepo domain.PreferencesRepository, engine *services.Engine) *RankGoalTasksHandler {
	return &RankGoalTasksHandler{goals: goals, prefsRepo: prefsRepo, engine: engine}
}

// Handle executes the RankGoalTasksQuery. Users without a learned model are
// scored with neutral preferences.
func (h *RankGoalTasksHandler) Handle(ctx context.Context, query RankGoalTasksQuery) ([]domain.TaskPriorityScore, error) {
	goal, err := h.goals.GoalSnapshot(ctx, query.UserID, query.GoalID)
	if err != nil {
		return nil, err
	}

	prefs, err := h.prefsRepo.FindByUserID(ctx, query.UserID)
	if errors.Is(err, domain.ErrPreferencesNotFound) {
		prefs = domain.NewUserPreferences(query.UserID)
	} else if err != nil {
		return nil, err
	}

	return h.engine.RankTasks(goal, goal.Tasks, prefs), nil
}
