package queries

import (
	"context"

	"github.com/felixgeelhaar/stride/internal/goals/domain"
	"github.com/google/uuid"
)

// GetGoalQuery fetches one goal with its tasks.
type GetGoalQuery struct {
	UserID string
	GoalID uuid.UUID
}

// GetGoalHandler handles the GetGoalQuery.
type GetGoalHandler struct {
	goalRepo domain.Repository
}

// NewGetGoalHandler creates a new GetGoalHandler.
func NewGetGoalHandler(goalRepo domain.Repository) *GetGoalHandler {
	return &GetGoalHandler{goalRepo: goalRepo}
}

// Handle executes the GetGoalQuery.
func (h *GetGoalHandler) Handle(ctx context.Context, query GetGoalQuery) (*GoalDTO, error) {
	g, err := h.goalRepo.FindByID(ctx, query.GoalID)
	if err != nil {
		return nil, err
	}
	if !g.IsOwnedBy(query.UserID) {
		return nil, domain.ErrGoalNotFound
	}
	dto := toGoalDTO(g)
	return &dto, nil
}
