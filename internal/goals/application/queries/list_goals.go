package queries

import (
	"context"

	"github.com/felixgeelhaar/stride/internal/goals/domain"
)

// ListGoalsQuery lists a user's goals.
type ListGoalsQuery struct {
	UserID string
	Status string // empty means any
}

// ListGoalsHandler handles the ListGoalsQuery.
type ListGoalsHandler struct {
	goalRepo domain.Repository
}

// NewListGoalsHandler creates a new ListGoalsHandler.
func NewListGoalsHandler(goalRepo domain.Repository) *ListGoalsHandler {
	return &ListGoalsHandler{goalRepo: goalRepo}
}

// Handle executes the ListGoalsQuery.
func (h *ListGoalsHandler) Handle(ctx context.Context, query ListGoalsQuery) ([]GoalDTO, error) {
	var status *domain.GoalStatus
	if query.Status != "" {
		st, err := domain.ParseGoalStatus(query.Status)
		if err != nil {
			return nil, err
		}
		status = &st
	}

	goals, err := h.goalRepo.FindByUserID(ctx, query.UserID, status)
	if err != nil {
		return nil, err
	}

	dtos := make([]GoalDTO, 0, len(goals))
	for _, g := range goals {
		dtos = append(dtos, toGoalDTO(g))
	}
	return dtos, nil
}
