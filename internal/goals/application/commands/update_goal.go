package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/stride/internal/goals/domain"
	sharedApplication "github.com/felixgeelhaar/stride/internal/shared/application"
	"github.com/google/uuid"
)

// UpdateGoalCommand contains optional goal changes.
type UpdateGoalCommand struct {
	UserID      string
	GoalID      uuid.UUID
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Category    *string
}

// UpdateGoalHandler handles the UpdateGoalCommand.
type UpdateGoalHandler struct {
	goalRepo domain.Repository
	uow      sharedApplication.UnitOfWork
}

// NewUpdateGoalHandler creates a new UpdateGoalHandler.
func NewUpdateGoalHandler(goalRepo domain.Repository, uow sharedApplication.UnitOfWork) *UpdateGoalHandler {
	return &UpdateGoalHandler{goalRepo: goalRepo, uow: uow}
}

// Handle executes the UpdateGoalCommand.
func (h *UpdateGoalHandler) Handle(ctx context.Context, cmd UpdateGoalCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		g, err := loadOwnedGoal(txCtx, h.goalRepo, cmd.UserID, cmd.GoalID)
		if err != nil {
			return err
		}

		if err := g.Update(domain.GoalChanges{
			Title:       cmd.Title,
			Description: cmd.Description,
			Status:      cmd.Status,
			Priority:    cmd.Priority,
			Category:    cmd.Category,
		}, time.Now()); err != nil {
			return err
		}

		return h.goalRepo.Save(txCtx, g)
	})
}

// Goals owned by another user are reported as missing.
func loadOwnedGoal(ctx context.Context, repo domain.Repository, userID string, goalID uuid.UUID) (*domain.Goal, error) {
	g, err := repo.FindByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if !g.IsOwnedBy(userID) {
		return nil, domain.ErrGoalNotFound
	}
	return g, nil
}
