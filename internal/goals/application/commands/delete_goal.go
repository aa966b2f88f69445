package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/stride/internal/goals/domain"
	sharedApplication "github.com/felixgeelhaar/stride/internal/shared/application"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// DeleteGoalCommand removes a goal and its tasks.
type DeleteGoalCommand struct {
	UserID string
	GoalID uuid.UUID
}

// DeleteGoalHandler handles the DeleteGoalCommand.
type DeleteGoalHandler struct {
	goalRepo   domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewDeleteGoalHandler creates a new DeleteGoalHandler.
func NewDeleteGoalHandler(goalRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *DeleteGoalHandler {
	return &DeleteGoalHandler{goalRepo: goalRepo, outboxRepo: outboxRepo, uow: uow}
}

// Handle executes the DeleteGoalCommand.
func (h *DeleteGoalHandler) Handle(ctx context.Context, cmd DeleteGoalCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		g, err := loadOwnedGoal(txCtx, h.goalRepo, cmd.UserID, cmd.GoalID)
		if err != nil {
			return err
		}

		if err := h.goalRepo.Delete(txCtx, g.ID()); err != nil {
			return err
		}
		g.MarkDeleted(time.Now())
		return saveEvents(txCtx, h.outboxRepo, g, cmd.UserID)
	})
}
