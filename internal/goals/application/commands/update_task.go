package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/stride/internal/goals/domain"
	sharedApplication "github.com/felixgeelhaar/stride/internal/shared/application"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// UpdateTaskCommand contains optional task changes.
type UpdateTaskCommand struct {
	UserID         string
	GoalID         uuid.UUID
	TaskID         uuid.UUID
	Title          *string
	Status         *string
	Priority       *string
	DueDate        *time.Time
	ClearDueDate   bool
	ActualDuration *string
}

// UpdateTaskResult reports the goal's progress after the change.
type UpdateTaskResult struct {
	CompletionPercentage int
	Completed            bool
}

// UpdateTaskHandler handles the UpdateTaskCommand.
type UpdateTaskHandler struct {
	goalRepo   domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewUpdateTaskHandler creates a new UpdateTaskHandler.
func NewUpdateTaskHandler(goalRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *UpdateTaskHandler {
	return &UpdateTaskHandler{goalRepo: goalRepo, outboxRepo: outboxRepo, uow: uow}
}

// Handle executes the UpdateTaskCommand.
func (h *UpdateTaskHandler) Handle(ctx context.Context, cmd UpdateTaskCommand) (*UpdateTaskResult, error) {
	var result UpdateTaskResult
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		g, err := loadOwnedGoal(txCtx, h.goalRepo, cmd.UserID, cmd.GoalID)
		if err != nil {
			return err
		}

		if err := g.UpdateTask(cmd.TaskID, domain.TaskChanges{
			Title:          cmd.Title,
			Status:         cmd.Status,
			Priority:       cmd.Priority,
			DueDate:        cmd.DueDate,
			ClearDueDate:   cmd.ClearDueDate,
			ActualDuration: cmd.ActualDuration,
		}, time.Now()); err != nil {
			return err
		}

		if err := h.goalRepo.Save(txCtx, g); err != nil {
			return err
		}

		t, _ := g.Task(cmd.TaskID)
		result = UpdateTaskResult{
			CompletionPercentage: g.CompletionPercentage(),
			Completed:            t.IsCompleted(),
		}
		return saveEvents(txCtx, h.outboxRepo, g, cmd.UserID)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
