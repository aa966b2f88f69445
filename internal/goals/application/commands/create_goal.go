package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/stride/internal/goals/domain"
	sharedApplication "github.com/felixgeelhaar/stride/internal/shared/application"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// NewTask describes a task created together with its goal.
type NewTask struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	EstimatedDuration string     `json:"estimatedDuration"`
	Priority          string     `json:"priority"`
	Order             int        `json:"order"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
}

// CreateGoalCommand contains the data needed to create a goal.
type CreateGoalCommand struct {
	UserID            string
	Title             string
	Description       string
	Category          string
	Priority          string
	EstimatedDuration string
	AIGenerated       bool
	Tasks             []NewTask
}

// CreateGoalResult contains the result of creating a goal.
type CreateGoalResult struct {
	GoalID    uuid.UUID
	TaskCount int
}

// CreateGoalHandler handles the CreateGoalCommand.
type CreateGoalHandler struct {
	goalRepo   domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewCreateGoalHandler creates a new CreateGoalHandler.
func NewCreateGoalHandler(goalRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateGoalHandler {
	return &CreateGoalHandler{
		goalRepo:   goalRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the CreateGoalCommand.
func (h *CreateGoalHandler) Handle(ctx context.Context, cmd CreateGoalCommand) (*CreateGoalResult, error) {
	specs := make([]domain.TaskSpec, 0, len(cmd.Tasks))
	for _, t := range cmd.Tasks {
		specs = append(specs, domain.TaskSpec{
			Title:             t.Title,
			Description:       t.Description,
			Priority:          t.Priority,
			EstimatedDuration: t.EstimatedDuration,
			DueDate:           t.DueDate,
			Order:             t.Order,
		})
	}

	g, err := domain.NewGoal(domain.GoalSpec{
		UserID:            cmd.UserID,
		Title:             cmd.Title,
		Description:       cmd.Description,
		Category:          cmd.Category,
		Priority:          cmd.Priority,
		EstimatedDuration: cmd.EstimatedDuration,
		AIGenerated:       cmd.AIGenerated,
		Tasks:             specs,
	}, time.Now())
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.goalRepo.Save(txCtx, g); err != nil {
			return err
		}
		return saveEvents(txCtx, h.outboxRepo, g, cmd.UserID)
	})
	if err != nil {
		return nil, err
	}

	return &CreateGoalResult{GoalID: g.ID(), TaskCount: len(g.Tasks())}, nil
}
