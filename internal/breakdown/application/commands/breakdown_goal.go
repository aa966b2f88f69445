package commands

import (
	"context"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/stride/internal/breakdown/domain"
	goalCommands "github.com/felixgeelhaar/stride/internal/goals/application/commands"
	"github.com/google/uuid"
)

// BreakdownGoalCommand asks for a goal to be split into tasks.
type BreakdownGoalCommand struct {
	UserID  string
	Goal    string
	Context string
	// Persist creates the goal and its tasks from the breakdown.
	Persist bool
}

// BreakdownGoalResult contains the generated breakdown and, when persisted,
// the new goal's ID.
type BreakdownGoalResult struct {
	Breakdown *domain.GoalBreakdown `json:"breakdown"`
	GoalID    *uuid.UUID            `json:"goalId,omitempty"`
}

type goalCreator interface {
	Handle(ctx context.Context, cmd goalCommands.CreateGoalCommand) (*goalCommands.CreateGoalResult, error)
}

// BreakdownGoalHandler handles BreakdownGoalCommand.
type BreakdownGoalHandler struct {
	generator domain.Generator
	creator   goalCreator
	logger    *slog.Logger
}

// NewBreakdownGoalHandler creates a new BreakdownGoalHandler. creator may be
// nil when breakdowns are never persisted.
func NewBreakdownGoalHandler(generator domain.Generator, creator goalCreator, logger *slog.Logger) *BreakdownGoalHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BreakdownGoalHandler{
		generator: generator,
		creator:   creator,
		logger:    logger,
	}
}

// Handle executes the BreakdownGoalCommand.
func (h *BreakdownGoalHandler) Handle(ctx context.Context, cmd BreakdownGoalCommand) (*BreakdownGoalResult, error) {
	if strings.TrimSpace(cmd.Goal) == "" {
		return nil, domain.ErrEmptyGoal
	}
	if h.generator == nil {
		return nil, domain.ErrNotConfigured
	}

	breakdown, err := h.generator.Breakdown(ctx, cmd.Goal, cmd.Context)
	if err != nil {
		h.logger.Warn("goal breakdown failed", "user_id", cmd.UserID, "error", err)
		return nil, err
	}

	result := &BreakdownGoalResult{Breakdown: breakdown}
	if !cmd.Persist {
		return result, nil
	}
	if h.creator == nil {
		return nil, domain.ErrNotConfigured
	}

	created, err := h.creator.Handle(ctx, toCreateGoal(cmd.UserID, breakdown))
	if err != nil {
		return nil, err
	}
	result.GoalID = &created.GoalID

	h.logger.Info("goal created from breakdown",
		"user_id", cmd.UserID,
		"goal_id", created.GoalID,
		"tasks", created.TaskCount,
	)
	return result, nil
}

func toCreateGoal(userID string, b *domain.GoalBreakdown) goalCommands.CreateGoalCommand {
	tasks := make([]goalCommands.NewTask, 0, len(b.Tasks))
	for _, t := range b.Tasks {
		tasks = append(tasks, goalCommands.NewTask{
			Title:             t.Title,
			Description:       t.Description,
			EstimatedDuration: t.EstimatedDuration,
			Priority:          normalizePriority(t.Priority),
			Order:             t.Order,
		})
	}
	return goalCommands.CreateGoalCommand{
		UserID:            userID,
		Title:             b.Goal.Title,
		Description:       b.Goal.Description,
		Category:          b.Goal.Category,
		EstimatedDuration: b.Goal.EstimatedDuration,
		AIGenerated:       true,
		Tasks:             tasks,
	}
}

// Models occasionally answer "High" or "urgent"; anything unknown falls back
// to the goal default.
func normalizePriority(p string) string {
	switch p = strings.ToLower(strings.TrimSpace(p)); p {
	case "low", "medium", "high":
		return p
	}
	return ""
}
