package commands

import (
	"context"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/stride/internal/breakdown/domain"
)

// BreakdownTaskCommand asks for a single task to be split into subtasks.
type BreakdownTaskCommand struct {
	UserID      string
	Title       string
	Description string
	GoalContext string
}

// BreakdownTaskHandler handles BreakdownTaskCommand.
type BreakdownTaskHandler struct {
	generator domain.TaskGenerator
	logger    *slog.Logger
}

// NewBreakdownTaskHandler creates a new BreakdownTaskHandler.
func NewBreakdownTaskHandler(generator domain.TaskGenerator, logger *slog.Logger) *BreakdownTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BreakdownTaskHandler{generator: generator, logger: logger}
}

// Handle executes the BreakdownTaskCommand.
func (h *BreakdownTaskHandler) Handle(ctx context.Context, cmd BreakdownTaskCommand) (*domain.TaskBreakdown, error) {
	if strings.TrimSpace(cmd.Title) == "" {
		return nil, domain.ErrEmptyTask
	}
	if h.generator == nil {
		return nil, domain.ErrNotConfigured
	}

	breakdown, err := h.generator.BreakdownTask(ctx, domain.TaskRequest{
		Title:       strings.TrimSpace(cmd.Title),
		Description: cmd.Description,
		GoalContext: cmd.GoalContext,
	})
	if err != nil {
		h.logger.Warn("task breakdown failed", "user_id", cmd.UserID, "error", err)
		return nil, err
	}
	return breakdown, nil
}
