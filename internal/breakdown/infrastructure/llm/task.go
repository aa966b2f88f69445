package llm

import (
	"context"
	"strings"
	"time"

	"github.com/felixgeelhaar/stride/internal/breakdown/domain"
)

const taskSystemPrompt = "You are an expert task breakdown assistant. Always respond with valid JSON only."

// BreakdownTask asks the model to split one task into 3-6 subtasks.
func (c *Client) BreakdownTask(ctx context.Context, req domain.TaskRequest) (*domain.TaskBreakdown, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, domain.ErrEmptyTask
	}

	start := time.Now()
	var breakdown domain.TaskBreakdown
	if err := c.chatJSON(ctx, taskSystemPrompt, TaskPrompt(req), TaskTemperature, &breakdown); err != nil {
		return nil, err
	}
	if err := breakdown.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(breakdown.RefinedTitle) == "" {
		breakdown.RefinedTitle = req.Title
	}

	c.logger.Debug("task breakdown generated",
		"model", c.config.Model,
		"subtasks", len(breakdown.Subtasks),
		"duration", time.Since(start),
	)
	return &breakdown, nil
}

// TaskPrompt renders the user message for a task.
func TaskPrompt(req domain.TaskRequest) string {
	var b strings.Builder
	b.WriteString("Break down this task into 3-6 concrete subtasks.\n\n")
	b.WriteString(`Task: "` + req.Title + `"`)
	if req.Description != "" {
		b.WriteString("\nDescription: " + req.Description)
	}
	if req.GoalContext != "" {
		b.WriteString("\nGoal context: " + req.GoalContext)
	}
	b.WriteString(`

Respond with this JSON structure:
{
  "refinedTitle": "string (clearer version of the task)",
  "refinedDescription": "string (1-2 sentences)",
  "subtasks": ["string", "..."],
  "estimatedDuration": "string (e.g., '3 hours')",
  "tips": ["string", "..."]
}`)
	return b.String()
}
