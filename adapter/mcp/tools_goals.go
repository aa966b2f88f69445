package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	breakdownCommands "github.com/felixgeelhaar/stride/internal/breakdown/application/commands"
	breakdownDomain "github.com/felixgeelhaar/stride/internal/breakdown/domain"
	"github.com/felixgeelhaar/stride/internal/goals/application/commands"
	"github.com/felixgeelhaar/stride/internal/goals/application/queries"
)

type goalsListInput struct {
	Status string `json:"status,omitempty"`
}

type goalCreateInput struct {
	Title             string             `json:"title" jsonschema:"required"`
	Description       string             `json:"description,omitempty"`
	Category          string             `json:"category,omitempty"`
	Priority          string             `json:"priority,omitempty"`
	EstimatedDuration string             `json:"estimated_duration,omitempty"`
	Tasks             []commands.NewTask `json:"tasks,omitempty"`
}

type taskCompleteInput struct {
	GoalID         string `json:"goal_id" jsonschema:"required"`
	TaskID         string `json:"task_id" jsonschema:"required"`
	ActualDuration string `json:"actual_duration,omitempty"`
}

type deadlinesInput struct {
	IncludeCompleted bool `json:"include_completed,omitempty"`
}

type taskBreakdownInput struct {
	Title       string `json:"title" jsonschema:"required"`
	Description string `json:"description,omitempty"`
	GoalContext string `json:"goal_context,omitempty"`
}

type goalBreakdownInput struct {
	Goal    string `json:"goal" jsonschema:"required"`
	Context string `json:"context,omitempty"`
	Persist bool   `json:"persist,omitempty"`
}

func registerGoalTools(srv *mcp.Server, t *toolset) error {
	srv.Tool("goals.list").
		Description("List goals, optionally filtered by status").
		Handler(t.goalsList)

	srv.Tool("goals.get").
		Description("Get one goal with its tasks").
		Handler(t.goalsGet)

	srv.Tool("goals.create").
		Description("Create a goal with optional tasks").
		Handler(t.goalsCreate)

	srv.Tool("tasks.complete").
		Description("Mark a task as completed, recording the time actually spent").
		Handler(t.tasksComplete)

	srv.Tool("goals.deadlines").
		Description("List goal target dates and task due dates, soonest first").
		Handler(t.goalsDeadlines)

	srv.Tool("goals.breakdown").
		Description("Break a goal down into tasks with the language model; persist creates the goal").
		Handler(t.goalsBreakdown)

	srv.Tool("tasks.breakdown").
		Description("Split one task into 3-6 subtasks with the language model").
		Handler(t.tasksBreakdown)

	return nil
}

func (t *toolset) goalsList(ctx context.Context, input goalsListInput) ([]queries.GoalDTO, error) {
	if t.app.ListGoalsHandler == nil {
		return nil, fmt.Errorf("goal listing %w", errNoDatabase)
	}
	return t.app.ListGoalsHandler.Handle(ctx, queries.ListGoalsQuery{
		UserID: t.app.CurrentUserID,
		Status: input.Status,
	})
}

func (t *toolset) goalsDeadlines(ctx context.Context, input deadlinesInput) ([]queries.DeadlineDTO, error) {
	if t.app.ListDeadlinesHandler == nil {
		return nil, fmt.Errorf("deadline listing %w", errNoDatabase)
	}
	return t.app.ListDeadlinesHandler.Handle(ctx, queries.ListDeadlinesQuery{
		UserID:           t.app.CurrentUserID,
		IncludeCompleted: input.IncludeCompleted,
	})
}

func (t *toolset) goalsGet(ctx context.Context, input goalIDInput) (*queries.GoalDTO, error) {
	if t.app.GetGoalHandler == nil {
		return nil, fmt.Errorf("goal lookup %w", errNoDatabase)
	}
	goalID, err := parseUUID(input.GoalID)
	if err != nil {
		return nil, err
	}
	return t.app.GetGoalHandler.Handle(ctx, queries.GetGoalQuery{UserID: t.app.CurrentUserID, GoalID: goalID})
}

func (t *toolset) goalsCreate(ctx context.Context, input goalCreateInput) (map[string]any, error) {
	if t.app.CreateGoalHandler == nil {
		return nil, fmt.Errorf("goal creation %w", errNoDatabase)
	}
	if input.Title == "" {
		return nil, errors.New("title is required")
	}
	result, err := t.app.CreateGoalHandler.Handle(ctx, commands.CreateGoalCommand{
		UserID:            t.app.CurrentUserID,
		Title:             input.Title,
		Description:       input.Description,
		Category:          input.Category,
		Priority:          input.Priority,
		EstimatedDuration: input.EstimatedDuration,
		Tasks:             input.Tasks,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"goal_id": result.GoalID, "task_count": result.TaskCount}, nil
}

func (t *toolset) tasksComplete(ctx context.Context, input taskCompleteInput) (map[string]any, error) {
	if t.app.UpdateTaskHandler == nil {
		return nil, fmt.Errorf("task completion %w", errNoDatabase)
	}
	goalID, err := parseUUID(input.GoalID)
	if err != nil {
		return nil, err
	}
	taskID, err := parseUUID(input.TaskID)
	if err != nil {
		return nil, err
	}

	status := "completed"
	cmd := commands.UpdateTaskCommand{
		UserID: t.app.CurrentUserID,
		GoalID: goalID,
		TaskID: taskID,
		Status: &status,
	}
	if input.ActualDuration != "" {
		cmd.ActualDuration = &input.ActualDuration
	}
	result, err := t.app.UpdateTaskHandler.Handle(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"task_id":               taskID,
		"completed":             result.Completed,
		"completion_percentage": result.CompletionPercentage,
	}, nil
}

func (t *toolset) goalsBreakdown(ctx context.Context, input goalBreakdownInput) (*breakdownCommands.BreakdownGoalResult, error) {
	if t.app.BreakdownGoalHandler == nil {
		return nil, fmt.Errorf("goal breakdown %w", errNoDatabase)
	}
	return t.app.BreakdownGoalHandler.Handle(ctx, breakdownCommands.BreakdownGoalCommand{
		UserID:  t.app.CurrentUserID,
		Goal:    input.Goal,
		Context: input.Context,
		Persist: input.Persist,
	})
}

func (t *toolset) tasksBreakdown(ctx context.Context, input taskBreakdownInput) (*breakdownDomain.TaskBreakdown, error) {
	if t.app.BreakdownTaskHandler == nil {
		return nil, fmt.Errorf("task breakdown %w", errNoDatabase)
	}
	return t.app.BreakdownTaskHandler.Handle(ctx, breakdownCommands.BreakdownTaskCommand{
		UserID:      t.app.CurrentUserID,
		Title:       input.Title,
		Description: input.Description,
		GoalContext: input.GoalContext,
	})
}
