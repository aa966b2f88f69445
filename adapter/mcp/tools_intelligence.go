package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/stride/internal/intelligence/application/queries"
	"github.com/felixgeelhaar/stride/internal/intelligence/application/services"
	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
)

type priorityScoreInput struct {
	Task            *domain.Task            `json:"task" jsonschema:"required"`
	Goal            *domain.Goal            `json:"goal" jsonschema:"required"`
	AllTasks        []domain.Task           `json:"allTasks,omitempty"`
	UserPreferences *domain.UserPreferences `json:"userPreferences,omitempty"`
}

type insightsDetectInput struct {
	Goals           []domain.Goal                `json:"goals,omitempty"`
	CompletionStats []domain.TaskCompletionStats `json:"completionStats,omitempty"`
	UserPreferences *domain.UserPreferences      `json:"userPreferences,omitempty"`
	Limit           int                          `json:"limit,omitempty"`
}

type goalIDInput struct {
	GoalID string `json:"goal_id" jsonschema:"required"`
}

type emptyInput struct{}

func registerIntelligenceTools(srv *mcp.Server, t *toolset) error {
	srv.Tool("priority.score").
		Description("Score a task (0-100) against its goal and learned preferences").
		Handler(t.priorityScore)

	srv.Tool("insights.detect").
		Description("Detect bottlenecks, slow categories, achievements, overdue work and stalled goals").
		Handler(t.insightsDetect)

	srv.Tool("goals.rank").
		Description("Score every task of a stored goal").
		Handler(t.goalsRank)

	srv.Tool("preferences.get").
		Description("Show the preferences learned from completed tasks").
		Handler(t.preferencesGet)

	srv.Tool("motivation.message").
		Description("Pick an encouraging message for today's progress").
		Handler(t.motivationMessage)

	return nil
}

func (t *toolset) priorityScore(ctx context.Context, input priorityScoreInput) (*domain.TaskPriorityScore, error) {
	if t.app.CalculatePriorityHandler == nil {
		return nil, fmt.Errorf("priority scoring %w", errNoDatabase)
	}
	score, err := t.app.CalculatePriorityHandler.Handle(ctx, queries.CalculatePriorityQuery{
		Task:        input.Task,
		Goal:        input.Goal,
		AllTasks:    input.AllTasks,
		Preferences: input.UserPreferences,
	})
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func (t *toolset) insightsDetect(ctx context.Context, input insightsDetectInput) ([]domain.AIInsight, error) {
	if t.app.DetectInsightsHandler == nil {
		return nil, fmt.Errorf("insight detection %w", errNoDatabase)
	}
	prefs := input.UserPreferences
	if prefs == nil {
		stored, err := t.preferencesGet(ctx, emptyInput{})
		if err != nil {
			return nil, err
		}
		prefs = stored
	}
	return t.app.DetectInsightsHandler.Handle(ctx, queries.DetectInsightsQuery{
		UserID:          t.app.CurrentUserID,
		Goals:           input.Goals,
		CompletionStats: input.CompletionStats,
		Preferences:     prefs,
		Limit:           input.Limit,
	})
}

func (t *toolset) goalsRank(ctx context.Context, input goalIDInput) ([]domain.TaskPriorityScore, error) {
	if t.app.RankGoalTasksHandler == nil {
		return nil, fmt.Errorf("task ranking %w", errNoDatabase)
	}
	goalID, err := parseUUID(input.GoalID)
	if err != nil {
		return nil, err
	}
	return t.app.RankGoalTasksHandler.Handle(ctx, queries.RankGoalTasksQuery{
		UserID: t.app.CurrentUserID,
		GoalID: goalID,
	})
}

func (t *toolset) preferencesGet(ctx context.Context, _ emptyInput) (*domain.UserPreferences, error) {
	if t.app.GetPreferencesHandler == nil {
		return nil, fmt.Errorf("preferences %w", errNoDatabase)
	}
	prefs, err := t.app.GetPreferencesHandler.Handle(ctx, queries.GetPreferencesQuery{UserID: t.app.CurrentUserID})
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (t *toolset) motivationMessage(_ context.Context, input services.MotivationInput) (map[string]string, error) {
	return map[string]string{"message": services.MotivationMessage(input)}, nil
}
