package domain

import (
	"time"

	"github.com/felixgeelhaar/stride/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "Goal"

	RoutingKeyGoalCreated   = "goals.goal.created"
	RoutingKeyGoalDeleted   = "goals.goal.deleted"
	RoutingKeyTaskCompleted = "goals.task.completed"
)

// GoalCreated is emitted when a goal is created.
type GoalCreated struct {
	domain.BaseEvent
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	TaskCount   int    `json:"task_count"`
	AIGenerated bool   `json:"ai_generated"`
}

// NewGoalCreated creates a GoalCreated event.
func NewGoalCreated(g *Goal, at time.Time) *GoalCreated {
	return &GoalCreated{
		BaseEvent:   domain.NewBaseEvent(g.ID(), AggregateType, RoutingKeyGoalCreated, at),
		UserID:      g.userID,
		Title:       g.title,
		Category:    g.category,
		TaskCount:   len(g.tasks),
		AIGenerated: g.aiGenerated,
	}
}

// GoalDeleted is emitted when a goal is deleted.
type GoalDeleted struct {
	domain.BaseEvent
	UserID string `json:"user_id"`
}

// NewGoalDeleted creates a GoalDeleted event.
func NewGoalDeleted(g *Goal, at time.Time) *GoalDeleted {
	return &GoalDeleted{
		BaseEvent: domain.NewBaseEvent(g.ID(), AggregateType, RoutingKeyGoalDeleted, at),
		UserID:    g.userID,
	}
}

// TaskCompleted is emitted when a task moves into completed status. It
// carries what a consumer needs to learn from the completion.
type TaskCompleted struct {
	domain.BaseEvent
	UserID            string    `json:"user_id"`
	GoalID            uuid.UUID `json:"goal_id"`
	TaskID            uuid.UUID `json:"task_id"`
	Title             string    `json:"title"`
	Category          string    `json:"category"`
	EstimatedDuration string    `json:"estimated_duration"`
	ActualDuration    string    `json:"actual_duration"`
	CompletedAt       time.Time `json:"completed_at"`
}

// NewTaskCompleted creates a TaskCompleted event.
func NewTaskCompleted(g *Goal, t *Task, at time.Time) *TaskCompleted {
	return &TaskCompleted{
		BaseEvent:         domain.NewBaseEvent(g.ID(), AggregateType, RoutingKeyTaskCompleted, at),
		UserID:            g.userID,
		GoalID:            g.ID(),
		TaskID:            t.id,
		Title:             t.title,
		Category:          g.category,
		EstimatedDuration: t.estimatedDuration,
		ActualDuration:    t.actualDuration,
		CompletedAt:       at.UTC(),
	}
}
