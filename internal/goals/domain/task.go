package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is one step toward a goal. Tasks are owned by their Goal and only
// change through it.
type Task struct {
	id                uuid.UUID
	goalID            uuid.UUID
	title             string
	description       string
	status            TaskStatus
	priority          Priority
	startDate         *time.Time
	dueDate           *time.Time
	completedAt       *time.Time
	estimatedDuration string
	actualDuration    string
	dependencies      []uuid.UUID
	order             int
	createdAt         time.Time
	updatedAt         time.Time
}

// TaskSpec describes a task to add to a goal.
type TaskSpec struct {
	Title             string
	Description       string
	Priority          string
	EstimatedDuration string
	DueDate           *time.Time
	Order             int
	Dependencies      []uuid.UUID
}

func newTask(goalID uuid.UUID, spec TaskSpec, now time.Time) (*Task, error) {
	title := strings.TrimSpace(spec.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	priority, err := ParsePriority(spec.Priority)
	if err != nil {
		return nil, err
	}
	now = now.UTC()
	return &Task{
		id:                uuid.New(),
		goalID:            goalID,
		title:             title,
		description:       strings.TrimSpace(spec.Description),
		status:            TaskStatusPending,
		priority:          priority,
		dueDate:           spec.DueDate,
		estimatedDuration: spec.EstimatedDuration,
		dependencies:      append([]uuid.UUID(nil), spec.Dependencies...),
		order:             spec.Order,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// TaskState is the persisted form of a Task.
type TaskState struct {
	ID                uuid.UUID
	GoalID            uuid.UUID
	Title             string
	Description       string
	Status            TaskStatus
	Priority          Priority
	StartDate         *time.Time
	DueDate           *time.Time
	CompletedAt       *time.Time
	EstimatedDuration string
	ActualDuration    string
	Dependencies      []uuid.UUID
	Order             int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RehydrateTask recreates a task from storage.
func RehydrateTask(s TaskState) *Task {
	return &Task{
		id:                s.ID,
		goalID:            s.GoalID,
		title:             s.Title,
		description:       s.Description,
		status:            s.Status,
		priority:          s.Priority,
		startDate:         s.StartDate,
		dueDate:           s.DueDate,
		completedAt:       s.CompletedAt,
		estimatedDuration: s.EstimatedDuration,
		actualDuration:    s.ActualDuration,
		dependencies:      s.Dependencies,
		order:             s.Order,
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
	}
}

// State returns the persisted form of the task.
func (t *Task) State() TaskState {
	return TaskState{
		ID:                t.id,
		GoalID:            t.goalID,
		Title:             t.title,
		Description:       t.description,
		Status:            t.status,
		Priority:          t.priority,
		StartDate:         t.startDate,
		DueDate:           t.dueDate,
		CompletedAt:       t.completedAt,
		EstimatedDuration: t.estimatedDuration,
		ActualDuration:    t.actualDuration,
		Dependencies:      append([]uuid.UUID(nil), t.dependencies...),
		Order:             t.order,
		CreatedAt:         t.createdAt,
		UpdatedAt:         t.updatedAt,
	}
}

func (t *Task) ID() uuid.UUID             { return t.id }
func (t *Task) GoalID() uuid.UUID         { return t.goalID }
func (t *Task) Title() string             { return t.title }
func (t *Task) Description() string       { return t.description }
func (t *Task) Status() TaskStatus        { return t.status }
func (t *Task) Priority() Priority        { return t.priority }
func (t *Task) StartDate() *time.Time     { return t.startDate }
func (t *Task) DueDate() *time.Time       { return t.dueDate }
func (t *Task) CompletedAt() *time.Time   { return t.completedAt }
func (t *Task) EstimatedDuration() string { return t.estimatedDuration }
func (t *Task) ActualDuration() string    { return t.actualDuration }
func (t *Task) Dependencies() []uuid.UUID { return t.dependencies }
func (t *Task) Order() int                { return t.order }
func (t *Task) CreatedAt() time.Time      { return t.createdAt }
func (t *Task) UpdatedAt() time.Time      { return t.updatedAt }
func (t *Task) IsCompleted() bool         { return t.status == TaskStatusCompleted }
