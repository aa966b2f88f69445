package domain

import "fmt"

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

const (
	GoalStatusPlanning   GoalStatus = "planning"
	GoalStatusInProgress GoalStatus = "in-progress"
	GoalStatusPaused     GoalStatus = "paused"
	GoalStatusCompleted  GoalStatus = "completed"
	GoalStatusAbandoned  GoalStatus = "abandoned"
)

// ParseGoalStatus validates s.
func ParseGoalStatus(s string) (GoalStatus, error) {
	switch st := GoalStatus(s); st {
	case GoalStatusPlanning, GoalStatusInProgress, GoalStatusPaused, GoalStatusCompleted, GoalStatusAbandoned:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// ParseTaskStatus validates s.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch st := TaskStatus(s); st {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusBlocked, TaskStatusCompleted, TaskStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Priority is shared by goals and tasks.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority validates s; empty means medium.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

// Well-known goal categories. Any other non-empty category is accepted.
const (
	CategoryCareer    = "career"
	CategoryEducation = "education"
	CategoryFitness   = "fitness"
	CategoryPersonal  = "personal"
	CategoryCreative  = "creative"
	CategoryFinancial = "financial"
	CategorySpiritual = "spiritual"
	CategoryTravel    = "travel"
	CategoryOther     = "other"
)
