package domain

import "time"

// Task and goal status values the engine reacts to.
const (
	TaskStatusCompleted  = "completed"
	GoalStatusInProgress = "in-progress"
)

// Task is the read-only view of a task the engine scores. IDs are opaque strings.
type Task struct {
	ID                string     `json:"id"`
	GoalID            string     `json:"goalId,omitempty"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Status            string     `json:"status"`
	Priority          string     `json:"priority"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
	EstimatedDuration string     `json:"estimatedDuration,omitempty"`
	ActualDuration    string     `json:"actualDuration,omitempty"`
	Dependencies      []string   `json:"dependencies,omitempty"`
	CreatedAt         time.Time  `json:"createdAt,omitempty"`
	UpdatedAt         time.Time  `json:"updatedAt,omitempty"`
}

// IsCompleted reports whether the task is done.
func (t Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// DependsOn reports whether id appears in the task's dependency list.
func (t Task) DependsOn(id string) bool {
	for _, dep := range t.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// Goal is the read-only view of a goal with its tasks.
type Goal struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Title     string    `json:"title,omitempty"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	Tasks     []Task    `json:"tasks,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CompletedTasks counts tasks with completed status.
func (g Goal) CompletedTasks() int {
	n := 0
	for _, t := range g.Tasks {
		if t.IsCompleted() {
			n++
		}
	}
	return n
}
