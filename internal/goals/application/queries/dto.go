package queries

import (
	"time"

	"github.com/felixgeelhaar/stride/internal/goals/domain"
	"github.com/google/uuid"
)

// TaskDTO is a data transfer object for tasks.
type TaskDTO struct {
	ID                uuid.UUID   `json:"id"`
	GoalID            uuid.UUID   `json:"goalId"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	Status            string      `json:"status"`
	Priority          string      `json:"priority"`
	StartDate         *time.Time  `json:"startDate,omitempty"`
	DueDate           *time.Time  `json:"dueDate,omitempty"`
	CompletedAt       *time.Time  `json:"completedAt,omitempty"`
	EstimatedDuration string      `json:"estimatedDuration,omitempty"`
	ActualDuration    string      `json:"actualDuration,omitempty"`
	Dependencies      []uuid.UUID `json:"dependencies"`
	Order             int         `json:"order"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// GoalDTO is a data transfer object for goals.
type GoalDTO struct {
	ID                   uuid.UUID  `json:"id"`
	UserID               string     `json:"userId"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Category             string     `json:"category"`
	Status               string     `json:"status"`
	Priority             string     `json:"priority"`
	StartDate            time.Time  `json:"startDate"`
	TargetDate           *time.Time `json:"targetDate,omitempty"`
	EstimatedDuration    string     `json:"estimatedDuration,omitempty"`
	AIGenerated          bool       `json:"aiGenerated"`
	CompletionPercentage int        `json:"completionPercentage"`
	Tasks                []TaskDTO  `json:"tasks"`
	Version              int        `json:"version"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func toGoalDTO(g *domain.Goal) GoalDTO {
	tasks := make([]TaskDTO, 0, len(g.Tasks()))
	for _, t := range g.Tasks() {
		deps := t.Dependencies()
		if deps == nil {
			deps = []uuid.UUID{}
		}
		tasks = append(tasks, TaskDTO{
			ID:                t.ID(),
			GoalID:            t.GoalID(),
			Title:             t.Title(),
			Description:       t.Description(),
			Status:            string(t.Status()),
			Priority:          string(t.Priority()),
			StartDate:         t.StartDate(),
			DueDate:           t.DueDate(),
			CompletedAt:       t.CompletedAt(),
			EstimatedDuration: t.EstimatedDuration(),
			ActualDuration:    t.ActualDuration(),
			Dependencies:      deps,
			Order:             t.Order(),
			CreatedAt:         t.CreatedAt(),
			UpdatedAt:         t.UpdatedAt(),
		})
	}

	return GoalDTO{
		ID:                   g.ID(),
		UserID:               g.UserID(),
		Title:                g.Title(),
		Description:          g.Description(),
		Category:             g.Category(),
		Status:               string(g.Status()),
		Priority:             string(g.Priority()),
		StartDate:            g.StartDate(),
		TargetDate:           g.TargetDate(),
		EstimatedDuration:    g.EstimatedDuration(),
		AIGenerated:          g.AIGenerated(),
		CompletionPercentage: g.CompletionPercentage(),
		Tasks:                tasks,
		Version:              g.Version(),
		CreatedAt:            g.CreatedAt(),
		UpdatedAt:            g.UpdatedAt(),
	}
}
