package queries

import (
	"context"
	"sort"
	"time"

	"github.com/felixgeelhaar/stride/internal/goals/domain"
	"github.com/google/uuid"
)

// Deadline kinds.
const (
	DeadlineKindGoal = "goal"
	DeadlineKindTask = "task"
)

// DeadlineDTO is a dated milestone: a goal's target date or a task's due date.
type DeadlineDTO struct {
	ID        uuid.UUID `json:"id"`
	GoalID    uuid.UUID `json:"goalId"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	GoalTitle string    `json:"goalTitle"`
	Status    string    `json:"status"`
	Due       time.Time `json:"due"`
}

// ListDeadlinesQuery lists a user's upcoming deadlines.
type ListDeadlinesQuery struct {
	UserID           string
	IncludeCompleted bool
}

// ListDeadlinesHandler handles the ListDeadlinesQuery.
type ListDeadlinesHandler struct {
	goalRepo domain.Repository
}

// NewListDeadlinesHandler creates a new ListDeadlinesHandler.
func NewListDeadlinesHandler(goalRepo domain.Repository) *ListDeadlinesHandler {
	return &ListDeadlinesHandler{goalRepo: goalRepo}
}

// Handle executes the ListDeadlinesQuery. Deadlines are ordered by due date.
func (h *ListDeadlinesHandler) Handle(ctx context.Context, query ListDeadlinesQuery) ([]DeadlineDTO, error) {
	goals, err := h.goalRepo.FindByUserID(ctx, query.UserID, nil)
	if err != nil {
		return nil, err
	}
	dtos := make([]GoalDTO, 0, len(goals))
	for _, g := range goals {
		dtos = append(dtos, toGoalDTO(g))
	}
	return Deadlines(dtos, query.IncludeCompleted), nil
}

// Deadlines collects goal target dates and task due dates. Closed goals and
// tasks are skipped unless includeCompleted is set.
func Deadlines(goals []GoalDTO, includeCompleted bool) []DeadlineDTO {
	var out []DeadlineDTO
	for _, g := range goals {
		goalClosed := g.Status == string(domain.GoalStatusCompleted) || g.Status == string(domain.GoalStatusAbandoned)
		if goalClosed && !includeCompleted {
			continue
		}
		if g.TargetDate != nil {
			out = append(out, DeadlineDTO{
				ID:        g.ID,
				GoalID:    g.ID,
				Kind:      DeadlineKindGoal,
				Title:     g.Title,
				GoalTitle: g.Title,
				Status:    g.Status,
				Due:       *g.TargetDate,
			})
		}
		for _, t := range g.Tasks {
			if t.DueDate == nil {
				continue
			}
			taskClosed := t.Status == string(domain.TaskStatusCompleted) || t.Status == string(domain.TaskStatusCancelled)
			if taskClosed && !includeCompleted {
				continue
			}
			out = append(out, DeadlineDTO{
				ID:        t.ID,
				GoalID:    g.ID,
				Kind:      DeadlineKindTask,
				Title:     t.Title,
				GoalTitle: g.Title,
				Status:    t.Status,
				Due:       *t.DueDate,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Due.Before(out[j].Due) })
	return out
}
