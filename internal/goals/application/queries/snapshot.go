package queries

import (
	"context"

	"github.com/felixgeelhaar/stride/internal/goals/domain"
	intelligence "github.com/felixgeelhaar/stride/internal/intelligence/domain"
	"github.com/google/uuid"
)

// SnapshotReader exposes stored goals in the shape the scoring engine reads.
type SnapshotReader struct {
	goalRepo domain.Repository
}

// NewSnapshotReader creates a new SnapshotReader.
func NewSnapshotReader(goalRepo domain.Repository) *SnapshotReader {
	return &SnapshotReader{goalRepo: goalRepo}
}

// GoalSnapshot returns one goal owned by userID.
func (r *SnapshotReader) GoalSnapshot(ctx context.Context, userID string, goalID uuid.UUID) (intelligence.Goal, error) {
	g, err := r.goalRepo.FindByID(ctx, goalID)
	if err != nil {
		return intelligence.Goal{}, err
	}
	if !g.IsOwnedBy(userID) {
		return intelligence.Goal{}, domain.ErrGoalNotFound
	}
	return ToSnapshot(g), nil
}

// GoalSnapshots returns every goal owned by userID.
func (r *SnapshotReader) GoalSnapshots(ctx context.Context, userID string) ([]intelligence.Goal, error) {
	goals, err := r.goalRepo.FindByUserID(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	out := make([]intelligence.Goal, 0, len(goals))
	for _, g := range goals {
		out = append(out, ToSnapshot(g))
	}
	return out, nil
}

// ToSnapshot converts a goal aggregate into the engine's read model.
func ToSnapshot(g *domain.Goal) intelligence.Goal {
	tasks := make([]intelligence.Task, 0, len(g.Tasks()))
	for _, t := range g.Tasks() {
		deps := make([]string, 0, len(t.Dependencies()))
		for _, d := range t.Dependencies() {
			deps = append(deps, d.String())
		}
		tasks = append(tasks, intelligence.Task{
			ID:                t.ID().String(),
			GoalID:            g.ID().String(),
			Title:             t.Title(),
			Description:       t.Description(),
			Status:            string(t.Status()),
			Priority:          string(t.Priority()),
			DueDate:           t.DueDate(),
			EstimatedDuration: t.EstimatedDuration(),
			ActualDuration:    t.ActualDuration(),
			Dependencies:      deps,
			CreatedAt:         t.CreatedAt(),
			UpdatedAt:         t.UpdatedAt(),
		})
	}
	return intelligence.Goal{
		ID:        g.ID().String(),
		UserID:    g.UserID(),
		Title:     g.Title(),
		Category:  g.Category(),
		Status:    string(g.Status()),
		Priority:  string(g.Priority()),
		Tasks:     tasks,
		UpdatedAt: g.UpdatedAt(),
	}
}
