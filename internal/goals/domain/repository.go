package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists Goal aggregates together with their tasks.
type Repository interface {
	// Save inserts a new goal (version 0) or updates an existing one whose
	// stored version still matches. A mismatch yields ErrConcurrentUpdate.
	Save(ctx context.Context, g *Goal) error
	FindByID(ctx context.Context, id uuid.UUID) (*Goal, error)
	// FindByUserID returns the user's goals newest first, optionally
	// filtered by status.
	FindByUserID(ctx context.Context, userID string, status *GoalStatus) ([]*Goal, error)
	// FindUpdatedSince returns goals of every user updated at or after since.
	FindUpdatedSince(ctx context.Context, since time.Time) ([]*Goal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
