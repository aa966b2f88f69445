package queries

import (
	"context"

	"github.com/felixgeelhaar/stride/internal/reflections/domain"
)

// DefaultListLimit is used when no limit is requested.
const DefaultListLimit = 12

// ListReflectionsQuery lists a user's most recent reflections.
type ListReflectionsQuery struct {
	UserID string
	Limit  int
}

// ListReflectionsHandler handles ListReflectionsQuery.
type ListReflectionsHandler struct {
	repo domain.Repository
}

// NewListReflectionsHandler creates a new ListReflectionsHandler.
func NewListReflectionsHandler(repo domain.Repository) *ListReflectionsHandler {
	return &ListReflectionsHandler{repo: repo}
}

// Handle executes the ListReflectionsQuery.
func (h *ListReflectionsHandler) Handle(ctx context.Context, q ListReflectionsQuery) ([]*domain.WeeklyReflection, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return h.repo.FindByUserID(ctx, q.UserID, limit)
}
