package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/stride/internal/reflections/domain"
)

// DefaultRetentionMonths is how long reflections are kept.
const DefaultRetentionMonths = 6

// CleanupReflectionsCommand deletes reflections past the retention window.
type CleanupReflectionsCommand struct {
	RetentionMonths int
	Now             time.Time
}

// CleanupReflectionsHandler handles CleanupReflectionsCommand.
type CleanupReflectionsHandler struct {
	repo   domain.Repository
	logger *slog.Logger
}

// NewCleanupReflectionsHandler creates a new CleanupReflectionsHandler.
func NewCleanupReflectionsHandler(repo domain.Repository, logger *slog.Logger) *CleanupReflectionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupReflectionsHandler{repo: repo, logger: logger}
}

// Handle deletes reflections whose week started before the cutoff and
// returns how many were removed.
func (h *CleanupReflectionsHandler) Handle(ctx context.Context, cmd CleanupReflectionsCommand) (int64, error) {
	months := cmd.RetentionMonths
	if months <= 0 {
		months = DefaultRetentionMonths
	}
	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}
	cutoff := RetentionCutoff(now, months)

	n, err := h.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	h.logger.Info("old reflections cleaned up", "deleted", n, "cutoff", cutoff)
	return n, nil
}

// RetentionCutoff is now moved back by months calendar months.
func RetentionCutoff(now time.Time, months int) time.Time {
	return now.UTC().AddDate(0, -months, 0)
}
