package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goalDomain "github.com/felixgeelhaar/stride/internal/goals/domain"
	"github.com/felixgeelhaar/stride/internal/reflections/domain"
	sharedApplication "github.com/felixgeelhaar/stride/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/stride/internal/shared/domain"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// RecentGoals lists goals touched since a point in time.
type RecentGoals interface {
	FindUpdatedSince(ctx context.Context, since time.Time) ([]*goalDomain.Goal, error)
}

// GenerateReflectionsCommand generates reflections for the week ending at Now.
type GenerateReflectionsCommand struct {
	// Now defaults to the current time.
	Now time.Time
}

// GenerateReflectionsResult reports what a run produced.
type GenerateReflectionsResult struct {
	Generated int
	Failed    int
}

// GenerateReflectionsHandler builds one reflection per active user.
type GenerateReflectionsHandler struct {
	goals      RecentGoals
	repo       domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
}

// NewGenerateReflectionsHandler creates a new GenerateReflectionsHandler.
func NewGenerateReflectionsHandler(
	goals RecentGoals,
	repo domain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *GenerateReflectionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerateReflectionsHandler{
		goals:      goals,
		repo:       repo,
		outboxRepo: outboxRepo,
		uow:        uow,
		logger:     logger,
	}
}

// Handle executes the GenerateReflectionsCommand. A failure for one user is
// logged and does not stop the others.
func (h *GenerateReflectionsHandler) Handle(ctx context.Context, cmd GenerateReflectionsCommand) (*GenerateReflectionsResult, error) {
	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	weekStart := now.Add(-domain.Week)

	goals, err := h.goals.FindUpdatedSince(ctx, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent goals: %w", err)
	}

	var (
		users  []string
		byUser = make(map[string][]*goalDomain.Goal)
	)
	for _, g := range goals {
		if _, seen := byUser[g.UserID()]; !seen {
			users = append(users, g.UserID())
		}
		byUser[g.UserID()] = append(byUser[g.UserID()], g)
	}

	result := &GenerateReflectionsResult{}
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		refl := BuildReflection(userID, byUser[userID], weekStart, now)
		if err := h.save(ctx, refl); err != nil {
			result.Failed++
			h.logger.Error("failed to save weekly reflection", "user_id", userID, "error", err)
			continue
		}
		result.Generated++
	}

	h.logger.Info("weekly reflections generated",
		"generated", result.Generated,
		"failed", result.Failed,
	)
	return result, nil
}

func (h *GenerateReflectionsHandler) save(ctx context.Context, refl *domain.WeeklyReflection) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.repo.Save(txCtx, refl); err != nil {
			return err
		}
		events := []sharedDomain.DomainEvent{domain.NewReflectionGenerated(refl)}
		sharedApplication.ApplyEventMetadata(events, sharedApplication.EventMetadataFromContext(txCtx, refl.UserID))
		msgs, err := outbox.NewMessages(events)
		if err != nil {
			return err
		}
		return h.outboxRepo.SaveBatch(txCtx, msgs)
	})
}

// BuildReflection summarises the goals a user touched during the week.
// Every task of those goals counts toward the total; only tasks completed
// inside the week are listed as achievements.
func BuildReflection(userID string, goals []*goalDomain.Goal, weekStart, weekEnd time.Time) *domain.WeeklyReflection {
	var (
		total, completed, goalsCompleted int
		achievements                     = []string{}
	)
	for _, g := range goals {
		if g.Status() == goalDomain.GoalStatusCompleted {
			goalsCompleted++
		}
		for _, t := range g.Tasks() {
			total++
			if !t.IsCompleted() {
				continue
			}
			completed++
			if at := t.CompletedAt(); at != nil && !at.Before(weekStart) && len(achievements) < domain.MaxAchievements {
				achievements = append(achievements, t.Title())
			}
		}
	}

	score := domain.ProductivityScore(completed, total)
	return &domain.WeeklyReflection{
		ID:                uuid.New(),
		UserID:            userID,
		WeekStart:         weekStart,
		WeekEnd:           weekEnd,
		Summary:           fmt.Sprintf("This week you completed %d out of %d tasks.", completed, total),
		Achievements:      achievements,
		Challenges:        []string{},
		Recommendations:   domain.Recommendations(score),
		GoalsCompleted:    goalsCompleted,
		TasksCompleted:    completed,
		ProductivityScore: score,
		GeneratedAt:       weekEnd,
	}
}
