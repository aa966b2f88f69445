package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/stride/internal/intelligence/application/services"
	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
	sharedApplication "github.com/felixgeelhaar/stride/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/stride/internal/shared/domain"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/outbox"
)

// MaxSaveAttempts bounds the read-modify-write retry on version conflicts.
const MaxSaveAttempts = 3

// RecordCompletionCommand feeds one completion into a user's model.
type RecordCompletionCommand struct {
	UserID string
	Stats  domain.TaskCompletionStats
}

// RecordCompletionHandler handles the RecordCompletionCommand.
type RecordCompletionHandler struct {
	prefsRepo  domain.PreferencesRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	engine     *services.Engine
	logger     *slog.Logger
}

// NewRecordCompletionHandler creates a new RecordCompletionHandler.
func NewRecordCompletionHandler(
	prefsRepo domain.PreferencesRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	engine *services.Engine,
	logger *slog.Logger,
) *RecordCompletionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordCompletionHandler{
		prefsRepo:  prefsRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		engine:     engine,
		logger:     logger,
	}
}

// Handle loads, updates and saves the user's preferences. A version
// conflict restarts the whole transaction, up to MaxSaveAttempts times.
func (h *RecordCompletionHandler) Handle(ctx context.Context, cmd RecordCompletionCommand) (domain.UserPreferences, error) {
	if cmd.UserID == "" {
		return domain.UserPreferences{}, domain.NewValidationError("userId", "is required")
	}

	var result domain.UserPreferences
	attempt := 0
	err := sharedApplication.RetryUnitOfWork(ctx, h.uow, MaxSaveAttempts, domain.ErrConcurrentUpdate, func(txCtx context.Context) error {
		attempt++
		if attempt > 1 {
			h.logger.Debug("retrying preference update after conflict", "user_id", cmd.UserID, "attempt", attempt)
		}

		current, err := h.prefsRepo.FindByUserID(txCtx, cmd.UserID)
		if errors.Is(err, domain.ErrPreferencesNotFound) {
			current = domain.NewUserPreferences(cmd.UserID)
		} else if err != nil {
			return err
		}

		updated, err := h.engine.UpdatePreferences(current, cmd.Stats)
		if err != nil {
			return err
		}

		version, err := h.prefsRepo.Save(txCtx, updated)
		if err != nil {
			return err
		}
		updated.Version = version

		events := []sharedDomain.DomainEvent{domain.NewPreferencesUpdated(updated, cmd.Stats, time.Now())}
		sharedApplication.ApplyEventMetadata(events, sharedApplication.EventMetadataFromContext(txCtx, cmd.UserID))
		msgs, err := outbox.NewMessages(events)
		if err != nil {
			return err
		}
		if err := h.outboxRepo.SaveBatch(txCtx, msgs); err != nil {
			return err
		}

		result = updated
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			h.logger.Warn("preference update lost after retries", "user_id", cmd.UserID, "attempts", attempt)
		}
		return domain.UserPreferences{}, err
	}
	return result, nil
}
