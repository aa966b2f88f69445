package queries

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
)

// GetPreferencesQuery loads a user's learned model.
type GetPreferencesQuery struct {
	UserID string
}

// GetPreferencesHandler handles the GetPreferencesQuery.
type GetPreferencesHandler struct {
	prefsRepo domain.PreferencesRepository
}

// NewGetPreferencesHandler creates a new GetPreferencesHandler.
func NewGetPreferencesHandler(prefsRepo domain.PreferencesRepository) *GetPreferencesHandler {
	return &GetPreferencesHandler{prefsRepo: prefsRepo}
}

// Handle returns an empty model for users without history.
func (h *GetPreferencesHandler) Handle(ctx context.Context, query GetPreferencesQuery) (domain.UserPreferences, error) {
	prefs, err := h.prefsRepo.FindByUserID(ctx, query.UserID)
	if errors.Is(err, domain.ErrPreferencesNotFound) {
		return domain.NewUserPreferences(query.UserID), nil
	}
	return prefs, err
}
