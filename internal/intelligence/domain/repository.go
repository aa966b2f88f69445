package domain

import "context"

// PreferencesRepository persists UserPreferences with a version check.
type PreferencesRepository interface {
	// FindByUserID returns ErrPreferencesNotFound when nothing is stored.
	FindByUserID(ctx context.Context, userID string) (UserPreferences, error)

	// Save writes prefs only if the stored version still equals
	// prefs.Version, returning the new version. A mismatch yields
	// ErrConcurrentUpdate.
	Save(ctx context.Context, prefs UserPreferences) (int, error)
}
