package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/database"
)

const keyPrefix = "stride:preferences:user:"

// PreferencesCache is a read-through decorator around a
// domain.PreferencesRepository. Cache failures are logged and fall back to
// the underlying repository.
type PreferencesCache struct {
	next   domain.PreferencesRepository
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewPreferencesCache wraps next with store.
func NewPreferencesCache(next domain.PreferencesRepository, store Store, ttl time.Duration, logger *slog.Logger) *PreferencesCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreferencesCache{next: next, store: store, ttl: ttl, logger: logger}
}

func cacheKey(userID string) string {
	return keyPrefix + userID
}

// FindByUserID serves from the cache when possible. Reads inside a
// transaction always go to the repository so version checks see committed state.
func (c *PreferencesCache) FindByUserID(ctx context.Context, userID string) (domain.UserPreferences, error) {
	if _, inTx := database.TxInfoFromContext(ctx); inTx {
		return c.next.FindByUserID(ctx, userID)
	}

	key := cacheKey(userID)
	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var prefs domain.UserPreferences
		if jsonErr := json.Unmarshal(data, &prefs); jsonErr == nil {
			return prefs, nil
		}
		c.logger.Warn("discarding corrupt cached preferences", "user_id", userID)
		_ = c.store.Delete(ctx, key)
	case !errors.Is(err, ErrCacheMiss):
		c.logger.Warn("preferences cache read failed", "user_id", userID, "error", err)
	}

	prefs, err := c.next.FindByUserID(ctx, userID)
	if err != nil {
		return prefs, err
	}

	if data, err := json.Marshal(prefs); err == nil {
		if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("preferences cache write failed", "user_id", userID, "error", err)
		}
	}
	return prefs, nil
}

// Save writes through. The cached entry is dropped once the surrounding
// transaction commits; dropping it earlier lets a concurrent reader refill
// the cache with the row that is about to be replaced.
func (c *PreferencesCache) Save(ctx context.Context, prefs domain.UserPreferences) (int, error) {
	version, err := c.next.Save(ctx, prefs)
	if err != nil {
		return version, err
	}
	userID := prefs.UserID
	database.AfterCommit(ctx, func(ctx context.Context) {
		if err := c.store.Delete(ctx, cacheKey(userID)); err != nil {
			c.logger.Warn("preferences cache invalidation failed", "user_id", userID, "error", err)
		}
	})
	return version, nil
}
