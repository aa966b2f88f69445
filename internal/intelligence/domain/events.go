package domain

import (
	"time"

	shared "github.com/felixgeelhaar/stride/internal/shared/domain"
	"github.com/google/uuid"
)

// RoutingKeyPreferencesUpdated is published after a completion is learned.
const RoutingKeyPreferencesUpdated = "intelligence.preferences.updated"

// PreferencesUpdated carries the buckets touched by one completion.
type PreferencesUpdated struct {
	shared.BaseEvent
	UserID      string      `json:"user_id"`
	Category    string      `json:"category"`
	TaskType    string      `json:"task_type"`
	CategoryNow Performance `json:"category_performance"`
	TaskTypeNow Performance `json:"task_type_performance"`
	Version     int         `json:"version"`
}

// preferencesNamespace derives stable aggregate IDs from user IDs, which
// are free-form strings.
var preferencesNamespace = uuid.MustParse("6f1c2b8e-3a0d-4f5e-9b7c-2d4e6a8f0c11")

// PreferencesAggregateID maps a user ID to the aggregate ID used in events.
func PreferencesAggregateID(userID string) uuid.UUID {
	return uuid.NewSHA1(preferencesNamespace, []byte(userID))
}

// NewPreferencesUpdated builds the event for prefs after learning from stats.
func NewPreferencesUpdated(prefs UserPreferences, stats TaskCompletionStats, at time.Time) *PreferencesUpdated {
	return &PreferencesUpdated{
		BaseEvent:   shared.NewBaseEvent(PreferencesAggregateID(prefs.UserID), "UserPreferences", RoutingKeyPreferencesUpdated, at),
		UserID:      prefs.UserID,
		Category:    stats.Category,
		TaskType:    stats.TaskType,
		CategoryNow: prefs.CategoryPerformance[stats.Category],
		TaskTypeNow: prefs.TaskTypePerformance[stats.TaskType],
		Version:     prefs.Version,
	}
}
