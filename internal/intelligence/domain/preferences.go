package domain

import (
	"time"
)

// Performance is the running record for one category or task type.
// CompletionRate is a 0-100 percentage; AverageSpeed is actual/estimated,
// so 1.0 means on estimate and values above 1 mean slower.
type Performance struct {
	CompletionRate float64 `json:"completionRate"`
	AverageSpeed   float64 `json:"averageSpeed"`
}

// NewPerformance is the starting point for a bucket with no history.
func NewPerformance() Performance {
	return Performance{CompletionRate: 0, AverageSpeed: 1.0}
}

// UserPreferences is the per-user model learned from task completions.
type UserPreferences struct {
	UserID              string                 `json:"userId"`
	CategoryPerformance map[string]Performance `json:"categoryPerformance"`
	TaskTypePerformance map[string]Performance `json:"taskTypePerformance"`
	AverageTaskDuration float64                `json:"averageTaskDuration"`
	LastUpdated         time.Time              `json:"lastUpdated"`
	// Version is the optimistic concurrency token; 0 means never stored.
	Version int `json:"version,omitempty"`
}

// NewUserPreferences returns an empty model for userID.
func NewUserPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID:              userID,
		CategoryPerformance: map[string]Performance{},
		TaskTypePerformance: map[string]Performance{},
	}
}

// Clone returns a copy whose maps can be modified independently.
func (p UserPreferences) Clone() UserPreferences {
	out := p
	out.CategoryPerformance = make(map[string]Performance, len(p.CategoryPerformance))
	for k, v := range p.CategoryPerformance {
		out.CategoryPerformance[k] = v
	}
	out.TaskTypePerformance = make(map[string]Performance, len(p.TaskTypePerformance))
	for k, v := range p.TaskTypePerformance {
		out.TaskTypePerformance[k] = v
	}
	return out
}

// TaskCompletionStats is a single observed completion (or skip).
// Durations are in minutes.
type TaskCompletionStats struct {
	TaskID            string    `json:"taskId,omitempty"`
	Category          string    `json:"category"`
	TaskType          string    `json:"taskType"`
	EstimatedDuration float64   `json:"estimatedDuration"`
	ActualDuration    float64   `json:"actualDuration"`
	CompletedAt       time.Time `json:"completedAt"`
	Skipped           bool      `json:"skipped"`
}
