package services

import (
	"math"

	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
)

// UpdatePreferences folds one completion into the model and returns the new
// value; current is left untouched.
func (e *Engine) UpdatePreferences(current domain.UserPreferences, stats domain.TaskCompletionStats) (domain.UserPreferences, error) {
	if err := validateStats(stats); err != nil {
		return domain.UserPreferences{}, err
	}

	speedRatio := stats.ActualDuration / stats.EstimatedDuration

	updated := current.Clone()
	updated.CategoryPerformance[stats.Category] = e.updateBucket(
		"category", stats.Category, bucketOrNew(current.CategoryPerformance, stats.Category), speedRatio, stats.Skipped)
	updated.TaskTypePerformance[stats.TaskType] = e.updateBucket(
		"task_type", stats.TaskType, bucketOrNew(current.TaskTypePerformance, stats.TaskType), speedRatio, stats.Skipped)
	updated.AverageTaskDuration = (current.AverageTaskDuration + stats.ActualDuration) / 2
	updated.LastUpdated = e.now().UTC()

	return updated, nil
}

func validateStats(stats domain.TaskCompletionStats) error {
	est := stats.EstimatedDuration
	if math.IsNaN(est) || math.IsInf(est, 0) || est <= 0 {
		return domain.NewValidationError("estimatedDuration", "must be a positive number of minutes")
	}
	act := stats.ActualDuration
	if math.IsNaN(act) || math.IsInf(act, 0) || act < 0 {
		return domain.NewValidationError("actualDuration", "must be a non-negative number of minutes")
	}
	if stats.Category == "" {
		return domain.NewValidationError("category", "is required")
	}
	if stats.TaskType == "" {
		return domain.NewValidationError("taskType", "is required")
	}
	return nil
}

func bucketOrNew(m map[string]domain.Performance, key string) domain.Performance {
	if p, ok := m[key]; ok {
		return p
	}
	return domain.NewPerformance()
}

func (e *Engine) updateBucket(kind, key string, p domain.Performance, speedRatio float64, skipped bool) domain.Performance {
	speed := (p.AverageSpeed + speedRatio) / 2
	rate := p.CompletionRate * e.config.CompletionDecay
	if !skipped {
		rate += e.config.CompletionBoost
	}

	if clamped := clamp(rate, 0, 100); clamped != rate {
		e.logger.Warn("completion rate out of range, clamping",
			"bucket", kind, "key", key, "value", rate, "clamped", clamped)
		rate = clamped
	}
	if clamped := clamp(speed, e.config.MinSpeed, e.config.MaxSpeed); clamped != speed {
		e.logger.Warn("average speed out of range, clamping",
			"bucket", kind, "key", key, "value", speed, "clamped", clamped)
		speed = clamped
	}

	return domain.Performance{CompletionRate: rate, AverageSpeed: speed}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
