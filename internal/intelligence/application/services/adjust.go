package services

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
)

// speedFactor averages the category and task-type speeds, treating a
// missing bucket as on-estimate.
func speedFactor(task domain.Task, prefs domain.UserPreferences, category string) float64 {
	catSpeed := 1.0
	if p, ok := prefs.CategoryPerformance[category]; ok && p.AverageSpeed > 0 {
		catSpeed = p.AverageSpeed
	}
	typeSpeed := 1.0
	if p, ok := prefs.TaskTypePerformance[ExtractTaskType(task.Title)]; ok && p.AverageSpeed > 0 {
		typeSpeed = p.AverageSpeed
	}
	return (catSpeed + typeSpeed) / 2
}

// AdjustTaskEstimate rescales the task estimate by the user's historical
// speed and formats it back to text.
func (e *Engine) AdjustTaskEstimate(task domain.Task, prefs domain.UserPreferences, category string) string {
	estimate := task.EstimatedDuration
	if estimate == "" {
		estimate = defaultEstimate
	}
	adjusted := int(math.Round(float64(ParseDuration(estimate)) * speedFactor(task, prefs, category)))
	return FormatMinutes(adjusted)
}

// AdjustTaskDeadline pushes the due date out when the user is
// consistently slower than estimated. Tasks without a due date stay nil.
func (e *Engine) AdjustTaskDeadline(task domain.Task, prefs domain.UserPreferences, category string) *time.Time {
	if task.DueDate == nil {
		return nil
	}
	due := *task.DueDate
	speed := speedFactor(task, prefs, category)
	if speed <= e.config.DeadlineExtendSpeed {
		return &due
	}
	estimate := task.EstimatedDuration
	if estimate == "" {
		estimate = defaultEstimate
	}
	extraDays := int(math.Ceil(float64(ParseDuration(estimate)) * (speed - 1) / MinutesPerDay))
	adjusted := due.AddDate(0, 0, extraDays)
	return &adjusted
}

// FormatMinutes renders minutes as "N minutes" below an hour and
// "X.Y hours" otherwise.
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d minutes", minutes)
	}
	hours := math.Round(float64(minutes)/60*10) / 10
	return strconv.FormatFloat(hours, 'f', -1, 64) + " hours"
}
