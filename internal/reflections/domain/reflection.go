// Package domain models weekly progress reflections.
package domain

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxAchievements caps the completed task titles listed in a reflection.
	MaxAchievements = 5
	// Week is the reflection window.
	Week = 7 * 24 * time.Hour
)

var (
	// ErrReflectionNotFound is returned when a reflection does not exist.
	ErrReflectionNotFound = errors.New("reflection not found")
	// ErrInvalidWindow is returned when a report window ends before it starts.
	ErrInvalidWindow = errors.New("week start is after week end")
)

// WeeklyReflection summarises a user's progress over one week.
type WeeklyReflection struct {
	ID                uuid.UUID `json:"id"`
	UserID            string    `json:"userId"`
	WeekStart         time.Time `json:"weekStart"`
	WeekEnd           time.Time `json:"weekEnd"`
	Summary           string    `json:"summary"`
	Achievements      []string  `json:"achievements"`
	Challenges        []string  `json:"challenges"`
	Recommendations   []string  `json:"recommendations"`
	GoalsCompleted    int       `json:"goalsCompleted"`
	TasksCompleted    int       `json:"tasksCompleted"`
	ProductivityScore int       `json:"productivityScore"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

// ProductivityScore is the share of completed tasks as a 0-100 integer.
func ProductivityScore(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// Recommendations returns the fixed advice for a productivity score.
func Recommendations(score int) []string {
	switch {
	case score >= 80:
		return []string{
			"Excellent work! Keep up the momentum.",
			"Consider taking on more challenging goals.",
			"Share your productivity strategies with others.",
		}
	case score >= 60:
		return []string{
			"Good progress! Try breaking tasks into smaller steps.",
			"Set specific time blocks for focused work.",
			"Review your goals to ensure they're still aligned with your priorities.",
		}
	default:
		return []string{
			"Don't be discouraged! Start with one small task today.",
			"Consider simplifying your goals or extending deadlines.",
			"Reach out to your AI coach for personalized support.",
		}
	}
}

// Repository persists reflections.
type Repository interface {
	Save(ctx context.Context, r *WeeklyReflection) error
	FindByUserID(ctx context.Context, userID string, limit int) ([]*WeeklyReflection, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
