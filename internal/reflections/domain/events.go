package domain

import (
	"time"

	"github.com/felixgeelhaar/stride/internal/shared/domain"
)

const (
	AggregateType = "WeeklyReflection"

	RoutingKeyReflectionGenerated = "reflections.generated"
)

// ReflectionGenerated is emitted after a weekly reflection is stored.
type ReflectionGenerated struct {
	domain.BaseEvent
	UserID            string    `json:"user_id"`
	WeekStart         time.Time `json:"week_start"`
	TasksCompleted    int       `json:"tasks_completed"`
	ProductivityScore int       `json:"productivity_score"`
}

// NewReflectionGenerated creates a ReflectionGenerated event.
func NewReflectionGenerated(r *WeeklyReflection) *ReflectionGenerated {
	return &ReflectionGenerated{
		BaseEvent:         domain.NewBaseEvent(r.ID, AggregateType, RoutingKeyReflectionGenerated, r.GeneratedAt),
		UserID:            r.UserID,
		WeekStart:         r.WeekStart,
		TasksCompleted:    r.TasksCompleted,
		ProductivityScore: r.ProductivityScore,
	}
}
