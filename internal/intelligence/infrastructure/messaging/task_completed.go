// Package messaging feeds goal activity from the event bus into the
// preference learner.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/stride/internal/intelligence/application/commands"
	"github.com/felixgeelhaar/stride/internal/intelligence/application/services"
	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
	sharedDomain "github.com/felixgeelhaar/stride/internal/shared/domain"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/stride/pkg/observability"
	"github.com/google/uuid"
)

// RoutingKeyTaskCompleted is published by the goals context.
const RoutingKeyTaskCompleted = "goals.task.completed"

type taskCompletedPayload struct {
	UserID            string    `json:"user_id"`
	TaskID            uuid.UUID `json:"task_id"`
	Title             string    `json:"title"`
	Category          string    `json:"category"`
	EstimatedDuration string    `json:"estimated_duration"`
	ActualDuration    string    `json:"actual_duration"`
	CompletedAt       time.Time `json:"completed_at"`
}

type completionRecorder interface {
	Handle(ctx context.Context, cmd commands.RecordCompletionCommand) (domain.UserPreferences, error)
}

// TaskCompletedConsumer turns TaskCompleted events into completion stats.
type TaskCompletedConsumer struct {
	recorder completionRecorder
	logger   *slog.Logger
}

// NewTaskCompletedConsumer creates a new consumer.
func NewTaskCompletedConsumer(recorder completionRecorder, logger *slog.Logger) *TaskCompletedConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskCompletedConsumer{recorder: recorder, logger: logger}
}

// Register subscribes the consumer on sub.
func (c *TaskCompletedConsumer) Register(sub eventbus.Subscriber) error {
	return sub.Subscribe(RoutingKeyTaskCompleted, c.Handle)
}

// Handle is an eventbus.Handler. Events that can never be applied are logged
// and acknowledged; anything else is returned for redelivery.
func (c *TaskCompletedConsumer) Handle(ctx context.Context, env *eventbus.Envelope) error {
	var p taskCompletedPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		c.logger.Error("dropping undecodable task completion", "event_id", env.EventID, "error", err)
		return nil
	}

	ctx = traceContext(ctx, env)
	stats := StatsFromCompletion(p.TaskID.String(), p.Title, p.Category, p.EstimatedDuration, p.ActualDuration, p.CompletedAt)
	_, err := c.recorder.Handle(ctx, commands.RecordCompletionCommand{UserID: p.UserID, Stats: stats})
	if errors.Is(err, domain.ErrInvalidInput) {
		c.logger.Warn("dropping invalid task completion",
			"event_id", env.EventID,
			"user_id", p.UserID,
			"error", err,
		)
		return nil
	}
	return err
}

// traceContext carries the event's correlation ID forward and marks the
// event itself as the cause of whatever the recorder emits.
func traceContext(ctx context.Context, env *eventbus.Envelope) context.Context {
	var md sharedDomain.EventMetadata
	if len(env.Metadata) > 0 && json.Unmarshal(env.Metadata, &md) == nil && md.CorrelationID != uuid.Nil {
		ctx = observability.WithCorrelationID(ctx, md.CorrelationID.String())
	}
	return observability.WithCausationID(ctx, env.EventID.String())
}

// StatsFromCompletion converts the textual durations of a completed task into
// minutes. A task without a recorded actual duration is taken to have run
// exactly as estimated.
func StatsFromCompletion(taskID, title, category, estimated, actual string, completedAt time.Time) domain.TaskCompletionStats {
	estimatedMinutes := services.ParseDuration(estimated)
	actualMinutes := estimatedMinutes
	if actual != "" {
		actualMinutes = services.ParseDuration(actual)
	}
	return domain.TaskCompletionStats{
		TaskID:            taskID,
		Category:          category,
		TaskType:          services.ExtractTaskType(title),
		EstimatedDuration: float64(estimatedMinutes),
		ActualDuration:    float64(actualMinutes),
		CompletedAt:       completedAt,
	}
}
