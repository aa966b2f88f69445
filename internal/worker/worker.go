// Package worker runs the background side of stride: outbox delivery, the
// task-completion consumer and the periodic reflection jobs.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/felixgeelhaar/stride/internal/app"
	reflectionCommands "github.com/felixgeelhaar/stride/internal/reflections/application/commands"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/stride/pkg/observability"
)

// QueueTaskCompletions is the durable queue the completion consumer reads.
const QueueTaskCompletions = "stride.intelligence.task-completions"

const (
	jobReflections = "reflections"
	jobCleanup     = "cleanup"
)

// Worker owns the scheduled jobs of a container.
type Worker struct {
	c       *app.Container
	logger  *slog.Logger
	metrics *observability.InMemoryMetrics
	now     func() time.Time
}

// New creates a worker for c.
func New(c *app.Container) *Worker {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := c.Metrics
	if metrics == nil {
		metrics = observability.NewInMemoryMetrics()
	}
	return &Worker{
		c:       c,
		logger:  logger.With("component", "worker"),
		metrics: metrics,
		now:     time.Now,
	}
}

// Run starts the outbox processor, the broker consumer when events leave the
// process, and the job tickers. It blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	cfg := w.c.Config

	if err := w.c.OutboxProcessor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start outbox processor: %w", err)
	}
	defer w.c.OutboxProcessor.Stop()

	var wg sync.WaitGroup
	if !w.c.IsLocalEventing() {
		consumer, err := eventbus.NewRabbitMQConsumer(cfg.RabbitMQURL, QueueTaskCompletions, w.logger)
		if err != nil {
			return fmt.Errorf("failed to start completion consumer: %w", err)
		}
		defer consumer.Close()
		if err := w.c.TaskCompletedConsumer.Register(consumer); err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("completion consumer stopped", "error", err)
			}
		}()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		w.every(ctx, cfg.ReflectionInterval, func(ctx context.Context) { _ = w.GenerateReflections(ctx) })
	}()
	go func() {
		defer wg.Done()
		w.every(ctx, cfg.OutboxCleanupInterval, func(ctx context.Context) { _ = w.Cleanup(ctx) })
	}()
	go func() {
		defer wg.Done()
		w.every(ctx, cfg.OutboxStatsInterval, func(context.Context) { w.RecordOutboxStats() })
	}()

	<-ctx.Done()
	wg.Wait()
	return nil
}

func (w *Worker) every(ctx context.Context, interval time.Duration, job func(context.Context)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}

// GenerateReflections runs the weekly reflection job once.
func (w *Worker) GenerateReflections(ctx context.Context) error {
	start := w.now()
	res, err := w.c.GenerateReflectionsHandler.Handle(ctx, reflectionCommands.GenerateReflectionsCommand{Now: start})
	w.finishJob(jobReflections, start, err)
	if err != nil {
		w.logger.Error("reflection job failed", "error", err)
		return err
	}
	w.metrics.Counter(observability.MetricReflectionsGenerated, int64(res.Generated))
	w.logger.Info("reflection job completed", "generated", res.Generated, "failed", res.Failed)
	return nil
}

// Cleanup drops reflections past retention and published outbox messages
// older than the outbox retention window.
func (w *Worker) Cleanup(ctx context.Context) error {
	cfg := w.c.Config
	start := w.now()

	var errs []error
	deleted, err := w.c.CleanupReflectionsHandler.Handle(ctx, reflectionCommands.CleanupReflectionsCommand{
		RetentionMonths: cfg.RetentionMonths,
		Now:             start,
	})
	if err != nil {
		errs = append(errs, err)
	} else {
		w.metrics.Counter(observability.MetricReflectionsDeleted, deleted)
	}

	if cfg.OutboxRetentionDays > 0 {
		cutoff := start.AddDate(0, 0, -cfg.OutboxRetentionDays)
		n, err := w.c.OutboxRepo.DeleteOld(ctx, cutoff)
		if err != nil {
			errs = append(errs, err)
		} else {
			w.metrics.Counter(observability.MetricOutboxDeleted, n)
			if n > 0 {
				w.logger.Info("outbox cleanup completed", "deleted", n, "retention_days", cfg.OutboxRetentionDays)
			}
		}
	}

	err = errors.Join(errs...)
	w.finishJob(jobCleanup, start, err)
	if err != nil {
		w.logger.Error("cleanup job failed", "error", err)
	}
	return err
}

func (w *Worker) finishJob(name string, start time.Time, err error) {
	tag := observability.T("job", name)
	w.metrics.Counter(observability.MetricJobRuns, 1, tag)
	w.metrics.Timing(observability.MetricJobDuration, w.now().Sub(start), tag)
	if err != nil {
		w.metrics.Counter(observability.MetricJobErrors, 1, tag)
	}
}

// RecordOutboxStats refreshes the lag gauge and logs delivery totals.
func (w *Worker) RecordOutboxStats() {
	stats := w.c.OutboxProcessor.GetStats()
	w.metrics.Gauge(observability.MetricOutboxLagSeconds, stats.LagSeconds)
	w.logger.Info("outbox stats",
		"running", stats.IsRunning,
		"published", stats.PublishedCount,
		"failed", stats.FailedCount,
		"dead", stats.DeadCount,
		"lag_seconds", stats.LagSeconds,
		"last_error", stats.LastError,
	)
}

// Handler serves /healthz, /readyz and /metrics.
func (w *Worker) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(rw http.ResponseWriter, r *http.Request) {
		stats := w.c.OutboxProcessor.GetStats()
		writeJSON(rw, http.StatusOK, map[string]any{
			"status":            "ok",
			"running":           stats.IsRunning,
			"published":         stats.PublishedCount,
			"failed":            stats.FailedCount,
			"dead":              stats.DeadCount,
			"lag_seconds":       stats.LagSeconds,
			"last_processed_at": stats.LastProcessedAt,
			"last_error_at":     stats.LastErrorAt,
			"last_error":        stats.LastError,
		})
	})
	mux.Handle("GET /readyz", w.c.Health.Handler())
	mux.HandleFunc("GET /metrics", func(rw http.ResponseWriter, r *http.Request) {
		writeJSON(rw, http.StatusOK, w.metrics.Snapshot())
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
