package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// InProcessEventBus delivers published envelopes synchronously to handlers
// registered in the same process. It stands in for RabbitMQ in local mode.
type InProcessEventBus struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewInProcessEventBus creates a new in-process event bus.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{
		logger:   logger,
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers handler for routingKey.
func (b *InProcessEventBus) Subscribe(routingKey string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[routingKey] = append(b.handlers[routingKey], handler)
	return nil
}

// Publish decodes the envelope and runs every handler for its routing key.
// A handler error is returned so the outbox retries the message.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	env := &Envelope{}
	if err := json.Unmarshal(payload, env); err != nil {
		b.logger.Error("failed to unmarshal event payload", "routing_key", routingKey, "error", err)
		return nil
	}
	if env.RoutingKey == "" {
		env.RoutingKey = routingKey
	}

	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[env.RoutingKey]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, env); err != nil {
			b.logger.Error("event dispatch failed",
				"routing_key", env.RoutingKey,
				"event_id", env.EventID,
				"error", err,
			)
			return err
		}
	}
	return nil
}

func (b *InProcessEventBus) Close() error { return nil }
