package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQConsumer delivers events from a durable queue bound to the exchange.
type RabbitMQConsumer struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	queue    string
	exchange string
	logger   *slog.Logger

	mu       sync.Mutex
	handlers map[string]Handler
	running  bool
	closed   chan struct{}
}

// NewRabbitMQConsumer dials url and declares queueName.
func NewRabbitMQConsumer(url, queueName string, logger *slog.Logger) (*RabbitMQConsumer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, ch, err := dialExchange(url, ExchangeName)
	if err != nil {
		return nil, err
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	logger.Info("RabbitMQ consumer connected", "queue", queueName, "exchange", ExchangeName)

	return &RabbitMQConsumer{
		conn:     conn,
		channel:  ch,
		queue:    queueName,
		exchange: ExchangeName,
		logger:   logger,
		handlers: make(map[string]Handler),
		closed:   make(chan struct{}),
	}, nil
}

// Subscribe binds the queue to routingKey and routes its deliveries to handler.
func (c *RabbitMQConsumer) Subscribe(routingKey string, handler Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.channel.QueueBind(c.queue, routingKey, c.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	c.handlers[routingKey] = handler
	c.logger.Debug("bound queue to routing key", "queue", c.queue, "routing_key", routingKey)
	return nil
}

// Start consumes until ctx is cancelled or Close is called. Failed handlers
// nack with requeue; undecodable messages are acked and dropped.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("consumer already running")
	}
	c.running = true
	c.mu.Unlock()

	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("started consuming events", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.closed:
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed unexpectedly")
			}
			if err := c.process(ctx, msg); err != nil {
				c.logger.Error("failed to process message", "routing_key", msg.RoutingKey, "error", err)
				if nackErr := msg.Nack(false, true); nackErr != nil {
					c.logger.Error("failed to nack message", "error", nackErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				c.logger.Error("failed to ack message", "error", ackErr)
			}
		}
	}
}

func (c *RabbitMQConsumer) process(ctx context.Context, msg amqp.Delivery) error {
	env := &Envelope{}
	if err := json.Unmarshal(msg.Body, env); err != nil {
		c.logger.Error("failed to unmarshal event", "routing_key", msg.RoutingKey, "error", err)
		return nil
	}
	if env.RoutingKey == "" {
		env.RoutingKey = msg.RoutingKey
	}

	c.mu.Lock()
	handler, ok := c.handlers[env.RoutingKey]
	c.mu.Unlock()
	if !ok {
		return nil
	}

	start := time.Now()
	if err := handler(ctx, env); err != nil {
		return err
	}
	c.logger.Debug("event processed",
		"routing_key", env.RoutingKey,
		"event_id", env.EventID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Close stops Start and closes the connection.
func (c *RabbitMQConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.closed:
		return nil
	default:
		close(c.closed)
	}
	c.running = false

	if err := c.channel.Close(); err != nil {
		c.logger.Warn("error closing channel", "error", err)
	}
	return c.conn.Close()
}
