package services

import (
	"log/slog"
	"time"
)

// Engine scores tasks, learns from completions and detects insights.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	config EngineConfig
	now    func() time.Time
	logger *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the logger used for anomaly reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine with the given configuration.
func NewEngine(cfg EngineConfig, opts ...Option) *Engine {
	e := &Engine{
		config: cfg,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() EngineConfig {
	return e.config
}
