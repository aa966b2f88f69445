package services

import (
	"bytes"
	"log/slog"
	"time"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(DefaultEngineConfig(),
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
	)
}

func newLoggingTestEngine(buf *bytes.Buffer, cfg EngineConfig) *Engine {
	return NewEngine(cfg,
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
