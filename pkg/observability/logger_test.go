package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatText, Output: &buf, ServiceName: "stride"})

	logger.Info("scored task", "score", 72)
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "scored task")
	assert.Contains(t, out, "score=72")
	assert.Contains(t, out, "service=stride")
	assert.NotContains(t, out, "hidden")
}

func TestNewLogger_JSONWithContextIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf, ServiceName: "stride", ServiceVersion: "1.2.0"})

	ctx := WithCorrelationID(context.Background(), "corr-1")
	ctx = WithRequestID(ctx, "req-1")
	logger.InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "stride", rec["service"])
	assert.Equal(t, "1.2.0", rec["version"])
	assert.Equal(t, "corr-1", rec[CorrelationIDKey])
	assert.Equal(t, "req-1", rec[RequestIDKey])
}

func TestNewLogger_WithAttrsKeepsServiceAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf, ServiceName: "stride"}).With("component", "worker")

	logger.Warn("slow")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "worker", rec["component"])
	assert.Equal(t, "stride", rec["service"])
}

func TestNewLogger_RotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stride.log")
	var buf bytes.Buffer
	cfg := DefaultLogConfig()
	cfg.Output = &buf
	cfg.File = path

	NewLogger(cfg).Error("disk too")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "disk too")
	assert.Contains(t, buf.String(), "disk too")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel(LogLevelDebug))
	assert.Equal(t, slog.LevelWarn, ParseLevel(LogLevelWarn))
	assert.Equal(t, slog.LevelError, ParseLevel(LogLevelError))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestContextIDs(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "")
	assert.NotEmpty(t, CorrelationIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(ctx))

	ctx = WithUserID(ctx, "u-9")
	assert.Equal(t, "u-9", UserIDFromContext(ctx))

	assert.Empty(t, CausationIDFromContext(ctx))
	ctx = WithCausationID(ctx, "evt-1")
	assert.Equal(t, "evt-1", CausationIDFromContext(ctx))
	assert.NotEqual(t, "evt-1", CorrelationIDFromContext(ctx))
}

func TestHealthRegistry(t *testing.T) {
	reg := NewHealthRegistry()
	reg.Register("database", DatabaseHealthChecker(func(context.Context) error { return nil }))
	reg.Register("redis", RedisHealthChecker(func(context.Context) error { return errors.New("refused") }))

	health := reg.GetOverallHealth(context.Background())
	assert.Equal(t, HealthStatusDegraded, health.Status)
	assert.Equal(t, HealthStatusHealthy, health.Checks["database"].Status)

	reg.Register("database", DatabaseHealthChecker(func(context.Context) error { return errors.New("gone") }))
	rec := httptest.NewRecorder()
	reg.Handler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unhealthy"`)
}

func TestHealthRegistry_CheckTimeout(t *testing.T) {
	reg := NewHealthRegistry()
	reg.timeout = 10 * time.Millisecond
	reg.Register("database", DatabaseHealthChecker(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	health := reg.GetOverallHealth(context.Background())
	assert.Equal(t, HealthStatusUnhealthy, health.Status)
	assert.Contains(t, health.Checks["database"].Message, "deadline exceeded")
}
