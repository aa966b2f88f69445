// Package api exposes goals and the intelligence engine over HTTP.
package api

import (
	"cmp"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/felixgeelhaar/stride/internal/app"
	"github.com/felixgeelhaar/stride/pkg/observability"
	"github.com/google/uuid"
)

const (
	// UserIDHeader carries the caller's identity, set by an upstream proxy.
	UserIDHeader        = "X-User-ID"
	RequestIDHeader     = "X-Request-ID"
	CorrelationIDHeader = "X-Correlation-ID"

	maxBodyBytes = 1 << 20
)

// Server is the HTTP API server.
type Server struct {
	mux    *http.ServeMux
	server *http.Server
	logger *slog.Logger

	goals   *GoalsHandler
	ai      *AIHandler
	health  *observability.HealthRegistry
	metrics observability.Metrics

	defaultUserID string
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// DefaultUserID is used when a request has no X-User-ID header.
	DefaultUserID string
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:          "0.0.0.0:8080",
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  45 * time.Second,
		IdleTimeout:   60 * time.Second,
		DefaultUserID: "local-user",
	}
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, goals *GoalsHandler, ai *AIHandler, health *observability.HealthRegistry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		goals:         goals,
		ai:            ai,
		health:        health,
		metrics:       observability.NoopMetrics{},
		defaultUserID: cfg.DefaultUserID,
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// NewServerFromContainer wires the server from the application container.
func NewServerFromContainer(cfg ServerConfig, c *app.Container) *Server {
	goals := NewGoalsHandler(GoalsHandlerConfig{
		CreateGoal: c.CreateGoalHandler,
		UpdateGoal: c.UpdateGoalHandler,
		DeleteGoal: c.DeleteGoalHandler,
		UpdateTask: c.UpdateTaskHandler,
		GetGoal:    c.GetGoalHandler,
		ListGoals:  c.ListGoalsHandler,
		RankTasks:  c.RankGoalTasksHandler,
		Deadlines:  c.ListDeadlinesHandler,
		Logger:     c.Logger,
	})
	ai := NewAIHandler(AIHandlerConfig{
		CalculatePriority: c.CalculatePriorityHandler,
		DetectInsights:    c.DetectInsightsHandler,
		RecordCompletion:  c.RecordCompletionHandler,
		GetPreferences:    c.GetPreferencesHandler,
		BreakdownGoal:     c.BreakdownGoalHandler,
		BreakdownTask:     c.BreakdownTaskHandler,
		ListReflections:   c.ListReflectionsHandler,
		Report:            c.ProductivityReportHandler,
		Logger:            c.Logger,
	})
	s := NewServer(cfg, goals, ai, c.Health, c.Logger)
	if c.Metrics != nil {
		s.SetMetrics(c.Metrics)
	}
	return s
}

// SetMetrics records per-request counters and durations into m.
func (s *Server) SetMetrics(m observability.Metrics) {
	s.metrics = m
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Goals
	s.mux.HandleFunc("POST /api/v1/goals", s.goals.CreateGoal)
	s.mux.HandleFunc("GET /api/v1/goals", s.goals.ListGoals)
	s.mux.HandleFunc("GET /api/v1/goals/{goalID}", s.goals.GetGoal)
	s.mux.HandleFunc("PATCH /api/v1/goals/{goalID}", s.goals.UpdateGoal)
	s.mux.HandleFunc("DELETE /api/v1/goals/{goalID}", s.goals.DeleteGoal)
	s.mux.HandleFunc("PATCH /api/v1/goals/{goalID}/tasks/{taskID}", s.goals.UpdateTask)
	s.mux.HandleFunc("GET /api/v1/goals/{goalID}/priorities", s.goals.Priorities)
	s.mux.HandleFunc("GET /api/v1/deadlines", s.goals.Deadlines)
	s.mux.HandleFunc("GET /api/v1/calendar.ics", s.goals.CalendarFeed)

	// Intelligence
	s.mux.HandleFunc("POST /api/v1/ai/calculate-priority", s.ai.CalculatePriority)
	s.mux.HandleFunc("POST /api/v1/ai/insights", s.ai.Insights)
	s.mux.HandleFunc("POST /api/v1/ai/completions", s.ai.RecordCompletion)
	s.mux.HandleFunc("POST /api/v1/ai/breakdown-goal", s.ai.BreakdownGoal)
	s.mux.HandleFunc("POST /api/v1/ai/breakdown-task", s.ai.BreakdownTask)
	s.mux.HandleFunc("POST /api/v1/ai/motivation", s.ai.Motivation)
	s.mux.HandleFunc("GET /api/v1/preferences", s.ai.GetPreferences)
	s.mux.HandleFunc("GET /api/v1/reflections", s.ai.ListReflections)
	s.mux.HandleFunc("GET /api/v1/reports/productivity", s.ai.ProductivityReport)
}

// Handler returns the routed handler wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	return s.withRequestContext(s.mux)
}

// withRequestContext stamps each request with a request ID and the caller's
// user ID, and logs it once it completes.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		userID := r.Header.Get(UserIDHeader)
		if userID == "" {
			userID = s.defaultUserID
		}

		ctx := observability.WithRequestID(r.Context(), requestID)
		ctx = observability.WithCorrelationID(ctx, cmp.Or(r.Header.Get(CorrelationIDHeader), requestID))
		ctx = observability.WithUserID(ctx, userID)
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		r.Body = http.MaxBytesReader(rec, r.Body, maxBodyBytes)
		req := r.WithContext(ctx)
		next.ServeHTTP(rec, req)

		elapsed := time.Since(start)
		tags := []observability.Tag{
			observability.T("method", r.Method),
			observability.T("route", req.Pattern),
			observability.T("status", strconv.Itoa(rec.status)),
		}
		s.metrics.Counter(observability.MetricHTTPRequests, 1, tags...)
		s.metrics.Timing(observability.MetricHTTPRequestDuration, elapsed, tags...)

		s.logger.InfoContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	s.health.Handler()(w, r)
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

func userID(r *http.Request) string {
	return observability.UserIDFromContext(r.Context())
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}
