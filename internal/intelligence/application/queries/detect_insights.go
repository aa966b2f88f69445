package queries

import (
	"context"

	"github.com/felixgeelhaar/stride/internal/intelligence/application/services"
	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
)

// DetectInsightsQuery contains the inputs of the insight rules.
type DetectInsightsQuery struct {
	UserID          string                       `json:"userId"`
	Goals           []domain.Goal                `json:"goals"`
	CompletionStats []domain.TaskCompletionStats `json:"completionStats"`
	Preferences     *domain.UserPreferences      `json:"preferences"`
	// Limit truncates the result when positive.
	Limit int `json:"limit,omitempty"`
}

// DetectInsightsHandler handles the DetectInsightsQuery.
type DetectInsightsHandler struct {
	engine *services.Engine
}

// NewDetectInsightsHandler creates a new DetectInsightsHandler.
func NewDetectInsightsHandler(engine *services.Engine) *DetectInsightsHandler {
	return &DetectInsightsHandler{engine: engine}
}

// Handle executes the DetectInsightsQuery.
func (h *DetectInsightsHandler) Handle(_ context.Context, query DetectInsightsQuery) ([]domain.AIInsight, error) {
	if query.Preferences == nil {
		return nil, domain.NewValidationError("preferences", "is required")
	}

	insights := h.engine.DetectInsights(query.UserID, query.Goals, query.CompletionStats, *query.Preferences)
	if query.Limit > 0 && len(insights) > query.Limit {
		insights = insights[:query.Limit]
	}
	return insights, nil
}
