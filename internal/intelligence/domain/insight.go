package domain

import "time"

// InsightType categorizes detected insights.
type InsightType string

const (
	InsightTypeBottleneck     InsightType = "bottleneck"
	InsightTypePattern        InsightType = "pattern"
	InsightTypeRecommendation InsightType = "recommendation"
	InsightTypeWarning        InsightType = "warning"
	InsightTypeAchievement    InsightType = "achievement"
)

// InsightSeverity ranks how urgently an insight deserves attention.
type InsightSeverity string

const (
	SeverityLow    InsightSeverity = "low"
	SeverityMedium InsightSeverity = "medium"
	SeverityHigh   InsightSeverity = "high"
)

// AIInsight is one finding of the insight detector.
type AIInsight struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId,omitempty"`
	Type            InsightType     `json:"type"`
	Severity        InsightSeverity `json:"severity"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Actionable      bool            `json:"actionable"`
	SuggestedAction string          `json:"suggestedAction,omitempty"`
	RelatedGoalID   string          `json:"relatedGoalId,omitempty"`
	RelatedTaskID   string          `json:"relatedTaskId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	Dismissed       bool            `json:"dismissed"`
}
