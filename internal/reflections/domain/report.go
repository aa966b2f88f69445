package domain

import (
	"context"
	"time"
)

const (
	// BottleneckThreshold is the count above which blocked or overdue tasks
	// are reported as a bottleneck.
	BottleneckThreshold = 2
	// DefaultReportSummary is used when no narrator is available.
	DefaultReportSummary = "Keep up the great work!"
	// NoCategory is reported when the user has no categorised goals.
	NoCategory = "none"
)

// ProductivityReport is an on-demand snapshot of one user's week. It is
// computed from goals and never stored.
type ProductivityReport struct {
	UserID          string    `json:"userId"`
	WeekStart       time.Time `json:"weekStart"`
	WeekEnd         time.Time `json:"weekEnd"`
	TasksCreated    int       `json:"tasksCreated"`
	TasksCompleted  int       `json:"tasksCompleted"`
	GoalsActive     int       `json:"goalsActive"`
	GoalsCompleted  int       `json:"goalsCompleted"`
	CompletionRate  float64   `json:"completionRate"`
	OnTimeRate      float64   `json:"onTimeRate"`
	TopCategory     string    `json:"topCategory"`
	Bottlenecks     []string  `json:"bottleneckAreas"`
	Summary         string    `json:"aiSummary"`
	Insights        []string  `json:"insights"`
	Recommendations []string  `json:"recommendations"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

// Narrative is the prose attached to a report.
type Narrative struct {
	Summary         string   `json:"summary"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

// Narrator writes a narrative for computed report statistics.
type Narrator interface {
	Narrate(ctx context.Context, report *ProductivityReport) (*Narrative, error)
}
