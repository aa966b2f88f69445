package queries

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	goalDomain "github.com/felixgeelhaar/stride/internal/goals/domain"
	"github.com/felixgeelhaar/stride/internal/reflections/domain"
)

// UserGoals lists one user's goals.
type UserGoals interface {
	FindByUserID(ctx context.Context, userID string, status *goalDomain.GoalStatus) ([]*goalDomain.Goal, error)
}

// ProductivityReportQuery requests a report for the window
// [WeekStart, WeekEnd]. A zero WeekEnd means now and a zero WeekStart means
// one week before WeekEnd.
type ProductivityReportQuery struct {
	UserID    string
	WeekStart time.Time
	WeekEnd   time.Time
}

// ProductivityReportHandler handles ProductivityReportQuery.
type ProductivityReportHandler struct {
	goals    UserGoals
	narrator domain.Narrator
	now      func() time.Time
	logger   *slog.Logger
}

// NewProductivityReportHandler creates a new ProductivityReportHandler.
// narrator may be nil, in which case the report carries the default summary.
func NewProductivityReportHandler(goals UserGoals, narrator domain.Narrator, now func() time.Time, logger *slog.Logger) *ProductivityReportHandler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductivityReportHandler{goals: goals, narrator: narrator, now: now, logger: logger}
}

// Handle executes the ProductivityReportQuery. A narrator failure is logged
// and the report is returned with the default summary.
func (h *ProductivityReportHandler) Handle(ctx context.Context, q ProductivityReportQuery) (*domain.ProductivityReport, error) {
	now := h.now().UTC()
	end := q.WeekEnd.UTC()
	if q.WeekEnd.IsZero() {
		end = now
	}
	start := q.WeekStart.UTC()
	if q.WeekStart.IsZero() {
		start = end.Add(-domain.Week)
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s > %s", domain.ErrInvalidWindow, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	goals, err := h.goals.FindByUserID(ctx, q.UserID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}

	report := BuildProductivityReport(q.UserID, goals, start, end, now)
	if h.narrator == nil {
		return report, nil
	}

	narrative, err := h.narrator.Narrate(ctx, report)
	if err != nil {
		h.logger.Warn("productivity report narration failed", "user_id", q.UserID, "error", err)
		return report, nil
	}
	if s := strings.TrimSpace(narrative.Summary); s != "" {
		report.Summary = s
	}
	if narrative.Insights != nil {
		report.Insights = narrative.Insights
	}
	if narrative.Recommendations != nil {
		report.Recommendations = narrative.Recommendations
	}
	return report, nil
}

// BuildProductivityReport computes report statistics over goals. Overdue
// tasks are judged against now.
func BuildProductivityReport(userID string, goals []*goalDomain.Goal, start, end, now time.Time) *domain.ProductivityReport {
	within := func(t time.Time) bool { return !t.Before(start) && !t.After(end) }

	r := &domain.ProductivityReport{
		UserID:          userID,
		WeekStart:       start,
		WeekEnd:         end,
		Bottlenecks:     []string{},
		Summary:         domain.DefaultReportSummary,
		Insights:        []string{},
		Recommendations: []string{},
		GeneratedAt:     now,
	}

	var (
		total, completed, blocked, overdue int
		withDue, onTime                    int
		categories                         = make(map[string]int)
	)
	for _, g := range goals {
		switch g.Status() {
		case goalDomain.GoalStatusInProgress:
			r.GoalsActive++
		case goalDomain.GoalStatusCompleted:
			if within(g.UpdatedAt()) {
				r.GoalsCompleted++
			}
		}
		if c := strings.TrimSpace(g.Category()); c != "" {
			categories[c]++
		}

		for _, t := range g.Tasks() {
			total++
			if within(t.CreatedAt()) {
				r.TasksCreated++
			}
			if t.Status() == goalDomain.TaskStatusBlocked {
				blocked++
			}
			due := t.DueDate()
			if !t.IsCompleted() {
				if due != nil && due.Before(now) {
					overdue++
				}
				continue
			}

			completed++
			at := completedAt(t)
			if within(at) {
				r.TasksCompleted++
			}
			if due != nil {
				withDue++
				if !at.After(*due) {
					onTime++
				}
			}
		}
	}

	if total > 0 {
		r.CompletionRate = float64(completed) / float64(total) * 100
	}
	r.OnTimeRate = 100
	if withDue > 0 {
		r.OnTimeRate = float64(onTime) / float64(withDue) * 100
	}
	r.TopCategory = topCategory(categories)

	if blocked > domain.BottleneckThreshold {
		r.Bottlenecks = append(r.Bottlenecks, fmt.Sprintf("%d tasks are blocked", blocked))
	}
	if overdue > domain.BottleneckThreshold {
		r.Bottlenecks = append(r.Bottlenecks, fmt.Sprintf("%d tasks overdue", overdue))
	}
	return r
}

func completedAt(t *goalDomain.Task) time.Time {
	if at := t.CompletedAt(); at != nil {
		return *at
	}
	return t.UpdatedAt()
}

// topCategory returns the most common category, breaking ties by name.
func topCategory(counts map[string]int) string {
	if len(counts) == 0 {
		return domain.NoCategory
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return names[0]
}
