package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
	"github.com/google/uuid"
)

// DetectInsights runs the insight rules in a fixed order and concatenates
// their findings. The completion stats argument is accepted for callers that
// already hold recent completions; none of the current rules need it.
func (e *Engine) DetectInsights(userID string, goals []domain.Goal, _ []domain.TaskCompletionStats, prefs domain.UserPreferences) []domain.AIInsight {
	now := e.now().UTC()

	insights := make([]domain.AIInsight, 0)
	insights = append(insights, e.bottleneckInsights(userID, prefs, now)...)
	insights = append(insights, e.slowCategoryInsights(userID, prefs, now)...)
	insights = append(insights, e.achievementInsights(userID, prefs, now)...)
	if in, ok := e.overdueInsight(userID, goals, now); ok {
		insights = append(insights, in)
	}
	if in, ok := e.stalledGoalInsight(userID, goals, now); ok {
		insights = append(insights, in)
	}
	return insights
}

func (e *Engine) bottleneckInsights(userID string, prefs domain.UserPreferences, now time.Time) []domain.AIInsight {
	var out []domain.AIInsight
	for _, taskType := range sortedKeys(prefs.TaskTypePerformance) {
		perf := prefs.TaskTypePerformance[taskType]
		if perf.CompletionRate >= e.config.BottleneckRate {
			continue
		}
		out = append(out, newInsight(userID, now, domain.InsightTypeBottleneck, domain.SeverityHigh,
			fmt.Sprintf("Low completion rate for %s tasks", taskType),
			fmt.Sprintf("You complete only %d%% of %s tasks. Consider breaking them into smaller pieces.",
				roundInt(perf.CompletionRate), taskType),
			fmt.Sprintf("Break your next %s task into 2-3 smaller subtasks", taskType),
		))
	}
	return out
}

func (e *Engine) slowCategoryInsights(userID string, prefs domain.UserPreferences, now time.Time) []domain.AIInsight {
	var out []domain.AIInsight
	for _, category := range sortedKeys(prefs.CategoryPerformance) {
		perf := prefs.CategoryPerformance[category]
		if perf.AverageSpeed <= e.config.SlowSpeed {
			continue
		}
		out = append(out, newInsight(userID, now, domain.InsightTypePattern, domain.SeverityMedium,
			fmt.Sprintf("%s tasks take longer than expected", category),
			fmt.Sprintf("Your %s tasks take %d%% of estimated time. Your estimates might be too optimistic.",
				category, roundInt(perf.AverageSpeed*100)),
			fmt.Sprintf("Increase time estimates for %s tasks by %d%%", category, roundInt((perf.AverageSpeed-1)*100)),
		))
	}
	return out
}

func (e *Engine) achievementInsights(userID string, prefs domain.UserPreferences, now time.Time) []domain.AIInsight {
	var out []domain.AIInsight
	for _, category := range sortedKeys(prefs.CategoryPerformance) {
		perf := prefs.CategoryPerformance[category]
		if perf.AverageSpeed >= e.config.FastSpeed || perf.CompletionRate <= e.config.AchievementRate {
			continue
		}
		in := newInsight(userID, now, domain.InsightTypeAchievement, domain.SeverityLow,
			fmt.Sprintf("You excel at %s tasks!", category),
			fmt.Sprintf("You complete %s tasks %d%% faster than estimated with a %d%% completion rate.",
				category, roundInt((1-perf.AverageSpeed)*100), roundInt(perf.CompletionRate)),
			"",
		)
		out = append(out, in)
	}
	return out
}

func (e *Engine) overdueInsight(userID string, goals []domain.Goal, now time.Time) (domain.AIInsight, bool) {
	overdue := 0
	for _, g := range goals {
		for _, t := range g.Tasks {
			if !t.IsCompleted() && t.DueDate != nil && t.DueDate.Before(now) {
				overdue++
			}
		}
	}
	if overdue <= e.config.OverdueTaskLimit {
		return domain.AIInsight{}, false
	}
	return newInsight(userID, now, domain.InsightTypeWarning, domain.SeverityHigh,
		fmt.Sprintf("%d tasks are overdue", overdue),
		"You have multiple overdue tasks. Consider re-prioritizing or adjusting deadlines.",
		"Review and reschedule overdue tasks",
	), true
}

func (e *Engine) stalledGoalInsight(userID string, goals []domain.Goal, now time.Time) (domain.AIInsight, bool) {
	cutoff := now.AddDate(0, 0, -e.config.StalledAfterDays)
	var stalled []domain.Goal
	for _, g := range goals {
		if g.Status != domain.GoalStatusInProgress {
			continue
		}
		if g.CompletedTasks() == 0 && g.UpdatedAt.Before(cutoff) {
			stalled = append(stalled, g)
		}
	}
	if len(stalled) == 0 {
		return domain.AIInsight{}, false
	}
	in := newInsight(userID, now, domain.InsightTypeWarning, domain.SeverityMedium,
		fmt.Sprintf("%d goal(s) have stalled", len(stalled)),
		"Some goals haven't made progress in over a week. Consider breaking them down or adjusting scope.",
		"Review stalled goals and create action plan",
	)
	in.RelatedGoalID = stalled[0].ID
	return in, true
}

// An empty suggestedAction marks the insight as not actionable.
func newInsight(userID string, now time.Time, typ domain.InsightType, sev domain.InsightSeverity, title, description, suggestedAction string) domain.AIInsight {
	return domain.AIInsight{
		ID:              uuid.NewString(),
		UserID:          userID,
		Type:            typ,
		Severity:        sev,
		Title:           title,
		Description:     description,
		Actionable:      suggestedAction != "",
		SuggestedAction: suggestedAction,
		CreatedAt:       now,
	}
}

func sortedKeys(m map[string]domain.Performance) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
