package services

import (
	"math"
	"sort"
	"time"

	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
	"github.com/google/uuid"
)

const (
	neutralUrgency    = 5
	neutralPreference = 5
	defaultEstimate   = "1 hour"
)

var priorityValues = map[string]int{
	"low":    3,
	"medium": 6,
	"high":   9,
}

// ScorePriority computes the weighted priority of task within goal.
// allTasks is searched for tasks that depend on task.
func (e *Engine) ScorePriority(task domain.Task, goal domain.Goal, allTasks []domain.Task, prefs domain.UserPreferences) domain.TaskPriorityScore {
	now := e.now()
	factors := domain.PriorityFactors{
		Urgency:        e.urgency(task.DueDate, now),
		Importance:     importance(goal.Priority, task.Priority),
		Impact:         impact(task.ID, allTasks),
		Effort:         effort(task.EstimatedDuration),
		UserPreference: userPreference(task.Title, prefs),
	}

	w := e.config.Weights
	raw := float64(factors.Urgency)*w.Urgency*10 +
		float64(factors.Importance)*w.Importance*10 +
		float64(factors.Impact)*w.Impact*10 +
		float64(factors.Effort)*w.Effort*10 +
		float64(factors.UserPreference)*w.UserPreference*10
	score := int(math.Round(raw))

	return domain.TaskPriorityScore{
		ID:             uuid.NewString(),
		TaskID:         task.ID,
		Score:          score,
		Factors:        factors,
		Recommendation: e.recommendation(score),
		CalculatedAt:   now.UTC(),
	}
}

// RankTasks scores every open task of goal, highest first. Ties keep the
// goal's task order.
func (e *Engine) RankTasks(goal domain.Goal, allTasks []domain.Task, prefs domain.UserPreferences) []domain.TaskPriorityScore {
	if allTasks == nil {
		allTasks = goal.Tasks
	}
	scores := make([]domain.TaskPriorityScore, 0, len(goal.Tasks))
	for _, t := range goal.Tasks {
		if t.IsCompleted() || t.Status == "cancelled" {
			continue
		}
		scores = append(scores, e.ScorePriority(t, goal, allTasks, prefs))
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

func (e *Engine) urgency(due *time.Time, now time.Time) int {
	if due == nil {
		return neutralUrgency
	}
	days := math.Ceil(due.Sub(now).Hours() / 24)
	switch {
	case days < 0:
		return 10
	case days < 2:
		return 9
	case days < 7:
		return 7
	case days < 14:
		return 5
	default:
		return 3
	}
}

// Unknown priorities contribute 0.
func importance(goalPriority, taskPriority string) int {
	return int(math.Round(float64(priorityValues[goalPriority]+priorityValues[taskPriority]) / 2))
}

// Zero dependents still scores 4.
func impact(taskID string, allTasks []domain.Task) int {
	dependents := 0
	for _, t := range allTasks {
		if t.DependsOn(taskID) {
			dependents++
		}
	}
	return min(10, dependents*2+4)
}

func effort(estimate string) int {
	if estimate == "" {
		estimate = defaultEstimate
	}
	hours := ParseDuration(estimate) / 60
	return max(0, 10-hours)
}

func userPreference(title string, prefs domain.UserPreferences) int {
	perf, ok := prefs.TaskTypePerformance[ExtractTaskType(title)]
	if !ok {
		return neutralPreference
	}
	return int(math.Round(perf.CompletionRate / 10))
}

func (e *Engine) recommendation(score int) string {
	for _, band := range e.config.Recommendations {
		if score >= band.MinScore {
			return band.Text
		}
	}
	return e.config.FallbackRecommendation
}
