package services

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEngineConfig(t *testing.T) {
	cfg := DefaultEngineConfig()

	w := cfg.Weights
	assert.InDelta(t, 1.0, w.Urgency+w.Importance+w.Impact+w.Effort+w.UserPreference, 1e-9)
	require.Len(t, cfg.Recommendations, 4)
	for i := 1; i < len(cfg.Recommendations); i++ {
		assert.Greater(t, cfg.Recommendations[i-1].MinScore, cfg.Recommendations[i].MinScore)
	}
}

func TestScorePriority_CriticalBoundary(t *testing.T) {
	engine := newTestEngine()

	task := domain.Task{
		ID:                "t1",
		Title:             "Ship the release",
		Status:            "pending",
		Priority:          "high",
		DueDate:           timePtr(fixedNow.Add(-24 * time.Hour)),
		EstimatedDuration: "30 minutes",
	}
	goal := domain.Goal{ID: "g1", Priority: "high", Category: "career"}
	all := []domain.Task{
		task,
		{ID: "t2", Dependencies: []string{"t1"}},
		{ID: "t3", Dependencies: []string{"t1", "t2"}},
		{ID: "t4", Dependencies: []string{"t1"}},
	}

	score := engine.ScorePriority(task, goal, all, domain.NewUserPreferences("u"))

	assert.Equal(t, domain.PriorityFactors{
		Urgency:        10,
		Importance:     9,
		Impact:         10,
		Effort:         10,
		UserPreference: 5,
	}, score.Factors)
	// 10*3 + 9*3 + 10*2 + 10*1 + 5*1
	assert.Equal(t, 92, score.Score)
	assert.Equal(t, "Critical! Do this ASAP", score.Recommendation)
	assert.Equal(t, "t1", score.TaskID)
	assert.NotEmpty(t, score.ID)
	assert.Equal(t, fixedNow, score.CalculatedAt)
}

func TestScorePriority_Urgency(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name     string
		due      *time.Time
		expected int
	}{
		{"no due date", nil, 5},
		{"overdue", timePtr(fixedNow.Add(-25 * time.Hour)), 10},
		{"later today", timePtr(fixedNow.Add(3 * time.Hour)), 9},
		{"in three days", timePtr(fixedNow.Add(72 * time.Hour)), 7},
		{"in ten days", timePtr(fixedNow.AddDate(0, 0, 10)), 5},
		{"in a month", timePtr(fixedNow.AddDate(0, 1, 0)), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := domain.Task{ID: "t", Priority: "medium", DueDate: tt.due}
			score := engine.ScorePriority(task, domain.Goal{Priority: "medium"}, nil, domain.UserPreferences{})
			assert.Equal(t, tt.expected, score.Factors.Urgency)
		})
	}
}

func TestScorePriority_ImportanceRoundsHalfUp(t *testing.T) {
	engine := newTestEngine()

	score := engine.ScorePriority(domain.Task{ID: "t", Priority: "low"}, domain.Goal{Priority: "medium"}, nil, domain.UserPreferences{})

	// (3+6)/2 = 4.5
	assert.Equal(t, 5, score.Factors.Importance)
}

func TestScorePriority_ImpactFloor(t *testing.T) {
	engine := newTestEngine()

	score := engine.ScorePriority(domain.Task{ID: "t"}, domain.Goal{}, nil, domain.UserPreferences{})
	assert.Equal(t, 4, score.Factors.Impact)
}

func TestScorePriority_Effort(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		estimate string
		expected int
	}{
		{"", 9},
		{"30 minutes", 10},
		{"3 hours", 7},
		{"2 days", 0},
	}

	for _, tt := range tests {
		t.Run(tt.estimate, func(t *testing.T) {
			task := domain.Task{ID: "t", EstimatedDuration: tt.estimate}
			score := engine.ScorePriority(task, domain.Goal{}, nil, domain.UserPreferences{})
			assert.Equal(t, tt.expected, score.Factors.Effort)
		})
	}
}

func TestScorePriority_UserPreference(t *testing.T) {
	engine := newTestEngine()
	prefs := domain.NewUserPreferences("u")
	prefs.TaskTypePerformance["writing"] = domain.Performance{CompletionRate: 86, AverageSpeed: 1}

	score := engine.ScorePriority(domain.Task{ID: "t", Title: "Write the report"}, domain.Goal{}, nil, prefs)
	assert.Equal(t, 9, score.Factors.UserPreference)

	score = engine.ScorePriority(domain.Task{ID: "t", Title: "Plan sprint"}, domain.Goal{}, nil, prefs)
	assert.Equal(t, 5, score.Factors.UserPreference)
}

func TestScorePriority_DeterministicAndBounded(t *testing.T) {
	engine := newTestEngine()
	priorities := []string{"low", "medium", "high", ""}
	estimates := []string{"", "10 minutes", "4 hours", "3 days", "200000000000000000 hours", "99999999999999999999999 days"}
	dues := []*time.Time{nil, timePtr(fixedNow.AddDate(0, 0, -3)), timePtr(fixedNow.AddDate(0, 0, 5)), timePtr(fixedNow.AddDate(0, 2, 0))}

	prefs := domain.NewUserPreferences("u")
	prefs.TaskTypePerformance["coding"] = domain.Performance{CompletionRate: 100, AverageSpeed: 1}

	for _, gp := range priorities {
		for _, tp := range priorities {
			for _, est := range estimates {
				for _, due := range dues {
					task := domain.Task{ID: "t", Title: "Implement feature", Priority: tp, EstimatedDuration: est, DueDate: due}
					goal := domain.Goal{Priority: gp}
					first := engine.ScorePriority(task, goal, nil, prefs)
					second := engine.ScorePriority(task, goal, nil, prefs)

					assert.Equal(t, first.Score, second.Score)
					assert.Equal(t, first.Factors, second.Factors)
					assert.GreaterOrEqual(t, first.Score, 0)
					assert.LessOrEqual(t, first.Score, 100)
					assert.GreaterOrEqual(t, first.Factors.Effort, 0)
					assert.LessOrEqual(t, first.Factors.Effort, 10)
				}
			}
		}
	}
}

func TestScorePriority_UniqueIDs(t *testing.T) {
	engine := newTestEngine()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		s := engine.ScorePriority(domain.Task{ID: "t"}, domain.Goal{}, nil, domain.UserPreferences{})
		assert.False(t, seen[s.ID])
		seen[s.ID] = true
	}
}

func TestRecommendationBands(t *testing.T) {
	engine := newTestEngine()

	assert.Equal(t, "Critical! Do this ASAP", engine.recommendation(80))
	assert.Equal(t, "High priority - schedule today", engine.recommendation(79))
	assert.Equal(t, "High priority - schedule today", engine.recommendation(65))
	assert.Equal(t, "Important - complete this week", engine.recommendation(50))
	assert.Equal(t, "Medium priority - plan ahead", engine.recommendation(35))
	assert.Equal(t, "Low priority - when you have time", engine.recommendation(34))
}

func TestRankTasks(t *testing.T) {
	engine := newTestEngine()
	goal := domain.Goal{
		ID:       "g",
		Priority: "medium",
		Tasks: []domain.Task{
			{ID: "a", Priority: "low", EstimatedDuration: "5 hours"},
			{ID: "b", Priority: "high", DueDate: timePtr(fixedNow.Add(-time.Hour))},
			{ID: "c", Priority: "high", Status: domain.TaskStatusCompleted},
			{ID: "d", Priority: "medium", Dependencies: []string{"a"}},
		},
	}

	ranked := engine.RankTasks(goal, nil, domain.UserPreferences{})

	require.Len(t, ranked, 3)
	assert.Equal(t, "b", ranked[0].TaskID)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
	for _, s := range ranked {
		assert.NotEqual(t, "c", s.TaskID)
	}
}
