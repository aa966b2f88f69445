package cli

import (
	"testing"
	"time"

	goalQueries "github.com/felixgeelhaar/stride/internal/goals/application/queries"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t time.Time) *time.Time { return &t }

func TestSummarizeDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	goals := []goalQueries.GoalDTO{
		{
			Title:      "Ship v1",
			TargetDate: at(now.AddDate(0, 0, 3)),
			Tasks: []goalQueries.TaskDTO{
				{ID: uuid.New(), Title: "Write docs", Status: "pending", DueDate: at(now.AddDate(0, 0, -2))},
				{ID: uuid.New(), Title: "Tag release", Status: "pending", DueDate: at(now.Add(2 * time.Hour))},
				{ID: uuid.New(), Title: "Fix tests", Status: "completed", CompletedAt: at(now.Add(-time.Hour))},
				{ID: uuid.New(), Title: "Review PR", Status: "completed", CompletedAt: at(now.AddDate(0, 0, -1))},
				{ID: uuid.New(), Title: "Old cleanup", Status: "completed", CompletedAt: at(now.AddDate(0, 0, -2))},
				{ID: uuid.New(), Title: "Dropped", Status: "cancelled", DueDate: at(now.AddDate(0, 0, -5))},
			},
		},
		{
			Title:      "Later",
			TargetDate: at(now.AddDate(0, 1, 0)),
		},
	}

	d := summarizeDay(goals, now)

	require.Len(t, d.overdue, 1)
	assert.Equal(t, "Write docs", d.overdue[0].task)
	require.Len(t, d.dueToday, 1)
	assert.Equal(t, "Tag release", d.dueToday[0].task)
	assert.Equal(t, 1, d.completedToday)
	assert.Equal(t, 2, d.tasksToday)
	assert.Equal(t, 3, d.streakDays)
	assert.Equal(t, 1, d.upcomingMilestones)
}

func TestSummarizeDay_StreakCountsFromYesterday(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	goals := []goalQueries.GoalDTO{{
		Tasks: []goalQueries.TaskDTO{
			{Status: "completed", CompletedAt: at(now.AddDate(0, 0, -1))},
			{Status: "completed", CompletedAt: at(now.AddDate(0, 0, -2))},
			{Status: "completed", CompletedAt: at(now.AddDate(0, 0, -4))},
		},
	}}

	d := summarizeDay(goals, now)
	assert.Equal(t, 2, d.streakDays)
	assert.Zero(t, d.completedToday)
}

func TestDaySummary_Motivation(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	d := daySummary{tasksToday: 4, completedToday: 2, streakDays: 1}

	in := d.motivation(now)
	assert.Equal(t, 4, in.TasksToday)
	assert.Equal(t, 2, in.CompletedToday)
	assert.Equal(t, 5, in.EncouragementIndex)
}
