package services

import "fmt"

var encouragements = []string{
	"Every small step counts. Let's make progress today!",
	"You've got this! Start with the smallest task.",
	"Focus on one thing at a time. You'll be amazed by the results.",
	"Today is a fresh start. What will you accomplish?",
	"Small actions, big impact. Begin now!",
}

// MotivationInput summarizes the user's day.
type MotivationInput struct {
	TasksToday         int `json:"tasksToday"`
	CompletedToday     int `json:"completedToday"`
	StreakDays         int `json:"streakDays"`
	UpcomingMilestones int `json:"upcomingMilestones"`
	EncouragementIndex int `json:"encouragementIndex"`
}

// MotivationMessage picks a message from streak, progress and milestones,
// falling back to a fixed encouragement chosen by EncouragementIndex.
func MotivationMessage(in MotivationInput) string {
	rate := 0.0
	if in.TasksToday > 0 {
		rate = float64(in.CompletedToday) / float64(in.TasksToday) * 100
	}

	switch {
	case in.StreakDays > 7:
		return fmt.Sprintf("%d-day streak! You're unstoppable!", in.StreakDays)
	case rate >= 80:
		return fmt.Sprintf("Amazing! You've crushed %d%% of today's tasks!", roundInt(rate))
	case rate >= 50:
		return fmt.Sprintf("Halfway there! %d tasks left today!", in.TasksToday-in.CompletedToday)
	case in.CompletedToday > 0:
		return "Great start! Keep the momentum going!"
	case in.UpcomingMilestones > 0:
		return fmt.Sprintf("%d milestone(s) within reach - let's do this!", in.UpcomingMilestones)
	}

	idx := in.EncouragementIndex % len(encouragements)
	if idx < 0 {
		idx += len(encouragements)
	}
	return encouragements[idx]
}
