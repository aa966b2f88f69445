package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMotivationMessage(t *testing.T) {
	tests := []struct {
		name     string
		input    MotivationInput
		expected string
	}{
		{"long streak", MotivationInput{StreakDays: 9, TasksToday: 5}, "9-day streak! You're unstoppable!"},
		{"nearly done", MotivationInput{TasksToday: 5, CompletedToday: 4}, "Amazing! You've crushed 80% of today's tasks!"},
		{"halfway", MotivationInput{TasksToday: 4, CompletedToday: 2}, "Halfway there! 2 tasks left today!"},
		{"started", MotivationInput{TasksToday: 10, CompletedToday: 1}, "Great start! Keep the momentum going!"},
		{"milestones", MotivationInput{TasksToday: 3, UpcomingMilestones: 2}, "2 milestone(s) within reach - let's do this!"},
		{"fallback", MotivationInput{EncouragementIndex: 1}, "You've got this! Start with the smallest task."},
		{"fallback wraps", MotivationInput{EncouragementIndex: 7}, "Focus on one thing at a time. You'll be amazed by the results."},
		{"negative index", MotivationInput{EncouragementIndex: -1}, "Small actions, big impact. Begin now!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MotivationMessage(tt.input))
		})
	}
}
