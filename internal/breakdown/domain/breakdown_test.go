package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoalBreakdown_Validate(t *testing.T) {
	b := &GoalBreakdown{
		Goal:  GoalOutline{Title: "Run a marathon"},
		Tasks: []TaskOutline{{Title: "Buy shoes", Order: 1}},
	}
	require.NoError(t, b.Validate())

	b.Tasks = append(b.Tasks, TaskOutline{Title: " "})
	err := b.Validate()
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Contains(t, err.Error(), "task 2")

	assert.ErrorIs(t, (&GoalBreakdown{}).Validate(), ErrMalformedResponse)
}
