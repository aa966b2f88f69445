package commands

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/stride/internal/breakdown/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTaskGenerator struct {
	mock.Mock
}

func (m *mockTaskGenerator) BreakdownTask(ctx context.Context, req domain.TaskRequest) (*domain.TaskBreakdown, error) {
	args := m.Called(ctx, req)
	if b := args.Get(0); b != nil {
		return b.(*domain.TaskBreakdown), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestBreakdownTaskHandler(t *testing.T) {
	gen := new(mockTaskGenerator)
	want := &domain.TaskBreakdown{RefinedTitle: "Draft the outline", Subtasks: []string{"List sections", "Write headings"}}
	gen.On("BreakdownTask", mock.Anything, domain.TaskRequest{
		Title:       "Outline",
		Description: "blog post",
		GoalContext: "Start a blog",
	}).Return(want, nil)

	got, err := NewBreakdownTaskHandler(gen, nil).Handle(context.Background(), BreakdownTaskCommand{
		UserID:      "user-1",
		Title:       "  Outline ",
		Description: "blog post",
		GoalContext: "Start a blog",
	})
	require.NoError(t, err)
	assert.Same(t, want, got)
	gen.AssertExpectations(t)
}

func TestBreakdownTaskHandler_Errors(t *testing.T) {
	t.Run("empty title", func(t *testing.T) {
		gen := new(mockTaskGenerator)
		_, err := NewBreakdownTaskHandler(gen, nil).Handle(context.Background(), BreakdownTaskCommand{Title: " "})
		assert.ErrorIs(t, err, domain.ErrEmptyTask)
		gen.AssertNotCalled(t, "BreakdownTask", mock.Anything, mock.Anything)
	})

	t.Run("no generator", func(t *testing.T) {
		_, err := NewBreakdownTaskHandler(nil, nil).Handle(context.Background(), BreakdownTaskCommand{Title: "Outline"})
		assert.ErrorIs(t, err, domain.ErrNotConfigured)
	})

	t.Run("generator failure", func(t *testing.T) {
		gen := new(mockTaskGenerator)
		gen.On("BreakdownTask", mock.Anything, mock.Anything).Return(nil, domain.ErrUnavailable)
		_, err := NewBreakdownTaskHandler(gen, nil).Handle(context.Background(), BreakdownTaskCommand{Title: "Outline"})
		assert.ErrorIs(t, err, domain.ErrUnavailable)
	})
}
