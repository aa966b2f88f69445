package queries

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/stride/internal/reflections/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Save(ctx context.Context, r *domain.WeeklyReflection) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockRepository) FindByUserID(ctx context.Context, userID string, limit int) ([]*domain.WeeklyReflection, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]*domain.WeeklyReflection), args.Error(1)
}

func (m *mockRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func TestListReflectionsHandler_DefaultLimit(t *testing.T) {
	repo := new(mockRepository)
	want := []*domain.WeeklyReflection{{UserID: "user-1"}}
	repo.On("FindByUserID", mock.Anything, "user-1", DefaultListLimit).Return(want, nil)

	got, err := NewListReflectionsHandler(repo).Handle(context.Background(), ListReflectionsQuery{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	repo.AssertExpectations(t)
}

func TestListReflectionsHandler_ExplicitLimit(t *testing.T) {
	repo := new(mockRepository)
	repo.On("FindByUserID", mock.Anything, "user-1", 3).Return([]*domain.WeeklyReflection{}, nil)

	_, err := NewListReflectionsHandler(repo).Handle(context.Background(), ListReflectionsQuery{UserID: "user-1", Limit: 3})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
