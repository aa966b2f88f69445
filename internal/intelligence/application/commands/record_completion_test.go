package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/felixgeelhaar/stride/internal/intelligence/application/services"
	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPreferencesRepo struct {
	mock.Mock
}

func (m *mockPreferencesRepo) FindByUserID(ctx context.Context, userID string) (domain.UserPreferences, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.UserPreferences), args.Error(1)
}

func (m *mockPreferencesRepo) Save(ctx context.Context, prefs domain.UserPreferences) (int, error) {
	args := m.Called(ctx, prefs)
	return args.Int(0), args.Error(1)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	return m.Called(ctx, id, errMsg, nextRetryAt).Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return int64(args.Int(0)), args.Error(1)
}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type txKey struct{}

func testEngine() *services.Engine {
	return services.NewEngine(services.DefaultEngineConfig(),
		services.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
}

func sampleStats() domain.TaskCompletionStats {
	return domain.TaskCompletionStats{
		TaskID:            "task-1",
		Category:          "career",
		TaskType:          "coding",
		EstimatedDuration: 60,
		ActualDuration:    90,
		CompletedAt:       time.Now(),
	}
}

func TestRecordCompletionHandler_Handle(t *testing.T) {
	ctx := context.Background()
	txCtx := context.WithValue(ctx, txKey{}, "tx")

	t.Run("creates preferences on first completion", func(t *testing.T) {
		prefsRepo := new(mockPreferencesRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewRecordCompletionHandler(prefsRepo, outboxRepo, uow, testEngine(), nil)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		prefsRepo.On("FindByUserID", txCtx, "user-1").Return(domain.UserPreferences{}, domain.ErrPreferencesNotFound)
		prefsRepo.On("Save", txCtx, mock.MatchedBy(func(p domain.UserPreferences) bool {
			return p.UserID == "user-1" && p.Version == 0 &&
				p.CategoryPerformance["career"] == domain.Performance{CompletionRate: 5, AverageSpeed: 1.25}
		})).Return(1, nil)
		outboxRepo.On("SaveBatch", txCtx, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return len(msgs) == 1 && msgs[0].RoutingKey == domain.RoutingKeyPreferencesUpdated
		})).Return(nil)

		prefs, err := handler.Handle(ctx, RecordCompletionCommand{UserID: "user-1", Stats: sampleStats()})

		require.NoError(t, err)
		assert.Equal(t, 1, prefs.Version)
		assert.Equal(t, 45.0, prefs.AverageTaskDuration)
		uow.AssertExpectations(t)
		prefsRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("retries on concurrent update", func(t *testing.T) {
		prefsRepo := new(mockPreferencesRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewRecordCompletionHandler(prefsRepo, outboxRepo, uow, testEngine(), nil)

		stale := domain.NewUserPreferences("user-1")
		stale.Version = 2
		fresh := domain.NewUserPreferences("user-1")
		fresh.CategoryPerformance["career"] = domain.Performance{CompletionRate: 50, AverageSpeed: 1}
		fresh.Version = 3

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil).Once()
		uow.On("Commit", txCtx).Return(nil).Once()
		prefsRepo.On("FindByUserID", txCtx, "user-1").Return(stale, nil).Once()
		prefsRepo.On("FindByUserID", txCtx, "user-1").Return(fresh, nil).Once()
		prefsRepo.On("Save", txCtx, mock.MatchedBy(func(p domain.UserPreferences) bool { return p.Version == 2 })).
			Return(0, domain.ErrConcurrentUpdate).Once()
		prefsRepo.On("Save", txCtx, mock.MatchedBy(func(p domain.UserPreferences) bool { return p.Version == 3 })).
			Return(4, nil).Once()
		outboxRepo.On("SaveBatch", txCtx, mock.Anything).Return(nil).Once()

		prefs, err := handler.Handle(ctx, RecordCompletionCommand{UserID: "user-1", Stats: sampleStats()})

		require.NoError(t, err)
		assert.Equal(t, 4, prefs.Version)
		assert.InDelta(t, 52.5, prefs.CategoryPerformance["career"].CompletionRate, 1e-9)
		uow.AssertExpectations(t)
		prefsRepo.AssertExpectations(t)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		prefsRepo := new(mockPreferencesRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewRecordCompletionHandler(prefsRepo, outboxRepo, uow, testEngine(), nil)

		stale := domain.NewUserPreferences("user-1")
		stale.Version = 2

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		prefsRepo.On("FindByUserID", txCtx, "user-1").Return(stale, nil)
		prefsRepo.On("Save", txCtx, mock.Anything).Return(0, domain.ErrConcurrentUpdate)

		_, err := handler.Handle(ctx, RecordCompletionCommand{UserID: "user-1", Stats: sampleStats()})

		assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
		prefsRepo.AssertNumberOfCalls(t, "Save", MaxSaveAttempts)
		outboxRepo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
	})

	t.Run("validation errors are not retried", func(t *testing.T) {
		prefsRepo := new(mockPreferencesRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewRecordCompletionHandler(prefsRepo, outboxRepo, uow, testEngine(), nil)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil).Once()
		prefsRepo.On("FindByUserID", txCtx, "user-1").Return(domain.NewUserPreferences("user-1"), nil).Once()

		stats := sampleStats()
		stats.EstimatedDuration = 0
		_, err := handler.Handle(ctx, RecordCompletionCommand{UserID: "user-1", Stats: stats})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		prefsRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		uow.AssertExpectations(t)
	})

	t.Run("requires user id", func(t *testing.T) {
		handler := NewRecordCompletionHandler(new(mockPreferencesRepo), new(mockOutboxRepo), new(mockUnitOfWork), testEngine(), nil)

		_, err := handler.Handle(ctx, RecordCompletionCommand{Stats: sampleStats()})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("repository failure is returned", func(t *testing.T) {
		prefsRepo := new(mockPreferencesRepo)
		uow := new(mockUnitOfWork)
		handler := NewRecordCompletionHandler(prefsRepo, new(mockOutboxRepo), uow, testEngine(), nil)

		boom := errors.New("database unavailable")
		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		prefsRepo.On("FindByUserID", txCtx, "user-1").Return(domain.UserPreferences{}, boom)

		_, err := handler.Handle(ctx, RecordCompletionCommand{UserID: "user-1", Stats: sampleStats()})

		assert.ErrorIs(t, err, boom)
	})
}
