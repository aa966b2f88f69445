package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePreferences(userID string) domain.UserPreferences {
	prefs := domain.NewUserPreferences(userID)
	prefs.CategoryPerformance["career"] = domain.Performance{CompletionRate: 42.5, AverageSpeed: 1.3333333333333333}
	prefs.TaskTypePerformance["coding"] = domain.Performance{CompletionRate: 9.75, AverageSpeed: 0.8}
	prefs.AverageTaskDuration = 52.25
	prefs.LastUpdated = time.Date(2026, 5, 1, 9, 30, 0, 123456789, time.UTC)
	return prefs
}

func TestSQLPreferencesRepository_FindMissing(t *testing.T) {
	repo := NewSQLPreferencesRepository(testdb.NewSQLite(t))

	_, err := repo.FindByUserID(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrPreferencesNotFound)
}

func TestSQLPreferencesRepository_InsertAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLPreferencesRepository(testdb.NewSQLite(t))
	prefs := samplePreferences("user-1")

	version, err := repo.Save(ctx, prefs)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	loaded, err := repo.FindByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, prefs.CategoryPerformance, loaded.CategoryPerformance)
	assert.Equal(t, prefs.TaskTypePerformance, loaded.TaskTypePerformance)
	assert.Equal(t, prefs.AverageTaskDuration, loaded.AverageTaskDuration)
	assert.True(t, prefs.LastUpdated.Equal(loaded.LastUpdated))
	assert.Equal(t, 1, loaded.Version)
}

func TestSQLPreferencesRepository_VersionCheck(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLPreferencesRepository(testdb.NewSQLite(t))

	_, err := repo.Save(ctx, samplePreferences("user-1"))
	require.NoError(t, err)

	first, err := repo.FindByUserID(ctx, "user-1")
	require.NoError(t, err)
	second, err := repo.FindByUserID(ctx, "user-1")
	require.NoError(t, err)

	first.AverageTaskDuration = 10
	version, err := repo.Save(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	second.AverageTaskDuration = 20
	_, err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)

	loaded, err := repo.FindByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, loaded.AverageTaskDuration)
	assert.Equal(t, 2, loaded.Version)
}

func TestSQLPreferencesRepository_DuplicateInsertConflicts(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLPreferencesRepository(testdb.NewSQLite(t))

	_, err := repo.Save(ctx, samplePreferences("user-1"))
	require.NoError(t, err)

	_, err = repo.Save(ctx, samplePreferences("user-1"))
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
}

func TestSQLPreferencesRepository_RollbackInUnitOfWork(t *testing.T) {
	ctx := context.Background()
	conn := testdb.NewSQLite(t)
	repo := NewSQLPreferencesRepository(conn)
	uow := database.NewUnitOfWork(conn)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	_, err = repo.Save(txCtx, samplePreferences("user-1"))
	require.NoError(t, err)
	require.NoError(t, uow.Rollback(txCtx))

	_, err = repo.FindByUserID(ctx, "user-1")
	assert.ErrorIs(t, err, domain.ErrPreferencesNotFound)
}
