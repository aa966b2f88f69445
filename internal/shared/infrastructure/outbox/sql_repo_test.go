package outbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	conn := testdb.NewSQLite(t)
	repo := outbox.NewSQLRepository(conn)

	first := newMessage("goals.task.completed")
	first.CreatedAt = time.Now().Add(-2 * time.Minute)
	first.Metadata = []byte(`{"user_id":"u1"}`)
	second := newMessage("intelligence.preferences.updated")
	second.CreatedAt = time.Now().Add(-time.Minute)

	require.NoError(t, repo.SaveBatch(ctx, []*outbox.Message{first, second}))
	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	pending, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.EventID, pending[0].EventID)
	assert.Equal(t, first.AggregateID, pending[0].AggregateID)
	assert.JSONEq(t, `{"user_id":"u1"}`, string(pending[0].Metadata))
	assert.Nil(t, pending[1].Metadata)

	require.NoError(t, repo.MarkPublished(ctx, first.ID))
	require.NoError(t, repo.MarkFailed(ctx, second.ID, "nope", time.Now().Add(time.Hour)))

	pending, err = repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "failed message is not due yet")

	deleted, err := repo.DeleteOld(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestSQLRepository_SaveBatchJoinsUnitOfWork(t *testing.T) {
	ctx := context.Background()
	conn := testdb.NewSQLite(t)
	repo := outbox.NewSQLRepository(conn)
	uow := database.NewUnitOfWork(conn)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.SaveBatch(txCtx, []*outbox.Message{newMessage("a.b.c")}))
	require.NoError(t, uow.Rollback(txCtx))

	pending, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSQLRepository_MarkDead(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewSQLRepository(testdb.NewSQLite(t))

	msg := newMessage("a.b.c")
	require.NoError(t, repo.SaveBatch(ctx, []*outbox.Message{msg}))
	require.NoError(t, repo.MarkDead(ctx, msg.ID, "poison"))

	pending, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
