package commands

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/stride/internal/goals/domain"
	"github.com/felixgeelhaar/stride/internal/goals/infrastructure/persistence"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	goals  *persistence.SQLGoalRepository
	outbox *outbox.SQLRepository
	uow    *database.GenericUnitOfWork
}

func newFixture(t *testing.T) fixture {
	conn := testdb.NewSQLite(t)
	return fixture{
		goals:  persistence.NewSQLGoalRepository(conn),
		outbox: outbox.NewSQLRepository(conn),
		uow:    database.NewUnitOfWork(conn),
	}
}

func (f fixture) routingKeys(t *testing.T) []string {
	t.Helper()
	msgs, err := f.outbox.GetUnpublished(context.Background(), 100)
	require.NoError(t, err)
	keys := make([]string, 0, len(msgs))
	for _, m := range msgs {
		keys = append(keys, m.RoutingKey)
	}
	return keys
}

func (f fixture) createGoal(t *testing.T, userID string) *CreateGoalResult {
	t.Helper()
	res, err := NewCreateGoalHandler(f.goals, f.outbox, f.uow).Handle(context.Background(), CreateGoalCommand{
		UserID:            userID,
		Title:             "Learn Spanish",
		Category:          "education",
		EstimatedDuration: "2 months",
		Tasks: []NewTask{
			{Title: "Pick a course", EstimatedDuration: "30 minutes"},
			{Title: "Study vocabulary", EstimatedDuration: "2 hours"},
			{Title: "Practice conversation", EstimatedDuration: "1 hour"},
			{Title: "Take a test", EstimatedDuration: "1 hour"},
		},
	})
	require.NoError(t, err)
	return res
}

func strPtr(s string) *string { return &s }

func TestCreateGoalHandler(t *testing.T) {
	f := newFixture(t)

	res := f.createGoal(t, "user-1")

	assert.Equal(t, 4, res.TaskCount)
	g, err := f.goals.FindByID(context.Background(), res.GoalID)
	require.NoError(t, err)
	assert.Equal(t, "education", g.Category())
	assert.Equal(t, domain.GoalStatusPlanning, g.Status())
	assert.Equal(t, g.StartDate().AddDate(0, 2, 0), *g.TargetDate())
	assert.Equal(t, []string{domain.RoutingKeyGoalCreated}, f.routingKeys(t))
}

func TestCreateGoalHandler_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := NewCreateGoalHandler(f.goals, f.outbox, f.uow).Handle(context.Background(), CreateGoalCommand{UserID: "user-1"})

	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
	assert.Empty(t, f.routingKeys(t))
}

func TestUpdateTaskHandler_CompletionEmitsEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.createGoal(t, "user-1")
	g, err := f.goals.FindByID(ctx, res.GoalID)
	require.NoError(t, err)
	taskID := g.Tasks()[1].ID()

	out, err := NewUpdateTaskHandler(f.goals, f.outbox, f.uow).Handle(ctx, UpdateTaskCommand{
		UserID:         "user-1",
		GoalID:         res.GoalID,
		TaskID:         taskID,
		Status:         strPtr("completed"),
		ActualDuration: strPtr("3 hours"),
	})
	require.NoError(t, err)

	assert.True(t, out.Completed)
	assert.Equal(t, 25, out.CompletionPercentage)
	assert.Equal(t, []string{domain.RoutingKeyGoalCreated, domain.RoutingKeyTaskCompleted}, f.routingKeys(t))

	reloaded, err := f.goals.FindByID(ctx, res.GoalID)
	require.NoError(t, err)
	assert.Equal(t, 25, reloaded.CompletionPercentage())
	assert.Equal(t, 2, reloaded.Version())
}

func TestUpdateTaskHandler_OtherUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.createGoal(t, "user-1")
	g, err := f.goals.FindByID(ctx, res.GoalID)
	require.NoError(t, err)

	_, err = NewUpdateTaskHandler(f.goals, f.outbox, f.uow).Handle(ctx, UpdateTaskCommand{
		UserID: "intruder",
		GoalID: res.GoalID,
		TaskID: g.Tasks()[0].ID(),
		Status: strPtr("completed"),
	})

	assert.ErrorIs(t, err, domain.ErrGoalNotFound)
}

func TestUpdateTaskHandler_UnknownTask(t *testing.T) {
	f := newFixture(t)
	res := f.createGoal(t, "user-1")

	_, err := NewUpdateTaskHandler(f.goals, f.outbox, f.uow).Handle(context.Background(), UpdateTaskCommand{
		UserID: "user-1",
		GoalID: res.GoalID,
		TaskID: uuid.New(),
		Status: strPtr("completed"),
	})

	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestUpdateGoalHandler(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.createGoal(t, "user-1")
	handler := NewUpdateGoalHandler(f.goals, f.uow)

	require.NoError(t, handler.Handle(ctx, UpdateGoalCommand{
		UserID:   "user-1",
		GoalID:   res.GoalID,
		Status:   strPtr("in-progress"),
		Priority: strPtr("high"),
	}))

	g, err := f.goals.FindByID(ctx, res.GoalID)
	require.NoError(t, err)
	assert.Equal(t, domain.GoalStatusInProgress, g.Status())
	assert.Equal(t, domain.PriorityHigh, g.Priority())

	err = handler.Handle(ctx, UpdateGoalCommand{UserID: "user-1", GoalID: res.GoalID, Status: strPtr("finished")})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	err = handler.Handle(ctx, UpdateGoalCommand{UserID: "user-1", GoalID: uuid.New(), Title: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrGoalNotFound)
}

func TestDeleteGoalHandler(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.createGoal(t, "user-1")
	handler := NewDeleteGoalHandler(f.goals, f.outbox, f.uow)

	err := handler.Handle(ctx, DeleteGoalCommand{UserID: "someone-else", GoalID: res.GoalID})
	assert.ErrorIs(t, err, domain.ErrGoalNotFound)

	require.NoError(t, handler.Handle(ctx, DeleteGoalCommand{UserID: "user-1", GoalID: res.GoalID}))

	_, err = f.goals.FindByID(ctx, res.GoalID)
	assert.ErrorIs(t, err, domain.ErrGoalNotFound)
	assert.Contains(t, f.routingKeys(t), domain.RoutingKeyGoalDeleted)
}
