package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/felixgeelhaar/stride/adapter/cli"
	internalApp "github.com/felixgeelhaar/stride/internal/app"
	breakdownDomain "github.com/felixgeelhaar/stride/internal/breakdown/domain"
	"github.com/felixgeelhaar/stride/internal/goals/application/commands"
	"github.com/felixgeelhaar/stride/internal/goals/application/queries"
	"github.com/felixgeelhaar/stride/internal/intelligence/application/services"
	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
	"github.com/felixgeelhaar/stride/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestToolset(t *testing.T) *toolset {
	t.Helper()
	cfg := &config.Config{
		AppEnv:      "test",
		UserID:      "mcp-user",
		DatabaseURL: filepath.Join(t.TempDir(), "mcp.db"),
	}
	container, err := internalApp.NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })
	return &toolset{app: cli.NewApp(container)}
}

func TestRegisterCLITools_ListTools(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Tools: true,
		},
	})

	require.NoError(t, RegisterCLITools(srv, ToolDependencies{App: &cli.App{}}))

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)

	names := make(map[any]bool, len(tools))
	for _, tool := range tools {
		names[tool["name"]] = true
	}
	for _, want := range []string{"priority.score", "insights.detect", "goals.list", "goals.rank", "tasks.complete", "goals.deadlines", "reflections.list", "tasks.breakdown", "reflections.report"} {
		assert.True(t, names[want], "%s should be registered", want)
	}
}

func TestRegisterCLITools_RequiresApp(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})
	assert.Error(t, RegisterCLITools(srv, ToolDependencies{}))
	assert.Error(t, RegisterCLITools(nil, ToolDependencies{App: &cli.App{}}))
}

func TestTools_WithoutDatabase(t *testing.T) {
	ts := &toolset{app: &cli.App{}}

	_, err := ts.goalsList(context.Background(), goalsListInput{})
	assert.ErrorIs(t, err, errNoDatabase)
	_, err = ts.priorityScore(context.Background(), priorityScoreInput{})
	assert.ErrorIs(t, err, errNoDatabase)
}

func TestTools_GoalWorkflow(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	created, err := ts.goalsCreate(ctx, goalCreateInput{
		Title:    "Learn Go",
		Category: "learning",
		Tasks: []commands.NewTask{
			{Title: "Read the tour", EstimatedDuration: "2 hours", Order: 1},
			{Title: "Write a CLI", EstimatedDuration: "1 day", Order: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created["task_count"])

	goals, err := ts.goalsList(ctx, goalsListInput{})
	require.NoError(t, err)
	require.Len(t, goals, 1)
	goal := goals[0]

	scores, err := ts.goalsRank(ctx, goalIDInput{GoalID: goal.ID.String()})
	require.NoError(t, err)
	assert.Len(t, scores, 2)

	done, err := ts.tasksComplete(ctx, taskCompleteInput{
		GoalID:         goal.ID.String(),
		TaskID:         goal.Tasks[0].ID.String(),
		ActualDuration: "3 hours",
	})
	require.NoError(t, err)
	assert.Equal(t, true, done["completed"])
	assert.Equal(t, 50, done["completion_percentage"])

	fetched, err := ts.goalsGet(ctx, goalIDInput{GoalID: goal.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "completed", fetched.Tasks[0].Status)

	deadlines, err := ts.goalsDeadlines(ctx, deadlinesInput{})
	require.NoError(t, err)
	require.Len(t, deadlines, 1)
	assert.Equal(t, queries.DeadlineKindGoal, deadlines[0].Kind)

	_, err = ts.goalsRank(ctx, goalIDInput{GoalID: "nope"})
	assert.Error(t, err)
}

func TestTools_PriorityAndInsights(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	task := domain.Task{ID: "t1", Title: "Fix bug", Status: "pending", Priority: "high"}
	score, err := ts.priorityScore(ctx, priorityScoreInput{
		Task: &task,
		Goal: &domain.Goal{ID: "g1", Priority: "high", Tasks: []domain.Task{task}},
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", score.TaskID)

	_, err = ts.priorityScore(ctx, priorityScoreInput{Task: &task})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	prefs := domain.NewUserPreferences("mcp-user")
	prefs.TaskTypePerformance["coding"] = domain.Performance{CompletionRate: 10, AverageSpeed: 1}
	insights, err := ts.insightsDetect(ctx, insightsDetectInput{UserPreferences: &prefs})
	require.NoError(t, err)
	require.NotEmpty(t, insights)
	assert.Equal(t, domain.InsightTypeBottleneck, insights[0].Type)

	insights, err = ts.insightsDetect(ctx, insightsDetectInput{})
	require.NoError(t, err)
	assert.Empty(t, insights)
}

func TestTools_BreakdownNotConfigured(t *testing.T) {
	ts := newTestToolset(t)

	_, err := ts.goalsBreakdown(context.Background(), goalBreakdownInput{Goal: "Run a 10k"})
	assert.ErrorIs(t, err, breakdownDomain.ErrNotConfigured)

	_, err = ts.tasksBreakdown(context.Background(), taskBreakdownInput{Title: "Buy shoes"})
	assert.ErrorIs(t, err, breakdownDomain.ErrNotConfigured)
}

func TestTools_Motivation(t *testing.T) {
	ts := &toolset{app: &cli.App{}}

	out, err := ts.motivationMessage(context.Background(), services.MotivationInput{StreakDays: 9})
	require.NoError(t, err)
	assert.Equal(t, "9-day streak! You're unstoppable!", out["message"])
}

func TestTools_ReflectionsEmpty(t *testing.T) {
	ts := newTestToolset(t)

	reflections, err := ts.reflectionsList(context.Background(), reflectionsListInput{})
	require.NoError(t, err)
	assert.Empty(t, reflections)
}

func TestTools_ReflectionsReport(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	_, err := ts.app.CreateGoalHandler.Handle(ctx, commands.CreateGoalCommand{
		UserID:   ts.app.CurrentUserID,
		Title:    "Run a 10k",
		Category: "fitness",
		Tasks:    []commands.NewTask{{Title: "Buy shoes"}, {Title: "First run"}},
	})
	require.NoError(t, err)

	report, err := ts.reflectionsReport(ctx, reflectionsReportInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.TasksCreated)
	assert.Equal(t, "fitness", report.TopCategory)

	_, err = ts.reflectionsReport(ctx, reflectionsReportInput{Since: "monday"})
	assert.Error(t, err)
}
