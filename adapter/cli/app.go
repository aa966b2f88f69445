package cli

import (
	internalApp "github.com/felixgeelhaar/stride/internal/app"
	breakdownCommands "github.com/felixgeelhaar/stride/internal/breakdown/application/commands"
	goalCommands "github.com/felixgeelhaar/stride/internal/goals/application/commands"
	goalQueries "github.com/felixgeelhaar/stride/internal/goals/application/queries"
	"github.com/felixgeelhaar/stride/internal/goals/infrastructure/calendar"
	intelligenceQueries "github.com/felixgeelhaar/stride/internal/intelligence/application/queries"
	reflectionCommands "github.com/felixgeelhaar/stride/internal/reflections/application/commands"
	reflectionQueries "github.com/felixgeelhaar/stride/internal/reflections/application/queries"
)

// App holds the CLI application dependencies.
type App struct {
	// Goal Command Handlers
	CreateGoalHandler *goalCommands.CreateGoalHandler
	UpdateTaskHandler *goalCommands.UpdateTaskHandler

	// Goal Query Handlers
	GetGoalHandler       *goalQueries.GetGoalHandler
	ListGoalsHandler     *goalQueries.ListGoalsHandler
	ListDeadlinesHandler *goalQueries.ListDeadlinesHandler

	// CalendarSyncer is nil unless CALDAV_URL is set.
	CalendarSyncer *calendar.Syncer

	// Intelligence Query Handlers
	CalculatePriorityHandler *intelligenceQueries.CalculatePriorityHandler
	DetectInsightsHandler    *intelligenceQueries.DetectInsightsHandler
	RankGoalTasksHandler     *intelligenceQueries.RankGoalTasksHandler
	GetPreferencesHandler    *intelligenceQueries.GetPreferencesHandler

	BreakdownGoalHandler *breakdownCommands.BreakdownGoalHandler
	BreakdownTaskHandler *breakdownCommands.BreakdownTaskHandler

	// Reflection Handlers
	GenerateReflectionsHandler *reflectionCommands.GenerateReflectionsHandler
	CleanupReflectionsHandler  *reflectionCommands.CleanupReflectionsHandler
	ListReflectionsHandler     *reflectionQueries.ListReflectionsHandler
	ProductivityReportHandler  *reflectionQueries.ProductivityReportHandler

	// Container backs the long-running commands (serve, mcp serve).
	Container *internalApp.Container

	// Current user (configured per environment)
	CurrentUserID string
}

// NewApp creates a CLI application from the container's handlers.
func NewApp(c *internalApp.Container) *App {
	return &App{
		CreateGoalHandler:          c.CreateGoalHandler,
		UpdateTaskHandler:          c.UpdateTaskHandler,
		GetGoalHandler:             c.GetGoalHandler,
		ListGoalsHandler:           c.ListGoalsHandler,
		ListDeadlinesHandler:       c.ListDeadlinesHandler,
		CalendarSyncer:             c.CalendarSyncer,
		CalculatePriorityHandler:   c.CalculatePriorityHandler,
		DetectInsightsHandler:      c.DetectInsightsHandler,
		RankGoalTasksHandler:       c.RankGoalTasksHandler,
		GetPreferencesHandler:      c.GetPreferencesHandler,
		BreakdownGoalHandler:       c.BreakdownGoalHandler,
		BreakdownTaskHandler:       c.BreakdownTaskHandler,
		GenerateReflectionsHandler: c.GenerateReflectionsHandler,
		CleanupReflectionsHandler:  c.CleanupReflectionsHandler,
		ListReflectionsHandler:     c.ListReflectionsHandler,
		ProductivityReportHandler:  c.ProductivityReportHandler,
		Container:                  c,
		CurrentUserID:              c.Config.UserID,
	}
}

// SetCurrentUserID updates the current user ID.
func (a *App) SetCurrentUserID(id string) {
	a.CurrentUserID = id
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// RequireApp returns the application or an error when the CLI started
// without a database.
func RequireApp() (*App, error) {
	if app == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}
