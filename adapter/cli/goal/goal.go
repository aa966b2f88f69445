// Package goal holds the goal and task commands.
package goal

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/stride/adapter/cli"
	"github.com/felixgeelhaar/stride/internal/goals/application/queries"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Cmd is the goal command group.
var Cmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage goals and their tasks",
	Long: `Create, inspect and progress goals.

Goals and tasks may be referenced by a unique prefix of their ID.

Examples:
  stride goal add "Learn Go" --task "Read the tour:2 hours" --task "Write a CLI:1 day"
  stride goal add "Run a 10k" --breakdown
  stride goal list --status in-progress
  stride goal show 3f2a
  stride goal done 3f2a 9c1b --actual "3 hours"
  stride goal deadlines --ics -o stride.ics
  stride goal sync-calendar --delete-missing`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(doneCmd)
	Cmd.AddCommand(deadlinesCmd)
	Cmd.AddCommand(syncCalendarCmd)
}

// resolveGoal finds the caller's goal whose ID is, or starts with, ref.
func resolveGoal(ctx context.Context, app *cli.App, ref string) (*queries.GoalDTO, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return app.GetGoalHandler.Handle(ctx, queries.GetGoalQuery{UserID: app.CurrentUserID, GoalID: id})
	}

	goals, err := app.ListGoalsHandler.Handle(ctx, queries.ListGoalsQuery{UserID: app.CurrentUserID})
	if err != nil {
		return nil, err
	}
	ref = strings.ToLower(ref)
	var matches []queries.GoalDTO
	for _, g := range goals {
		if strings.HasPrefix(g.ID.String(), ref) {
			matches = append(matches, g)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no goal matches %q", ref)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%d goals match %q, use a longer prefix", len(matches), ref)
	}
}

func resolveTask(goal *queries.GoalDTO, ref string) (*queries.TaskDTO, error) {
	ref = strings.ToLower(ref)
	var matches []*queries.TaskDTO
	for i := range goal.Tasks {
		if strings.HasPrefix(goal.Tasks[i].ID.String(), ref) {
			matches = append(matches, &goal.Tasks[i])
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no task of %q matches %q", goal.Title, ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%d tasks match %q, use a longer prefix", len(matches), ref)
	}
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
