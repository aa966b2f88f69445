package goal

import (
	"fmt"

	"github.com/felixgeelhaar/stride/adapter/cli"
	"github.com/felixgeelhaar/stride/internal/goals/application/commands"
	"github.com/spf13/cobra"
)

var doneActual string

var doneCmd = &cobra.Command{
	Use:   "done <goal-id> <task-id>",
	Short: "Mark a task as completed",
	Long: `Mark a task as completed. The actual time spent (--actual) feeds the
duration estimates learned for the task's category and type; without it the
task's own estimate is used.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		goal, err := resolveGoal(ctx, app, args[0])
		if err != nil {
			return err
		}
		task, err := resolveTask(goal, args[1])
		if err != nil {
			return err
		}

		status := "completed"
		update := commands.UpdateTaskCommand{
			UserID: app.CurrentUserID,
			GoalID: goal.ID,
			TaskID: task.ID,
			Status: &status,
		}
		if doneActual != "" {
			update.ActualDuration = &doneActual
		}

		result, err := app.UpdateTaskHandler.Handle(ctx, update)
		if err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Completed: %s\n", task.Title)
		fmt.Fprintf(out, "  %s is %d%% done\n", goal.Title, result.CompletionPercentage)
		return nil
	},
}

func init() {
	doneCmd.Flags().StringVar(&doneActual, "actual", "", "time actually spent (e.g. \"90 minutes\")")
}
