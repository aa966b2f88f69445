package goal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/stride/adapter/cli"
	breakdownCommands "github.com/felixgeelhaar/stride/internal/breakdown/application/commands"
	breakdownDomain "github.com/felixgeelhaar/stride/internal/breakdown/domain"
	"github.com/felixgeelhaar/stride/internal/goals/application/commands"
	"github.com/spf13/cobra"
)

var (
	addDescription string
	addCategory    string
	addPriority    string
	addEstimate    string
	addTasks       []string
	addBreakdown   bool
	addContext     string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a goal",
	Long: `Create a goal, optionally with tasks.

Tasks are given as "title" or "title:estimate", in order:
  stride goal add "Learn Go" --task "Read the tour:2 hours" --task "Write a CLI:1 day"

With --breakdown the tasks are generated by the configured language model
(LLM_API_KEY) from the title and --context.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		title := strings.Join(args, " ")
		out := cmd.OutOrStdout()

		if addBreakdown {
			result, err := app.BreakdownGoalHandler.Handle(cmd.Context(), breakdownCommands.BreakdownGoalCommand{
				UserID:  app.CurrentUserID,
				Goal:    title,
				Context: addContext,
				Persist: true,
			})
			if errors.Is(err, breakdownDomain.ErrNotConfigured) {
				return fmt.Errorf("goal breakdown needs LLM_API_KEY: %w", err)
			}
			if err != nil {
				return fmt.Errorf("failed to break down goal: %w", err)
			}
			fmt.Fprintln(out, "Goal created from breakdown!")
			fmt.Fprintf(out, "  Title: %s\n", result.Breakdown.Goal.Title)
			if result.GoalID != nil {
				fmt.Fprintf(out, "  ID: %s\n", shortID(*result.GoalID))
			}
			for _, t := range result.Breakdown.Tasks {
				fmt.Fprintf(out, "  %d. %s (%s)\n", t.Order, t.Title, t.EstimatedDuration)
			}
			for _, tip := range result.Breakdown.Tips {
				fmt.Fprintf(out, "  tip: %s\n", tip)
			}
			return nil
		}

		tasks := make([]commands.NewTask, 0, len(addTasks))
		for i, raw := range addTasks {
			tasks = append(tasks, parseTaskFlag(raw, i+1))
		}

		result, err := app.CreateGoalHandler.Handle(cmd.Context(), commands.CreateGoalCommand{
			UserID:            app.CurrentUserID,
			Title:             title,
			Description:       addDescription,
			Category:          addCategory,
			Priority:          addPriority,
			EstimatedDuration: addEstimate,
			Tasks:             tasks,
		})
		if err != nil {
			return fmt.Errorf("failed to create goal: %w", err)
		}

		fmt.Fprintln(out, "Goal created!")
		fmt.Fprintf(out, "  Title: %s\n", title)
		fmt.Fprintf(out, "  ID: %s\n", shortID(result.GoalID))
		fmt.Fprintf(out, "  Tasks: %d\n", result.TaskCount)
		return nil
	},
}

// parseTaskFlag splits "title:estimate" on the last colon.
func parseTaskFlag(raw string, order int) commands.NewTask {
	task := commands.NewTask{Title: strings.TrimSpace(raw), Order: order}
	if i := strings.LastIndex(raw, ":"); i > 0 {
		task.Title = strings.TrimSpace(raw[:i])
		task.EstimatedDuration = strings.TrimSpace(raw[i+1:])
	}
	return task
}

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "goal description")
	addCmd.Flags().StringVar(&addCategory, "category", "", "goal category (work, learning, health, ...)")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "priority (low, medium, high)")
	addCmd.Flags().StringVar(&addEstimate, "estimate", "", "estimated duration (e.g. \"3 weeks\")")
	addCmd.Flags().StringArrayVarP(&addTasks, "task", "t", nil, "task as \"title\" or \"title:estimate\" (repeatable)")
	addCmd.Flags().BoolVar(&addBreakdown, "breakdown", false, "generate tasks with the language model")
	addCmd.Flags().StringVar(&addContext, "context", "", "extra context for --breakdown")
}
