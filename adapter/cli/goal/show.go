package goal

import (
	"fmt"
	"text/tabwriter"

	"github.com/felixgeelhaar/stride/adapter/cli"
	"github.com/felixgeelhaar/stride/internal/intelligence/application/queries"
	"github.com/spf13/cobra"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <goal-id>",
	Short: "Show a goal with its tasks ranked by priority",
	Args:  cobra.ExactArgs(1),
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

		out := cmd.OutOrStdout()
		if showJSON {
			return cli.PrintJSON(out, goal)
		}

		fmt.Fprintf(out, "%s  %s\n", shortID(goal.ID), goal.Title)
		if goal.Description != "" {
			fmt.Fprintf(out, "  %s\n", goal.Description)
		}
		fmt.Fprintf(out, "  status: %s  priority: %s  category: %s  progress: %d%%\n",
			goal.Status, goal.Priority, goal.Category, goal.CompletionPercentage)
		if goal.TargetDate != nil {
			fmt.Fprintf(out, "  target: %s\n", goal.TargetDate.Format("Mon, Jan 2 2006"))
		}
		if len(goal.Tasks) == 0 {
			return nil
		}

		scores, err := app.RankGoalTasksHandler.Handle(ctx, queries.RankGoalTasksQuery{
			UserID: app.CurrentUserID,
			GoalID: goal.ID,
		})
		if err != nil {
			return fmt.Errorf("failed to rank tasks: %w", err)
		}
		byID := make(map[string]int, len(scores))
		for _, s := range scores {
			byID[s.TaskID] = s.Score
		}

		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTASK\tSTATUS\tPRIORITY\tESTIMATE\tSCORE")
		for _, t := range goal.Tasks {
			score := "-"
			if s, ok := byID[t.ID.String()]; ok {
				score = fmt.Sprintf("%d", s)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				shortID(t.ID), t.Title, t.Status, t.Priority, t.EstimatedDuration, score)
		}
		return w.Flush()
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print JSON")
}
