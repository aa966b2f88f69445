package goal

import (
	"fmt"
	"text/tabwriter"

	"github.com/felixgeelhaar/stride/adapter/cli"
	"github.com/felixgeelhaar/stride/internal/goals/application/queries"
	"github.com/spf13/cobra"
)

var (
	listStatus string
	listJSON   bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List goals",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		goals, err := app.ListGoalsHandler.Handle(cmd.Context(), queries.ListGoalsQuery{
			UserID: app.CurrentUserID,
			Status: listStatus,
		})
		if err != nil {
			return fmt.Errorf("failed to list goals: %w", err)
		}

		out := cmd.OutOrStdout()
		if listJSON {
			return cli.PrintJSON(out, goals)
		}
		if len(goals) == 0 {
			fmt.Fprintln(out, "No goals yet. Add one with: stride goal add <title>")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tPROGRESS\tTASKS")
		for _, g := range goals {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\t%d\n",
				shortID(g.ID), g.Title, g.Status, g.Priority, g.CompletionPercentage, len(g.Tasks))
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by status (planning, in-progress, paused, completed, abandoned)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")
}
