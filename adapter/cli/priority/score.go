package priority

import (
	"fmt"

	"github.com/felixgeelhaar/stride/adapter/cli"
	"github.com/felixgeelhaar/stride/internal/intelligence/application/queries"
	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
	"github.com/spf13/cobra"
)

var scoreFile string

type scoreInput struct {
	queries.CalculatePriorityQuery
	UserPreferences *domain.UserPreferences `json:"userPreferences"`
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one task from a JSON document",
	Long: `Score a task against its goal and (optionally) learned preferences.

The input holds "task", "goal", and optionally "allTasks" and
"preferences" (or "userPreferences"). Use --file - to read stdin.

Example:
  stride priority score --file task.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		var in scoreInput
		if err := cli.ReadJSONInput(cmd, scoreFile, &in); err != nil {
			return err
		}
		query := in.CalculatePriorityQuery
		if query.Preferences == nil {
			query.Preferences = in.UserPreferences
		}

		score, err := app.CalculatePriorityHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to score task: %w", err)
		}
		return cli.PrintJSON(cmd.OutOrStdout(), score)
	},
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreFile, "file", "f", "", "JSON input file (- for stdin)")
}
