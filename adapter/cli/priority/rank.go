package priority

import (
	"fmt"

	"github.com/felixgeelhaar/stride/adapter/cli"
	"github.com/felixgeelhaar/stride/internal/intelligence/application/queries"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank <goal-id>",
	Short: "Score every task of a stored goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		goalID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid goal id: %w", err)
		}

		scores, err := app.RankGoalTasksHandler.Handle(cmd.Context(), queries.RankGoalTasksQuery{
			UserID: app.CurrentUserID,
			GoalID: goalID,
		})
		if err != nil {
			return fmt.Errorf("failed to rank tasks: %w", err)
		}
		return cli.PrintJSON(cmd.OutOrStdout(), scores)
	},
}
