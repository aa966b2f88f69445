package reflect

import (
	"fmt"

	"github.com/felixgeelhaar/stride/adapter/cli"
	"github.com/felixgeelhaar/stride/internal/reflections/application/commands"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate reflections for every user active this week",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		result, err := app.GenerateReflectionsHandler.Handle(cmd.Context(), commands.GenerateReflectionsCommand{})
		if err != nil {
			return fmt.Errorf("failed to generate reflections: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Generated %d reflections", result.Generated)
		if result.Failed > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), " (%d failed)", result.Failed)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}
