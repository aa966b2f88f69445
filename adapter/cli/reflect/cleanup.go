package reflect

import (
	"fmt"

	"github.com/felixgeelhaar/stride/adapter/cli"
	"github.com/felixgeelhaar/stride/internal/reflections/application/commands"
	"github.com/spf13/cobra"
)

var cleanupMonths int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete reflections older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		months := cleanupMonths
		if months <= 0 && app.Container != nil {
			months = app.Container.Config.RetentionMonths
		}

		deleted, err := app.CleanupReflectionsHandler.Handle(cmd.Context(), commands.CleanupReflectionsCommand{
			RetentionMonths: months,
		})
		if err != nil {
			return fmt.Errorf("failed to clean up reflections: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d reflections\n", deleted)
		return nil
	},
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupMonths, "months", 0, "retention in months (defaults to RETENTION_MONTHS)")
}
