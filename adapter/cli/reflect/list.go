package reflect

import (
	"fmt"

	"github.com/felixgeelhaar/stride/adapter/cli"
	"github.com/felixgeelhaar/stride/internal/reflections/application/queries"
	"github.com/spf13/cobra"
)

var (
	listLimit int
	listJSON  bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "Show recent reflections",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		reflections, err := app.ListReflectionsHandler.Handle(cmd.Context(), queries.ListReflectionsQuery{
			UserID: app.CurrentUserID,
			Limit:  listLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to list reflections: %w", err)
		}

		out := cmd.OutOrStdout()
		if listJSON {
			return cli.PrintJSON(out, reflections)
		}
		if len(reflections) == 0 {
			fmt.Fprintln(out, "No reflections yet. Generate one with: stride reflect run")
			return nil
		}
		for _, r := range reflections {
			fmt.Fprintf(out, "Week of %s  score %d\n", r.WeekStart.Format("Jan 2 2006"), r.ProductivityScore)
			fmt.Fprintf(out, "  %s\n", r.Summary)
			for _, a := range r.Achievements {
				fmt.Fprintf(out, "  + %s\n", a)
			}
			for _, rec := range r.Recommendations {
				fmt.Fprintf(out, "  > %s\n", rec)
			}
		}
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", queries.DefaultListLimit, "number of weeks to show")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")
}
