package reflect

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/stride/adapter/cli"
	"github.com/felixgeelhaar/stride/internal/reflections/application/queries"
	"github.com/spf13/cobra"
)

var (
	reportSince string
	reportJSON  bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show a productivity report for the past week",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		q := queries.ProductivityReportQuery{UserID: app.CurrentUserID}
		if reportSince != "" {
			q.WeekStart, err = time.Parse(time.DateOnly, reportSince)
			if err != nil {
				return fmt.Errorf("invalid --since %q: %w", reportSince, err)
			}
		}

		r, err := app.ProductivityReportHandler.Handle(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}

		out := cmd.OutOrStdout()
		if reportJSON {
			return cli.PrintJSON(out, r)
		}
		fmt.Fprintf(out, "Week of %s to %s\n", r.WeekStart.Format("Jan 2 2006"), r.WeekEnd.Format("Jan 2 2006"))
		fmt.Fprintf(out, "  Tasks created %d, completed %d\n", r.TasksCreated, r.TasksCompleted)
		fmt.Fprintf(out, "  Goals active %d, completed %d\n", r.GoalsActive, r.GoalsCompleted)
		fmt.Fprintf(out, "  Completion %.1f%%  on time %.1f%%\n", r.CompletionRate, r.OnTimeRate)
		fmt.Fprintf(out, "  Top category: %s\n", r.TopCategory)
		for _, b := range r.Bottlenecks {
			fmt.Fprintf(out, "  ! %s\n", b)
		}
		fmt.Fprintf(out, "  %s\n", r.Summary)
		for _, i := range r.Insights {
			fmt.Fprintf(out, "  * %s\n", i)
		}
		for _, rec := range r.Recommendations {
			fmt.Fprintf(out, "  > %s\n", rec)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportSince, "since", "", "window start as YYYY-MM-DD (default one week ago)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print JSON")
}
