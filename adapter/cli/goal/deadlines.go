package goal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/felixgeelhaar/stride/adapter/cli"
	"github.com/felixgeelhaar/stride/internal/goals/application/queries"
	"github.com/felixgeelhaar/stride/internal/goals/infrastructure/calendar"
	"github.com/spf13/cobra"
)

var (
	deadlinesAll    bool
	deadlinesJSON   bool
	deadlinesICS    bool
	deadlinesOutput string

	syncDeleteMissing bool
)

var deadlinesCmd = &cobra.Command{
	Use:   "deadlines",
	Short: "List goal target dates and task due dates",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		deadlines, err := app.ListDeadlinesHandler.Handle(cmd.Context(), queries.ListDeadlinesQuery{
			UserID:           app.CurrentUserID,
			IncludeCompleted: deadlinesAll,
		})
		if err != nil {
			return fmt.Errorf("failed to list deadlines: %w", err)
		}

		var out io.Writer = cmd.OutOrStdout()
		if deadlinesOutput != "" {
			f, err := os.Create(deadlinesOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		switch {
		case deadlinesICS:
			if err := calendar.EncodeFeed(out, deadlines, time.Now()); err != nil {
				return err
			}
			if deadlinesOutput != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d deadlines to %s\n", len(deadlines), deadlinesOutput)
			}
			return nil
		case deadlinesJSON:
			return cli.PrintJSON(out, deadlines)
		}

		if len(deadlines) == 0 {
			fmt.Fprintln(out, "No upcoming deadlines.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DUE\tKIND\tTITLE\tGOAL\tSTATUS")
		for _, d := range deadlines {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				d.Due.Format("2006-01-02"), d.Kind, d.Title, d.GoalTitle, d.Status)
		}
		return w.Flush()
	},
}

var syncCalendarCmd = &cobra.Command{
	Use:   "sync-calendar",
	Short: "Push deadlines to the configured CalDAV calendar",
	Long: `Push goal target dates and task due dates to a CalDAV calendar
(Apple Calendar, Fastmail, Nextcloud, ...).

Requires CALDAV_URL, CALDAV_USERNAME and CALDAV_PASSWORD. Set
CALDAV_CALENDAR_PATH to pick a calendar other than the account's first one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		if app.CalendarSyncer == nil {
			return errors.New("calendar sync is not configured (set CALDAV_URL)")
		}

		deadlines, err := app.ListDeadlinesHandler.Handle(cmd.Context(), queries.ListDeadlinesQuery{
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to list deadlines: %w", err)
		}

		syncer := app.CalendarSyncer
		if syncDeleteMissing {
			syncer = syncer.WithDeleteMissing(true)
		}
		res, err := syncer.Sync(cmd.Context(), deadlines)
		if err != nil {
			return fmt.Errorf("calendar sync failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Synced deadlines: %d created, %d updated, %d deleted, %d failed\n",
			res.Created, res.Updated, res.Deleted, res.Failed)
		return nil
	},
}

func init() {
	deadlinesCmd.Flags().BoolVar(&deadlinesAll, "all", false, "include completed goals and tasks")
	deadlinesCmd.Flags().BoolVar(&deadlinesJSON, "json", false, "print JSON")
	deadlinesCmd.Flags().BoolVar(&deadlinesICS, "ics", false, "print an iCalendar feed")
	deadlinesCmd.Flags().StringVarP(&deadlinesOutput, "output", "o", "", "write to a file instead of stdout")

	syncCalendarCmd.Flags().BoolVar(&syncDeleteMissing, "delete-missing", false, "remove stride events that no longer match a deadline")
}
