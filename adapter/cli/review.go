package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	goalQueries "github.com/felixgeelhaar/stride/internal/goals/application/queries"
	intelligenceQueries "github.com/felixgeelhaar/stride/internal/intelligence/application/queries"
	"github.com/felixgeelhaar/stride/internal/intelligence/application/services"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review items needing attention",
	Long: `Show a summary of what needs your attention today:

- Overdue tasks
- Tasks due today
- The best next task of every goal in progress
- A note on today's progress

Examples:
  stride review`,
	Aliases: []string{"today"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		goals, err := app.ListGoalsHandler.Handle(ctx, goalQueries.ListGoalsQuery{UserID: app.CurrentUserID})
		if err != nil {
			return fmt.Errorf("failed to list goals: %w", err)
		}
		now := time.Now()
		day := summarizeDay(goals, now)

		fmt.Fprintln(out)
		fmt.Fprintln(out, "  DAILY REVIEW")
		fmt.Fprintln(out, strings.Repeat("=", 60))
		fmt.Fprintf(out, "  %s\n", now.Format("Monday, January 2, 2006 15:04"))
		fmt.Fprintln(out, strings.Repeat("=", 60))

		printTaskList(out, "Overdue", day.overdue)
		printTaskList(out, "Due today", day.dueToday)

		fmt.Fprintln(out, "\n  NEXT UP")
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, g := range goals {
			if g.Status != "in-progress" && g.Status != "planning" {
				continue
			}
			scores, err := app.RankGoalTasksHandler.Handle(ctx, intelligenceQueries.RankGoalTasksQuery{
				UserID: app.CurrentUserID,
				GoalID: g.ID,
			})
			if err != nil || len(scores) == 0 {
				continue
			}
			top := scores[0]
			fmt.Fprintf(out, "  %s: %s (score %d)\n", g.Title, taskTitle(g, top.TaskID), top.Score)
			if Verbose() {
				fmt.Fprintf(out, "      %s\n", top.Recommendation)
			}
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, strings.Repeat("=", 60))
		fmt.Fprintf(out, "  %s\n", services.MotivationMessage(day.motivation(now)))
		fmt.Fprintln(out)
		return nil
	},
}

type reviewItem struct {
	goal string
	task string
	due  time.Time
}

type daySummary struct {
	overdue            []reviewItem
	dueToday           []reviewItem
	tasksToday         int
	completedToday     int
	streakDays         int
	upcomingMilestones int
}

func (d daySummary) motivation(now time.Time) services.MotivationInput {
	return services.MotivationInput{
		TasksToday:         d.tasksToday,
		CompletedToday:     d.completedToday,
		StreakDays:         d.streakDays,
		UpcomingMilestones: d.upcomingMilestones,
		EncouragementIndex: now.YearDay(),
	}
}

// summarizeDay buckets open tasks by due date and measures today's progress
// and the run of consecutive days with at least one completion.
func summarizeDay(goals []goalQueries.GoalDTO, now time.Time) daySummary {
	var d daySummary
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	completionDays := make(map[time.Time]bool)

	for _, g := range goals {
		if g.TargetDate != nil && !g.TargetDate.Before(today) && g.TargetDate.Before(today.AddDate(0, 0, 7)) {
			d.upcomingMilestones++
		}
		for _, t := range g.Tasks {
			if t.CompletedAt != nil {
				day := startOfDay(t.CompletedAt.In(now.Location()))
				completionDays[day] = true
				if day.Equal(today) {
					d.completedToday++
					d.tasksToday++
				}
				continue
			}
			if t.Status == "cancelled" || t.DueDate == nil {
				continue
			}
			item := reviewItem{goal: g.Title, task: t.Title, due: *t.DueDate}
			switch {
			case t.DueDate.Before(today):
				d.overdue = append(d.overdue, item)
			case t.DueDate.Before(tomorrow):
				d.dueToday = append(d.dueToday, item)
				d.tasksToday++
			}
		}
	}

	day := today
	if !completionDays[day] {
		day = day.AddDate(0, 0, -1)
	}
	for completionDays[day] {
		d.streakDays++
		day = day.AddDate(0, 0, -1)
	}
	return d
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func printTaskList(out io.Writer, heading string, items []reviewItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "\n  %s (%d):\n", strings.ToUpper(heading), len(items))
	fmt.Fprintln(out, strings.Repeat("-", 60))
	for _, it := range items {
		fmt.Fprintf(out, "    [!] %s - %s (due %s)\n", it.goal, it.task, it.due.Format("Jan 2"))
	}
}

func taskTitle(g goalQueries.GoalDTO, taskID string) string {
	for _, t := range g.Tasks {
		if t.ID.String() == taskID {
			return t.Title
		}
	}
	return taskID
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}
