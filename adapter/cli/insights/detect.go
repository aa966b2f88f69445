package insights

import (
	"fmt"
	"text/tabwriter"

	"github.com/felixgeelhaar/stride/adapter/cli"
	"github.com/felixgeelhaar/stride/internal/intelligence/application/queries"
	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
	"github.com/spf13/cobra"
)

var (
	detectFile  string
	detectLimit int
	detectJSON  bool
)

type detectInput struct {
	queries.DetectInsightsQuery
	UserPreferences *domain.UserPreferences `json:"userPreferences"`
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect insights from a JSON document",
	Long: `Detect insights from "goals", "completionStats" and "preferences".

When the document carries no preferences, the preferences learned for the
current user are used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		var in detectInput
		if err := cli.ReadJSONInput(cmd, detectFile, &in); err != nil {
			return err
		}
		query := in.DetectInsightsQuery
		if query.UserID == "" {
			query.UserID = app.CurrentUserID
		}
		if query.Preferences == nil {
			query.Preferences = in.UserPreferences
		}
		if query.Preferences == nil {
			prefs, err := app.GetPreferencesHandler.Handle(ctx, queries.GetPreferencesQuery{UserID: query.UserID})
			if err != nil {
				return fmt.Errorf("failed to load preferences: %w", err)
			}
			query.Preferences = &prefs
		}
		if detectLimit > 0 {
			query.Limit = detectLimit
		}

		insights, err := app.DetectInsightsHandler.Handle(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to detect insights: %w", err)
		}

		out := cmd.OutOrStdout()
		if detectJSON {
			return cli.PrintJSON(out, insights)
		}
		if len(insights) == 0 {
			fmt.Fprintln(out, "No insights yet. Complete a few tasks first.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tSEVERITY\tTITLE")
		for _, i := range insights {
			fmt.Fprintf(w, "%s\t%s\t%s\n", i.Type, i.Severity, i.Title)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if cli.Verbose() {
			for _, i := range insights {
				fmt.Fprintf(out, "\n%s\n  %s\n", i.Title, i.Description)
			}
		}
		return nil
	},
}

func init() {
	detectCmd.Flags().StringVarP(&detectFile, "file", "f", "", "JSON input file (- for stdin)")
	detectCmd.Flags().IntVar(&detectLimit, "limit", 0, "maximum number of insights")
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "print JSON")
}
