// Package insights exposes insight detection on the command line.
package insights

import "github.com/spf13/cobra"

// Cmd is the root command for insights operations.
var Cmd = &cobra.Command{
	Use:   "insights",
	Short: "Detect productivity insights",
	Long: `Detect insights from goals, completion history and learned preferences:
stalled goals, productivity peaks and estimate accuracy.

Examples:
  stride insights detect --file activity.json
  cat activity.json | stride insights detect --file - --limit 3`,
}

func init() {
	Cmd.AddCommand(detectCmd)
}
