// Package reflect runs and lists weekly reflections.
package reflect

import "github.com/spf13/cobra"

// Cmd is the reflect command group.
var Cmd = &cobra.Command{
	Use:   "reflect",
	Short: "Weekly reflections",
	Long: `Generate, list and prune weekly reflections, or print a productivity
report for the current week.

The worker runs generation and cleanup on a schedule; these commands run
them once, on demand.`,
}

func init() {
	Cmd.AddCommand(runCmd)
	Cmd.AddCommand(cleanupCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(reportCmd)
}
