// Package priority exposes the priority scorer on the command line.
package priority

import "github.com/spf13/cobra"

// Cmd is the priority command group.
var Cmd = &cobra.Command{
	Use:   "priority",
	Short: "Priority scoring tools",
}

func init() {
	Cmd.AddCommand(scoreCmd)
	Cmd.AddCommand(rankCmd)
}
