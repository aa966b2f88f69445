// Package mcp runs the MCP server from the command line.
package mcp

import "github.com/spf13/cobra"

// Cmd is the MCP command group.
var Cmd = &cobra.Command{
	Use:   "mcp",
	Short: "Manage the Stride MCP interface",
	Long: `Expose goals, priority scoring, insights and reflections to MCP clients.

Running "stride mcp" without a subcommand starts the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	Cmd.AddCommand(serveCmd)
}
