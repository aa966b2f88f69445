package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/stride/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/stride/internal/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on MCP_ADDR",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		c := app.Container

		if c.IsLocalEventing() && c.Config.OutboxProcessorEnabled {
			if err := c.OutboxProcessor.Start(ctx); err != nil {
				return err
			}
			defer c.OutboxProcessor.Stop()
		}

		err = mcpinternal.Serve(ctx, c.Config, app, cli.Logger())
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
