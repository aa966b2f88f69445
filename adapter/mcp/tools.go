package mcp

import (
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/stride/adapter/cli"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	t := &toolset{app: deps.App}
	if err := registerIntelligenceTools(srv, t); err != nil {
		return err
	}
	if err := registerGoalTools(srv, t); err != nil {
		return err
	}
	if err := registerReflectionTools(srv, t); err != nil {
		return err
	}
	return nil
}

// toolset holds the tool handlers so they can be exercised without a
// transport.
type toolset struct {
	app *cli.App
}
