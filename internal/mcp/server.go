// Package mcp runs the Model Context Protocol server over HTTP.
package mcp

import (
	"context"
	"errors"
	"log/slog"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/middleware"

	"github.com/felixgeelhaar/stride/adapter/cli"
	tools "github.com/felixgeelhaar/stride/adapter/mcp"
	"github.com/felixgeelhaar/stride/pkg/config"
)

const serverName = "stride-mcp"

// Serve listens on cfg.MCPAddr until ctx is cancelled. With MCPAuthToken
// set, every request must carry it as a bearer token.
func Serve(ctx context.Context, cfg *config.Config, app *cli.App, logger *slog.Logger) error {
	switch {
	case cfg == nil:
		return errors.New("config is required")
	case app == nil:
		return errors.New("CLI app is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv, err := NewServer(cfg, app, logger)
	if err != nil {
		return err
	}
	logger.Info("mcp server listening", "addr", cfg.MCPAddr, "auth", cfg.MCPAuthToken != "")
	return mcpgo.ServeHTTPWithMiddleware(ctx, srv, cfg.MCPAddr, nil, mcpgo.WithMiddleware(middlewareStack(cfg.MCPAuthToken, logger)...))
}

// middlewareStack puts bearer auth in front of the default stack.
func middlewareStack(token string, logger *slog.Logger) []middleware.Middleware {
	log := fieldLogger{logger}
	stack := middleware.DefaultStack(log)
	if token == "" {
		logger.Warn("MCP_AUTH_TOKEN not set; MCP requests are unauthenticated")
		return stack
	}
	auth := middleware.Auth(
		middleware.BearerTokenAuthenticator(middleware.StaticTokens(map[string]*middleware.Identity{
			token: {ID: "mcp", Name: "mcp"},
		})),
		middleware.WithAuthLogger(log),
	)
	return append([]middleware.Middleware{auth}, stack...)
}

// NewServer registers the tools, resources and prompts. Only a tool
// registration failure is fatal.
func NewServer(cfg *config.Config, app *cli.App, logger *slog.Logger) (*mcpgo.Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	version := "dev"
	if cfg != nil && cfg.Version != "" {
		version = cfg.Version
	}
	srv := mcpgo.NewServer(mcpgo.ServerInfo{
		Name:         serverName,
		Version:      version,
		Capabilities: mcpgo.Capabilities{Tools: true, Resources: true, Prompts: true},
	})

	deps := tools.ToolDependencies{App: app}
	if err := tools.RegisterCLITools(srv, deps); err != nil {
		return nil, err
	}
	for name, register := range map[string]func(*mcpgo.Server, tools.ToolDependencies) error{
		"resources": tools.RegisterResources,
		"prompts":   tools.RegisterPrompts,
	} {
		if err := register(srv, deps); err != nil {
			logger.Warn("failed to register MCP "+name, "error", err)
		}
	}
	return srv, nil
}

// fieldLogger adapts slog to the mcp-go middleware logger.
type fieldLogger struct {
	logger *slog.Logger
}

func (l fieldLogger) log(level slog.Level, msg string, fields []middleware.Field) {
	args := make([]any, 0, 2*len(fields))
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	l.logger.Log(context.Background(), level, msg, args...)
}

func (l fieldLogger) Debug(msg string, fields ...middleware.Field) {
	l.log(slog.LevelDebug, msg, fields)
}
func (l fieldLogger) Info(msg string, fields ...middleware.Field) { l.log(slog.LevelInfo, msg, fields) }
func (l fieldLogger) Warn(msg string, fields ...middleware.Field) { l.log(slog.LevelWarn, msg, fields) }
func (l fieldLogger) Error(msg string, fields ...middleware.Field) {
	l.log(slog.LevelError, msg, fields)
}
