package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/stride/adapter/cli"
	"github.com/felixgeelhaar/stride/adapter/cli/goal"
	"github.com/felixgeelhaar/stride/adapter/cli/insights"
	"github.com/felixgeelhaar/stride/adapter/cli/mcp"
	"github.com/felixgeelhaar/stride/adapter/cli/priority"
	"github.com/felixgeelhaar/stride/adapter/cli/reflect"
	"github.com/felixgeelhaar/stride/internal/app"
	"github.com/felixgeelhaar/stride/pkg/config"
	"github.com/felixgeelhaar/stride/pkg/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	loadErr := err
	if err != nil {
		cfg = &config.Config{AppEnv: "development", UserID: "local-user", Version: "dev"}
	}

	logger := observability.NewLogger(logConfig(cfg))
	if loadErr != nil {
		logger.Warn("failed to load config, using development mode", "error", loadErr)
	}
	cli.SetLogger(logger)

	// Try to initialize the full container
	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		// Commands that need storage report cli.ErrNotInitialized.
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()
		cliApp = cli.NewApp(container)
	}
	cli.SetApp(cliApp)

	cli.AddCommand(goal.Cmd)
	cli.AddCommand(priority.Cmd)
	cli.AddCommand(insights.Cmd)
	cli.AddCommand(reflect.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute(ctx)
}

// logConfig keeps CLI logs on stderr so they never mix with command output.
func logConfig(cfg *config.Config) observability.LogConfig {
	lc := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		lc = observability.ProductionLogConfig()
		lc.Output = os.Stderr
	}
	if cfg.LogLevel != "" {
		lc.Level = observability.LogLevel(cfg.LogLevel)
	}
	lc.File = cfg.LogFile
	if cfg.Version != "" {
		lc.ServiceVersion = cfg.Version
	}
	return lc
}
