package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers MCP resources that expose Stride data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	if deps.App == nil {
		return fmt.Errorf("app is required")
	}
	t := &toolset{app: deps.App}

	srv.Resource("stride://goals").
		Name("Goals").
		Description("All goals of the current user with their tasks").
		MimeType("application/json").
		Handler(jsonResource(func(ctx context.Context) (any, error) {
			return t.goalsList(ctx, goalsListInput{})
		}))

	srv.Resource("stride://goals/active").
		Name("Active Goals").
		Description("Goals in progress").
		MimeType("application/json").
		Handler(jsonResource(func(ctx context.Context) (any, error) {
			return t.goalsList(ctx, goalsListInput{Status: "in-progress"})
		}))

	srv.Resource("stride://preferences").
		Name("Learned Preferences").
		Description("Per-category and per-task-type completion rates and speeds").
		MimeType("application/json").
		Handler(jsonResource(func(ctx context.Context) (any, error) {
			return t.preferencesGet(ctx, emptyInput{})
		}))

	srv.Resource("stride://reflections").
		Name("Weekly Reflections").
		Description("Recent weekly reflections, newest first").
		MimeType("application/json").
		Handler(jsonResource(func(ctx context.Context) (any, error) {
			return t.reflectionsList(ctx, reflectionsListInput{})
		}))

	return nil
}

func jsonResource(load func(ctx context.Context) (any, error)) func(context.Context, string, map[string]string) (*mcp.ResourceContent, error) {
	return func(ctx context.Context, uri string, _ map[string]string) (*mcp.ResourceContent, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return &mcp.ResourceContent{
			URI:      uri,
			MimeType: "application/json",
			Text:     string(data),
		}, nil
	}
}
