package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/stride/internal/reflections/application/queries"
	"github.com/felixgeelhaar/stride/internal/reflections/domain"
)

type reflectionsListInput struct {
	Limit int `json:"limit,omitempty"`
}

func registerReflectionTools(srv *mcp.Server, t *toolset) error {
	srv.Tool("reflections.list").
		Description("List recent weekly reflections, newest first").
		Handler(t.reflectionsList)

	srv.Tool("reflections.report").
		Description("Compute a productivity report for the past week, or since a YYYY-MM-DD date").
		Handler(t.reflectionsReport)
	return nil
}

func (t *toolset) reflectionsList(ctx context.Context, input reflectionsListInput) ([]*domain.WeeklyReflection, error) {
	if t.app.ListReflectionsHandler == nil {
		return nil, fmt.Errorf("reflections %w", errNoDatabase)
	}
	return t.app.ListReflectionsHandler.Handle(ctx, queries.ListReflectionsQuery{
		UserID: t.app.CurrentUserID,
		Limit:  input.Limit,
	})
}

type reflectionsReportInput struct {
	// Since is the window start as YYYY-MM-DD; the window defaults to the
	// past week.
	Since string `json:"since,omitempty"`
}

func (t *toolset) reflectionsReport(ctx context.Context, input reflectionsReportInput) (*domain.ProductivityReport, error) {
	if t.app.ProductivityReportHandler == nil {
		return nil, fmt.Errorf("productivity report %w", errNoDatabase)
	}
	q := queries.ProductivityReportQuery{UserID: t.app.CurrentUserID}
	if input.Since != "" {
		since, err := time.Parse(time.DateOnly, input.Since)
		if err != nil {
			return nil, fmt.Errorf("invalid since %q: %w", input.Since, err)
		}
		q.WeekStart = since
	}
	return t.app.ProductivityReportHandler.Handle(ctx, q)
}
