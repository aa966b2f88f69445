package commands

import (
	"context"

	sharedApplication "github.com/felixgeelhaar/stride/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/stride/internal/shared/domain"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/outbox"
)

func saveEvents(ctx context.Context, repo outbox.Repository, agg sharedDomain.AggregateRoot, userID string) error {
	events := agg.DomainEvents()
	if len(events) == 0 {
		return nil
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.EventMetadataFromContext(ctx, userID))
	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return err
	}
	if err := repo.SaveBatch(ctx, msgs); err != nil {
		return err
	}
	agg.ClearDomainEvents()
	return nil
}
