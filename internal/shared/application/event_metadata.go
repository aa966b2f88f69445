package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/stride/internal/shared/domain"
	"github.com/felixgeelhaar/stride/pkg/observability"
)

// NewEventMetadata starts a fresh causal chain for userID.
func NewEventMetadata(userID string) domain.EventMetadata {
	return domain.EventMetadata{
		CorrelationID: uuid.New(),
		CausationID:   uuid.New(),
		UserID:        userID,
	}
}

// EventMetadataFromContext continues the chain carried by ctx: the request or
// command correlation ID, and the ID of the event being handled as the cause.
// Missing or malformed IDs are replaced with fresh ones.
func EventMetadataFromContext(ctx context.Context, userID string) domain.EventMetadata {
	md := NewEventMetadata(userID)
	if id, err := uuid.Parse(observability.CorrelationIDFromContext(ctx)); err == nil {
		md.CorrelationID = id
	}
	if id, err := uuid.Parse(observability.CausationIDFromContext(ctx)); err == nil {
		md.CausationID = id
	}
	return md
}

// ApplyEventMetadata stamps md on every event that accepts metadata.
func ApplyEventMetadata(events []domain.DomainEvent, md domain.EventMetadata) {
	for _, event := range events {
		if e, ok := event.(interface{ SetMetadata(domain.EventMetadata) }); ok {
			e.SetMetadata(md)
		}
	}
}
