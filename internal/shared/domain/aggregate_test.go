package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/stride/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type testAggregate struct {
	domain.BaseAggregateRoot
}

func TestBaseAggregateRoot_Events(t *testing.T) {
	agg := &testAggregate{BaseAggregateRoot: domain.NewBaseAggregateRoot(time.Now())}
	assert.Empty(t, agg.DomainEvents())
	assert.Equal(t, 0, agg.Version())

	event := domain.NewBaseEvent(agg.ID(), "Test", "test.happened", time.Now())
	agg.AddDomainEvent(event)
	assert.Len(t, agg.DomainEvents(), 1)

	agg.ClearDomainEvents()
	assert.Empty(t, agg.DomainEvents())
}

func TestRehydrateBaseAggregateRoot(t *testing.T) {
	entity := domain.RehydrateBaseEntity(uuid.New(), time.Now(), time.Now())
	agg := domain.RehydrateBaseAggregateRoot(entity, 7)

	assert.Equal(t, entity.ID(), agg.ID())
	assert.Equal(t, 7, agg.Version())

	agg.SetVersion(8)
	assert.Equal(t, 8, agg.Version())
}
