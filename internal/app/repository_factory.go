package app

import (
	"log/slog"
	"time"

	goalDomain "github.com/felixgeelhaar/stride/internal/goals/domain"
	goalPersistence "github.com/felixgeelhaar/stride/internal/goals/infrastructure/persistence"
	intelligenceDomain "github.com/felixgeelhaar/stride/internal/intelligence/domain"
	"github.com/felixgeelhaar/stride/internal/intelligence/infrastructure/cache"
	intelligencePersistence "github.com/felixgeelhaar/stride/internal/intelligence/infrastructure/persistence"
	reflectionsDomain "github.com/felixgeelhaar/stride/internal/reflections/domain"
	reflectionsPersistence "github.com/felixgeelhaar/stride/internal/reflections/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/stride/internal/shared/application"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/outbox"
)

// RepositoryFactory creates repositories bound to one connection. The SQL
// repositories rebind their queries for whichever driver the connection uses.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
	}
}

// GoalRepository creates the goal repository.
func (f *RepositoryFactory) GoalRepository() goalDomain.Repository {
	return goalPersistence.NewSQLGoalRepository(f.conn)
}

// PreferencesRepository creates the preferences repository. When store is
// non-nil reads go through it first.
func (f *RepositoryFactory) PreferencesRepository(store cache.Store, ttl time.Duration, logger *slog.Logger) intelligenceDomain.PreferencesRepository {
	repo := intelligencePersistence.NewSQLPreferencesRepository(f.conn)
	if store == nil {
		return repo
	}
	return cache.NewPreferencesCache(repo, store, ttl, logger)
}

// ReflectionRepository creates the weekly reflection repository.
func (f *RepositoryFactory) ReflectionRepository() reflectionsDomain.Repository {
	return reflectionsPersistence.NewSQLReflectionRepository(f.conn)
}

// OutboxRepository creates the outbox repository.
func (f *RepositoryFactory) OutboxRepository() outbox.Repository {
	return outbox.NewSQLRepository(f.conn)
}

// UnitOfWork creates a unit of work over the connection.
func (f *RepositoryFactory) UnitOfWork() sharedApplication.UnitOfWork {
	return database.NewUnitOfWork(f.conn)
}

// Driver returns the database driver type.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// Connection returns the underlying database connection.
func (f *RepositoryFactory) Connection() database.Connection {
	return f.conn
}
