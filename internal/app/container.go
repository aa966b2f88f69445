package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	breakdownCommands "github.com/felixgeelhaar/stride/internal/breakdown/application/commands"
	breakdownDomain "github.com/felixgeelhaar/stride/internal/breakdown/domain"
	"github.com/felixgeelhaar/stride/internal/breakdown/infrastructure/llm"
	goalCommands "github.com/felixgeelhaar/stride/internal/goals/application/commands"
	goalQueries "github.com/felixgeelhaar/stride/internal/goals/application/queries"
	goalDomain "github.com/felixgeelhaar/stride/internal/goals/domain"
	"github.com/felixgeelhaar/stride/internal/goals/infrastructure/calendar"
	intelligenceCommands "github.com/felixgeelhaar/stride/internal/intelligence/application/commands"
	intelligenceQueries "github.com/felixgeelhaar/stride/internal/intelligence/application/queries"
	"github.com/felixgeelhaar/stride/internal/intelligence/application/services"
	intelligenceDomain "github.com/felixgeelhaar/stride/internal/intelligence/domain"
	"github.com/felixgeelhaar/stride/internal/intelligence/infrastructure/cache"
	"github.com/felixgeelhaar/stride/internal/intelligence/infrastructure/messaging"
	reflectionCommands "github.com/felixgeelhaar/stride/internal/reflections/application/commands"
	reflectionQueries "github.com/felixgeelhaar/stride/internal/reflections/application/queries"
	reflectionsDomain "github.com/felixgeelhaar/stride/internal/reflections/domain"
	sharedApplication "github.com/felixgeelhaar/stride/internal/shared/application"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/stride/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/stride/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/stride/pkg/config"
	"github.com/felixgeelhaar/stride/pkg/observability"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis, nil when no cache is configured.
	RedisClient *redis.Client

	// Repositories
	GoalRepo        goalDomain.Repository
	PreferencesRepo intelligenceDomain.PreferencesRepository
	ReflectionRepo  reflectionsDomain.Repository
	OutboxRepo      outbox.Repository

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Events. InProcessEventBus is set when no broker is configured; it is
	// then also the EventPublisher.
	EventPublisher    eventbus.Publisher
	InProcessEventBus *eventbus.InProcessEventBus
	OutboxProcessor   *outbox.Processor

	// Intelligence
	Engine                   *services.Engine
	CalculatePriorityHandler *intelligenceQueries.CalculatePriorityHandler
	DetectInsightsHandler    *intelligenceQueries.DetectInsightsHandler
	RankGoalTasksHandler     *intelligenceQueries.RankGoalTasksHandler
	GetPreferencesHandler    *intelligenceQueries.GetPreferencesHandler
	RecordCompletionHandler  *intelligenceCommands.RecordCompletionHandler
	TaskCompletedConsumer    *messaging.TaskCompletedConsumer

	// Goals
	CreateGoalHandler *goalCommands.CreateGoalHandler
	UpdateGoalHandler *goalCommands.UpdateGoalHandler
	DeleteGoalHandler *goalCommands.DeleteGoalHandler
	UpdateTaskHandler *goalCommands.UpdateTaskHandler
	GetGoalHandler    *goalQueries.GetGoalHandler
	ListGoalsHandler  *goalQueries.ListGoalsHandler

	// Deadlines. CalendarSyncer is nil when no CalDAV account is configured.
	ListDeadlinesHandler *goalQueries.ListDeadlinesHandler
	CalendarSyncer       *calendar.Syncer

	// Breakdown. LLMClient is nil when no API key is configured.
	LLMClient            *llm.Client
	BreakdownGoalHandler *breakdownCommands.BreakdownGoalHandler
	BreakdownTaskHandler *breakdownCommands.BreakdownTaskHandler

	// Reflections
	GenerateReflectionsHandler *reflectionCommands.GenerateReflectionsHandler
	CleanupReflectionsHandler  *reflectionCommands.CleanupReflectionsHandler
	ListReflectionsHandler     *reflectionQueries.ListReflectionsHandler
	ProductivityReportHandler  *reflectionQueries.ProductivityReportHandler

	Health  *observability.HealthRegistry
	Metrics *observability.InMemoryMetrics
}

// NewContainer opens the database, applies migrations and wires every
// handler. Redis and RabbitMQ are optional outside production.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Health:  observability.NewHealthRegistry(),
		Metrics: observability.NewInMemoryMetrics(),
	}

	conn, err := database.NewConnection(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrations.Run(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	c.Health.Register("database", observability.DatabaseHealthChecker(conn.Ping))
	logger.Info("connected to database", "driver", c.DBDriver)

	var store cache.Store
	if cfg.RedisURL != "" {
		client, err := connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			if cfg.IsProduction() {
				_ = conn.Close()
				return nil, err
			}
			logger.Warn("Redis not available, preferences will not be cached", "error", err)
		} else {
			c.RedisClient = client
			store = cache.NewRedisStore(client)
			c.Health.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			}))
			logger.Info("connected to Redis")
		}
	}

	factory := NewRepositoryFactory(conn)
	c.GoalRepo = factory.GoalRepository()
	c.PreferencesRepo = factory.PreferencesRepository(store, cfg.PreferencesCacheTTL, logger)
	c.ReflectionRepo = factory.ReflectionRepository()
	c.OutboxRepo = factory.OutboxRepository()
	c.UnitOfWork = factory.UnitOfWork()

	if err := c.initEventBus(cfg, logger); err != nil {
		_ = c.Close()
		return nil, err
	}

	// Intelligence
	c.Engine = services.NewEngine(services.DefaultEngineConfig(), services.WithLogger(logger))
	c.CalculatePriorityHandler = intelligenceQueries.NewCalculatePriorityHandler(c.Engine)
	c.DetectInsightsHandler = intelligenceQueries.NewDetectInsightsHandler(c.Engine)
	c.GetPreferencesHandler = intelligenceQueries.NewGetPreferencesHandler(c.PreferencesRepo)
	c.RankGoalTasksHandler = intelligenceQueries.NewRankGoalTasksHandler(goalQueries.NewSnapshotReader(c.GoalRepo), c.PreferencesRepo, c.Engine)
	c.RecordCompletionHandler = intelligenceCommands.NewRecordCompletionHandler(c.PreferencesRepo, c.OutboxRepo, c.UnitOfWork, c.Engine, logger)
	c.TaskCompletedConsumer = messaging.NewTaskCompletedConsumer(c.RecordCompletionHandler, logger)
	if c.InProcessEventBus != nil {
		if err := c.TaskCompletedConsumer.Register(c.InProcessEventBus); err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	// Goals
	c.CreateGoalHandler = goalCommands.NewCreateGoalHandler(c.GoalRepo, c.OutboxRepo, c.UnitOfWork)
	c.UpdateGoalHandler = goalCommands.NewUpdateGoalHandler(c.GoalRepo, c.UnitOfWork)
	c.DeleteGoalHandler = goalCommands.NewDeleteGoalHandler(c.GoalRepo, c.OutboxRepo, c.UnitOfWork)
	c.UpdateTaskHandler = goalCommands.NewUpdateTaskHandler(c.GoalRepo, c.OutboxRepo, c.UnitOfWork)
	c.GetGoalHandler = goalQueries.NewGetGoalHandler(c.GoalRepo)
	c.ListGoalsHandler = goalQueries.NewListGoalsHandler(c.GoalRepo)
	c.ListDeadlinesHandler = goalQueries.NewListDeadlinesHandler(c.GoalRepo)
	if cfg.HasCalDAV() {
		c.CalendarSyncer = calendar.NewSyncer(calendar.Config{
			URL:          cfg.CalDAVURL,
			Username:     cfg.CalDAVUsername,
			Password:     cfg.CalDAVPassword,
			CalendarPath: cfg.CalDAVCalendarPath,
		}, logger)
	}

	// Breakdown
	var (
		generator     breakdownDomain.Generator
		taskGenerator breakdownDomain.TaskGenerator
		narrator      reflectionsDomain.Narrator
	)
	if cfg.HasLLM() {
		c.LLMClient = llm.NewClient(llm.Config{
			URL:     cfg.LLMAPIURL,
			APIKey:  cfg.LLMAPIKey,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout,
		}, logger)
		generator, taskGenerator, narrator = c.LLMClient, c.LLMClient, c.LLMClient
	} else {
		logger.Info("no LLM API key configured, AI breakdowns and report narration disabled")
	}
	c.BreakdownGoalHandler = breakdownCommands.NewBreakdownGoalHandler(generator, c.CreateGoalHandler, logger)
	c.BreakdownTaskHandler = breakdownCommands.NewBreakdownTaskHandler(taskGenerator, logger)

	// Reflections
	c.GenerateReflectionsHandler = reflectionCommands.NewGenerateReflectionsHandler(c.GoalRepo, c.ReflectionRepo, c.OutboxRepo, c.UnitOfWork, logger)
	c.CleanupReflectionsHandler = reflectionCommands.NewCleanupReflectionsHandler(c.ReflectionRepo, logger)
	c.ListReflectionsHandler = reflectionQueries.NewListReflectionsHandler(c.ReflectionRepo)
	c.ProductivityReportHandler = reflectionQueries.NewProductivityReportHandler(c.GoalRepo, narrator, time.Now, logger)

	return c, nil
}

// initEventBus picks RabbitMQ when configured and otherwise delivers events
// to in-process subscribers.
func (c *Container) initEventBus(cfg *config.Config, logger *slog.Logger) error {
	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err == nil {
			c.EventPublisher = publisher
			c.Health.Register("rabbitmq", observability.RabbitMQHealthChecker(func(context.Context) error {
				if publisher.IsClosed() {
					return errors.New("connection closed")
				}
				return nil
			}))
		} else if cfg.IsProduction() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		} else {
			logger.Warn("RabbitMQ not available, delivering events in-process", "error", err)
		}
	}
	if c.EventPublisher == nil {
		c.InProcessEventBus = eventbus.NewInProcessEventBus(logger)
		c.EventPublisher = c.InProcessEventBus
	}

	processorConfig := outbox.DefaultProcessorConfig()
	if cfg.OutboxPollInterval > 0 {
		processorConfig.PollInterval = cfg.OutboxPollInterval
	}
	if cfg.OutboxBatchSize > 0 {
		processorConfig.BatchSize = cfg.OutboxBatchSize
	}
	if cfg.OutboxMaxRetries > 0 {
		processorConfig.MaxRetries = cfg.OutboxMaxRetries
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig, logger, outbox.WithMetrics(c.Metrics))
	return nil
}

// IsLocalEventing reports whether events are delivered in-process.
func (c *Container) IsLocalEventing() bool {
	return c.InProcessEventBus != nil
}

// Close releases all resources.
func (c *Container) Close() error {
	if c.OutboxProcessor != nil && c.OutboxProcessor.IsRunning() {
		c.OutboxProcessor.Stop()
	}
	var errs []error
	if c.EventPublisher != nil {
		errs = append(errs, c.EventPublisher.Close())
	}
	if c.RedisClient != nil {
		errs = append(errs, c.RedisClient.Close())
	}
	if c.DBConn != nil {
		errs = append(errs, c.DBConn.Close())
	}
	return errors.Join(errs...)
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
