package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string
	LogFile  string
	Version  string
	UserID   string

	// Database. Empty selects SQLite at ~/.stride/data.db.
	DatabaseURL string

	// Redis. Empty disables the preferences cache.
	RedisURL            string
	PreferencesCacheTTL time.Duration

	// RabbitMQ. Empty keeps events in-process.
	RabbitMQURL string

	// Outbox
	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxStatsInterval    time.Duration
	OutboxProcessorEnabled bool

	// Worker
	WorkerHealthAddr   string
	ReflectionInterval time.Duration
	RetentionMonths    int

	// HTTP API
	HTTPAddr string

	// MCP
	MCPAddr      string
	MCPAuthToken string

	// Text-generation API used for goal breakdowns.
	LLMAPIURL  string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	// CalDAV account that receives goal deadlines. Empty URL disables sync.
	CalDAVURL          string
	CalDAVUsername     string
	CalDAVPassword     string
	CalDAVCalendarPath string
}

// Load loads configuration from environment variables, reading .env first
// when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("STRIDE_ENV", getEnv("APP_ENV", "development")),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
		Version:  getEnv("STRIDE_VERSION", "dev"),
		UserID:   getEnv("STRIDE_USER_ID", "local-user"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL:            getEnv("REDIS_URL", ""),
		PreferencesCacheTTL: getDurationEnv("PREFERENCES_CACHE_TTL", 10*time.Minute),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", time.Second),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval:  getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxStatsInterval:    getDurationEnv("OUTBOX_STATS_INTERVAL", time.Minute),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		WorkerHealthAddr:   getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),
		ReflectionInterval: getDurationEnv("REFLECTION_INTERVAL", 7*24*time.Hour),
		RetentionMonths:    getIntEnv("RETENTION_MONTHS", 6),

		HTTPAddr: getEnv("HTTP_ADDR", "0.0.0.0:8080"),

		MCPAddr:      getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),

		LLMAPIURL:  getEnv("LLM_API_URL", "https://api.openai.com/v1/chat/completions"),
		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMModel:   getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout: getDurationEnv("LLM_TIMEOUT", 30*time.Second),

		CalDAVURL:          getEnv("CALDAV_URL", ""),
		CalDAVUsername:     getEnv("CALDAV_USERNAME", ""),
		CalDAVPassword:     getEnv("CALDAV_PASSWORD", ""),
		CalDAVCalendarPath: getEnv("CALDAV_CALENDAR_PATH", ""),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// HasLLM reports whether goal breakdowns can be generated.
func (c *Config) HasLLM() bool {
	return c.LLMAPIKey != "" && c.LLMAPIURL != ""
}

// HasCalDAV reports whether deadlines can be pushed to a calendar server.
func (c *Config) HasCalDAV() bool {
	return c.CalDAVURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
