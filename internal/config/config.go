package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ulule/limiter/v3"
)

// Config holds application configuration
type Config struct {
	ServerPort          string
	DatabaseURL         string
	CollectionsDir      string
	RedisURL            string
	RabbitMQURL         string
	RateLimit           string
	FrontendURL         string
	FeaturedTagPatterns []string
	GatedTagPatterns    []string
	WatchCollections    []string
	WatchMaxInterval    string
	EnableHSTS          bool
	ServerDebugMode     bool
	WorkerDebugMode     bool
	LogFile             string
	LogMaxSizeMB        int
	LogMaxBackups       int
	LogMaxAgeDays       int
	OTELEnabled         bool
	OTELEndpoint        string
}

// envFiles are loaded, when present, before reading the environment.
// Variables already set in the process environment win.
var envFiles = []string{".env", ".env.local"}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	for _, file := range envFiles {
		// Missing .env files are fine
		_ = godotenv.Load(file)
	}

	cfg := &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		CollectionsDir:      getEnv("COLLECTIONS_DIR", "collections"),
		RedisURL:            getEnv("REDIS_URL", ""),
		RabbitMQURL:         getEnv("RABBITMQ_URL", ""),
		RateLimit:           getEnv("RATE_LIMIT", "20-S"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
		FeaturedTagPatterns: getEnvList("FEATURED_TAG_PATTERNS"),
		GatedTagPatterns:    getEnvList("GATED_TAG_PATTERNS"),
		WatchCollections:    getEnvList("WATCH_COLLECTIONS"),
		WatchMaxInterval:    getEnv("WATCH_MAX_INTERVAL", "5m"),
		EnableHSTS:          getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode:     getEnvBool("SERVER_DEBUG_MODE", false),
		WorkerDebugMode:     getEnvBool("WORKER_DEBUG_MODE", false),
		LogFile:             getEnv("LOG_FILE", ""),
		LogMaxSizeMB:        getEnvInt("LOG_MAX_SIZE_MB", 128),
		LogMaxBackups:       getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays:       getEnvInt("LOG_MAX_AGE_DAYS", 16),
		OTELEnabled:         getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:        getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" && cfg.CollectionsDir == "" {
		return nil, fmt.Errorf("either DATABASE_URL or COLLECTIONS_DIR is required")
	}

	if _, err := limiter.NewRateFromFormatted(cfg.RateLimit); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT %q: %w", cfg.RateLimit, err)
	}

	return cfg, nil
}

// RequireRabbitMQ checks the settings the session worker cannot run without
func (c *Config) RequireRabbitMQ() error {
	if c.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL is required for publishing session transitions")
	}
	if len(c.WatchCollections) == 0 {
		return fmt.Errorf("WATCH_COLLECTIONS must list at least one collection id")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping blank entries
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
