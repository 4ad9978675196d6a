package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	Port        string
	DatabaseURL string // Hosted Postgres (Supabase)
	Version     string
	LogLevel    string

	WasenderBaseURL string // WhatsApp gateway base URL
	WasenderAPIKey  string // WhatsApp gateway API key
	WebhookSecret   string // Shared secret for inbound gateway webhooks

	OpenAIKey     string // Assistant platform API key
	OpenAITimeout int    // Assistant platform timeout in seconds

	RedisAddr    string // Optional: cross-instance realtime fan-out
	RedisChannel string

	SendGridAPIKey string // Escalation notification emails
	NotifyEmail    string // Recipient for handoff/escalation notifications
	SiteURL        string // Public site URL used in notification links

	AdminUsername string
	AdminPassword string

	SyncBatchSize    int // Avatar backfill batch size
	SyncBatchDelayMs int // Delay between avatar batches

	AssistantCacheTTL int // Assistant catalog cache TTL in minutes
}

// Load initializes and returns application configuration
func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Version:     getEnv("VERSION", "1.0.0"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		WasenderBaseURL: os.Getenv("WASENDER_BASE_URL"),
		WasenderAPIKey:  os.Getenv("WASENDER_API_KEY"),
		WebhookSecret:   os.Getenv("WEBHOOK_SECRET"),

		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAITimeout: getEnvInt("OPENAI_TIMEOUT", 60),

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisChannel: getEnv("REDIS_CHANNEL", "realtime"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		NotifyEmail:    os.Getenv("NOTIFY_EMAIL"),
		SiteURL:        getEnv("SITE_URL", "http://localhost:3000"),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		SyncBatchSize:    getEnvInt("SYNC_BATCH_SIZE", 5),
		SyncBatchDelayMs: getEnvInt("SYNC_BATCH_DELAY_MS", 500),

		AssistantCacheTTL: getEnvInt("ASSISTANT_CACHE_TTL_MINUTES", 10),
	}

	return config
}

// HasGateway reports whether the WhatsApp gateway is configured.
func (c *Config) HasGateway() bool {
	return c.WasenderBaseURL != "" && c.WasenderAPIKey != ""
}

// HasRedis reports whether cross-instance realtime fan-out is configured.
func (c *Config) HasRedis() bool {
	return c.RedisAddr != ""
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a default fallback
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// SetupLogger configures zerolog with JSON output and single-line format
func (c *Config) SetupLogger() zerolog.Logger {
	// Configure zerolog to output JSON without newlines
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Create logger with JSON output to stdout
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "waconsole").
		Str("version", c.Version).
		Logger()

	// Set log level based on configuration
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	return logger
}
