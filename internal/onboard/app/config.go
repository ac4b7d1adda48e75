package app

import (
	"os"
	"strconv"
	"time"

	"github.com/tutorden/platform/internal/onboard/service"
	"github.com/tutorden/platform/pkg/jwtx"
)

type Config struct {
	BaseURL    string // Required: public origin used to build redemption links
	AdminToken string // Required in prod: bearer token guarding invitation creation

	DatabaseFile string        // Optional: path to SQLite database file (default: ./onboard.db)
	TokenTTL     time.Duration // Optional: invitation token lifetime (default: 48h)
	SessionTTL   time.Duration // Optional: session token lifetime (default: 24h)

	SMTPHost     string // Optional: SMTP relay host; empty disables email delivery
	SMTPPort     int    // Optional: SMTP relay port (default: 587)
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string // Optional: From address (default: noreply@tutorden.example)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-invitation sweep interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		BaseURL:    getEnvOrDefault("ONBOARD_BASE_URL", "http://localhost:8080"),
		AdminToken: os.Getenv("ONBOARD_ADMIN_TOKEN"),

		DatabaseFile: getEnvOrDefault("ONBOARD_DATABASE_FILE", "onboard.db"),
		TokenTTL:     getEnvDurationOrDefault("ONBOARD_TOKEN_TTL", service.DefaultTokenTTL),
		SessionTTL:   getEnvDurationOrDefault("ONBOARD_SESSION_TTL", jwtx.DefaultSessionTTL),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "noreply@tutorden.example"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
