package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/proshop/proshop/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Auth          AuthConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Uploads       UploadsConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// AuthConfig holds session signing configuration. The secret is loaded once
// at process start and injected into the token issuer; it is never read ad hoc.
type AuthConfig struct {
	JWTSecret string
	DevMode   bool
}

// SecureCookies reports whether session cookies carry the Secure attribute.
// Only local development mode is allowed to drop it.
func (a AuthConfig) SecureCookies() bool {
	return !a.DevMode
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	PostgresURL string
	MaxConns    int
}

// RedisConfig holds optional Redis configuration for distributed login
// rate limiting. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// UploadsConfig holds local upload storage configuration
type UploadsConfig struct {
	Dir          string
	MaxSizeBytes int64
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("PROSHOP_HOST", "0.0.0.0"),
			Port:            getEnv("PROSHOP_PORT", "8080"),
			ReadTimeout:     getEnvDuration("PROSHOP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("PROSHOP_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("PROSHOP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("PROSHOP_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("PROSHOP_JWT_SECRET"),
			DevMode:   getEnvBool("PROSHOP_DEV_MODE", false),
		},
		Database: DatabaseConfig{
			PostgresURL: getEnv("PROSHOP_POSTGRES_URL", ""),
			MaxConns:    getEnvInt("PROSHOP_POSTGRES_MAX_CONNS", 20),
		},
		Redis: RedisConfig{
			Addr:     getEnv("PROSHOP_REDIS_URL", ""),
			Password: getEnv("PROSHOP_REDIS_PASSWORD", ""),
			DB:       getEnvInt("PROSHOP_REDIS_DB", 0),
		},
		Uploads: UploadsConfig{
			Dir:          getEnv("PROSHOP_UPLOAD_DIR", "uploads"),
			MaxSizeBytes: getEnvInt64("PROSHOP_UPLOAD_MAX_BYTES", 5<<20),
		},
		Observability: ObservabilityConfig{
			LogLevel:       parseLogLevel(getEnv("PROSHOP_LOG_LEVEL", "info")),
			MetricsEnabled: getEnvBool("PROSHOP_METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid. A missing signing secret is
// a fatal configuration error, not a deferred runtime failure on first login.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("PROSHOP_JWT_SECRET is required")
	}
	if c.Database.PostgresURL == "" {
		return fmt.Errorf("PROSHOP_POSTGRES_URL is required")
	}
	if c.Uploads.Dir == "" {
		return fmt.Errorf("upload directory is required")
	}
	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
