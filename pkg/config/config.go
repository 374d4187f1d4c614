// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/depotlabs/filedepot/pkg/store"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Redis    store.RedisConfig
	Storage  StorageConfig
	Session  SessionConfig
	LogLevel string
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

// StorageConfig holds the document store and blob store locations
type StorageConfig struct {
	SQLitePath string
	BlobRoot   string
}

// SessionConfig holds session lifetime settings
type SessionConfig struct {
	TTL time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("FILEDEPOT_HOST", "0.0.0.0"),
			Port:            getEnv("FILEDEPOT_PORT", "5000"),
			ReadTimeout:     getEnvDuration("FILEDEPOT_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("FILEDEPOT_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("FILEDEPOT_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("FILEDEPOT_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Redis: store.RedisConfig{
			URL:        getEnv("FILEDEPOT_REDIS_URL", "redis://localhost:6379"),
			Password:   getEnv("FILEDEPOT_REDIS_PASSWORD", ""),
			DB:         getEnvInt("FILEDEPOT_REDIS_DB", 0),
			MaxRetries: getEnvInt("FILEDEPOT_REDIS_MAX_RETRIES", 3),
			PoolSize:   getEnvInt("FILEDEPOT_REDIS_POOL_SIZE", 10),
		},
		Storage: StorageConfig{
			SQLitePath: getEnv("FILEDEPOT_SQLITE_PATH", "filedepot.db"),
			BlobRoot:   getEnv("FILEDEPOT_BLOB_ROOT", "/tmp/filedepot"),
		},
		Session: SessionConfig{
			TTL: getEnvDuration("FILEDEPOT_SESSION_TTL", 24*time.Hour),
		},
		LogLevel: getEnv("FILEDEPOT_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("redis URL is required")
	}
	if c.Storage.SQLitePath == "" {
		return fmt.Errorf("sqlite path is required")
	}
	if c.Storage.BlobRoot == "" {
		return fmt.Errorf("blob root is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	return nil
}

// Addr returns the host:port the server binds to
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
