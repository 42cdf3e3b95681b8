// Package config loads application configuration from an optional YAML
// file and the DOCVAULT_* environment, with the environment taking
// precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/docvault/pkg/observability"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration. The timeout knobs are
// environment-only; YAML carries addresses and sizes.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeout    time.Duration `yaml:"-"`
	IdleTimeout     time.Duration `yaml:"-"`
	ShutdownTimeout time.Duration `yaml:"-"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`

	// Health/metrics server runs on its own port for probes.
	HealthPort string `yaml:"health_port"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	// Type is postgres or memory.
	Type        string `yaml:"type"`
	PostgresURL string `yaml:"postgres_url"`
}

// AuthConfig holds session settings.
type AuthConfig struct {
	// SessionTTL is how long a login session lives. In YAML it is set
	// through session_max_age_seconds.
	SessionTTL           time.Duration `yaml:"-"`
	SessionMaxAgeSeconds int           `yaml:"session_max_age_seconds"`
	// PurgeSchedule is a cron expression for expired-session cleanup.
	PurgeSchedule string `yaml:"purge_schedule"`
	// SecureCookies marks session cookies Secure; disable only for local
	// plain-HTTP development.
	SecureCookies bool `yaml:"secure_cookies"`
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel `yaml:"-"`
	LogLevelName   string                 `yaml:"log_level"`
	MetricsEnabled bool                   `yaml:"metrics_enabled"`
}

// LoadConfig builds configuration from defaults, then the YAML file named
// by DOCVAULT_CONFIG_FILE (if any), then environment overrides.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("DOCVAULT_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		if cfg.Auth.SessionMaxAgeSeconds > 0 {
			cfg.Auth.SessionTTL = time.Duration(cfg.Auth.SessionMaxAgeSeconds) * time.Second
		}
	}

	applyEnv(cfg)
	cfg.Observability.LogLevel = observability.ParseLogLevel(cfg.Observability.LogLevelName)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    1 << 20,
			HealthPort:      "9090",
		},
		Storage: StorageConfig{
			Type: "postgres",
		},
		Auth: AuthConfig{
			SessionTTL:    7 * 24 * time.Hour,
			PurgeSchedule: "@hourly",
			SecureCookies: true,
		},
		Observability: ObservabilityConfig{
			LogLevelName:   "info",
			MetricsEnabled: true,
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("DOCVAULT_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnv("DOCVAULT_PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getEnvDuration("DOCVAULT_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvDuration("DOCVAULT_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = getEnvDuration("DOCVAULT_IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Server.ShutdownTimeout = getEnvDuration("DOCVAULT_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.MaxBodyBytes = getEnvInt64("DOCVAULT_MAX_BODY_BYTES", cfg.Server.MaxBodyBytes)
	cfg.Server.HealthPort = getEnv("DOCVAULT_HEALTH_PORT", cfg.Server.HealthPort)

	cfg.Storage.Type = getEnv("DOCVAULT_STORAGE_TYPE", cfg.Storage.Type)
	cfg.Storage.PostgresURL = getEnv("DOCVAULT_POSTGRES_URL", cfg.Storage.PostgresURL)

	if seconds := getEnvInt("DOCVAULT_SESSION_MAX_AGE_SECONDS", 0); seconds > 0 {
		cfg.Auth.SessionTTL = time.Duration(seconds) * time.Second
	}
	cfg.Auth.PurgeSchedule = getEnv("DOCVAULT_SESSION_PURGE_SCHEDULE", cfg.Auth.PurgeSchedule)
	cfg.Auth.SecureCookies = getEnvBool("DOCVAULT_SECURE_COOKIES", cfg.Auth.SecureCookies)

	cfg.Observability.LogLevelName = getEnv("DOCVAULT_LOG_LEVEL", cfg.Observability.LogLevelName)
	cfg.Observability.MetricsEnabled = getEnvBool("DOCVAULT_METRICS_ENABLED", cfg.Observability.MetricsEnabled)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Storage.Type {
	case "memory":
	case "postgres":
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be postgres or memory)", c.Storage.Type)
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	return nil
}

// getEnv returns an environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default.
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
