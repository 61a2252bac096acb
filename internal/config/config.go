package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultSecretKey = "change-me-in-production"

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App      AppConfig
	Security SecurityConfig
	Log      LogConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

// SecurityConfig holds the form protection settings.
type SecurityConfig struct {
	SecretKey    string        // HMAC key for CSRF tokens
	CSRFEnabled  bool          // false only for local tooling
	CSRFTokenTTL time.Duration // lifetime of a rendered form
}

type LogConfig struct {
	Level string // debug, info, warn, error
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	ttl, err := time.ParseDuration(getEnv("CSRF_TOKEN_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CSRF_TOKEN_TTL: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "What to Watch"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Security: SecurityConfig{
			SecretKey:    getEnv("SECRET_KEY", defaultSecretKey),
			CSRFEnabled:  getEnvBool("CSRF_ENABLED", true),
			CSRFTokenTTL: ttl,
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.App.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("APP_PORT must be a valid port number, got %q", c.App.Port)
	}

	if c.Security.CSRFTokenTTL <= 0 {
		return fmt.Errorf("CSRF_TOKEN_TTL must be positive")
	}

	// Production environment phải có secret key riêng
	if c.IsProduction() {
		if c.Security.SecretKey == defaultSecretKey || c.Security.SecretKey == "" {
			return fmt.Errorf("SECRET_KEY must be set in production")
		}
		if !c.Security.CSRFEnabled {
			return fmt.Errorf("CSRF_ENABLED cannot be disabled in production")
		}
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
