package config

import (
	"fmt"
	"strconv"
	"time"

	"fixture-matching/internal/matching"
)

// Config holds all server configuration
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBPath string

	// Logging
	LogLevel string

	// Development/testing flags
	DisableRateLimit bool
	DisableCache     bool

	// Cache configuration
	CacheTTL time.Duration

	// Matching criteria, overridable per request via the API
	MatchMaxLaycanGapDays int
	MatchMaxDistanceDays  float64
	MatchMaxOversizeRatio float64
	MatchRouteFactor      float64
	MatchMinScore         float64

	// Match refresh worker configuration
	MatchRefreshEnabled  bool
	MatchRefreshInterval time.Duration
	MatchExpireAfterDays int

	// Classifier configuration
	RetrainOnStartup bool

	// Optional bearer token protecting the admin endpoints
	AdminAPIKey string
}

// Load loads configuration from environment variables with defaults.
// If a .env file exists, it will be loaded first.
func Load() (*Config, error) {
	loadEnvFile(".env")
	config := &Config{
		// Server defaults
		ServerPort: getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost: getEnvOrDefault("SERVER_HOST", "localhost"),

		// Database defaults
		DBPath: getEnvOrDefault("DB_PATH", "./fixtures.db"),

		// Logging
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		// Development/testing flags
		DisableRateLimit: getEnvBoolOrDefault("DISABLE_RATE_LIMIT", false),
		DisableCache:     getEnvBoolOrDefault("DISABLE_CACHE", false),

		CacheTTL: getEnvDurationOrDefault("CACHE_TTL", "5m"),

		// Matching criteria defaults
		MatchMaxLaycanGapDays: getEnvIntOrDefault("MATCH_MAX_LAYCAN_GAP_DAYS", matching.DefaultMaxLaycanGapDays),
		MatchMaxDistanceDays:  getEnvFloatOrDefault("MATCH_MAX_DISTANCE_DAYS", matching.DefaultMaxDistanceDays),
		MatchMaxOversizeRatio: getEnvFloatOrDefault("MATCH_MAX_OVERSIZE_RATIO", matching.DefaultMaxOversizeRatio),
		MatchRouteFactor:      getEnvFloatOrDefault("MATCH_ROUTE_FACTOR", matching.DefaultRouteFactor),
		MatchMinScore:         getEnvFloatOrDefault("MATCH_MIN_SCORE", matching.DefaultMinMatchScore),

		// Match refresh worker
		MatchRefreshEnabled:  getEnvBoolOrDefault("MATCH_REFRESH_ENABLED", true),
		MatchRefreshInterval: getEnvDurationOrDefault("MATCH_REFRESH_INTERVAL", "1h"),
		MatchExpireAfterDays: getEnvIntOrDefault("MATCH_EXPIRE_AFTER_DAYS", 14),

		RetrainOnStartup: getEnvBoolOrDefault("RETRAIN_ON_STARTUP", true),

		AdminAPIKey: getEnvOrDefault("ADMIN_API_KEY", ""),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// validate checks if the configuration is valid
func (c *Config) validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid server port: %s", c.ServerPort)
	}

	if c.DBPath == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	isValidLogLevel := false
	for _, level := range validLogLevels {
		if c.LogLevel == level {
			isValidLogLevel = true
			break
		}
	}
	if !isValidLogLevel {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}

	// Matching criteria share their validation with the engine
	if _, err := c.MatchCriteria().Normalized(); err != nil {
		return err
	}

	if c.MatchRefreshInterval <= 0 {
		return fmt.Errorf("match refresh interval must be positive")
	}
	if c.MatchExpireAfterDays < 1 {
		return fmt.Errorf("match expire after days must be at least 1")
	}

	return nil
}

// Address returns the full server address
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

// MatchCriteria returns the configured default matching criteria
func (c *Config) MatchCriteria() matching.Criteria {
	return matching.Criteria{
		MaxLaycanGapDays: c.MatchMaxLaycanGapDays,
		MaxDistanceDays:  c.MatchMaxDistanceDays,
		MaxOversizeRatio: c.MatchMaxOversizeRatio,
		RouteFactor:      c.MatchRouteFactor,
		MinMatchScore:    c.MatchMinScore,
	}
}

// GetDisableRateLimit returns the rate limit disable flag
func (c *Config) GetDisableRateLimit() bool {
	return c.DisableRateLimit
}

// GetDisableCache returns the cache disable flag
func (c *Config) GetDisableCache() bool {
	return c.DisableCache
}
