package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadServerConfigWithViper loads server configuration using Viper
func LoadServerConfigWithViper(v *viper.Viper) (*Config, error) {
	setServerDefaults(v)
	setupServerEnvBinding(v)

	if err := loadConfigFile(v); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	config := &Config{}
	if err := unmarshalServerConfig(v, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setServerDefaults sets default values for server configuration
func setServerDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "localhost")

	v.SetDefault("database.path", "./fixtures.db")

	v.SetDefault("logging.level", "info")

	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.disabled", false)
	v.SetDefault("rate_limit.disabled", false)

	v.SetDefault("matching.max_laycan_gap_days", 3)
	v.SetDefault("matching.max_distance_days", 2.0)
	v.SetDefault("matching.max_oversize_ratio", 0.35)
	v.SetDefault("matching.route_factor", 1.20)
	v.SetDefault("matching.min_score", 60.0)

	v.SetDefault("refresh.enabled", true)
	v.SetDefault("refresh.interval", "1h")
	v.SetDefault("refresh.expire_after_days", 14)

	v.SetDefault("classifier.retrain_on_startup", true)
}

// setupServerEnvBinding sets up environment variable binding for server
// configuration. Both the prefixed and bare variable names are honored, bare
// names matching what the env-based loader reads.
func setupServerEnvBinding(v *viper.Viper) {
	v.SetEnvPrefix("FIXTURE_MATCHER")
	v.AutomaticEnv()

	envBindings := map[string]string{
		"server.port":                   "SERVER_PORT",
		"server.host":                   "SERVER_HOST",
		"database.path":                 "DB_PATH",
		"logging.level":                 "LOG_LEVEL",
		"cache.ttl":                     "CACHE_TTL",
		"cache.disabled":                "DISABLE_CACHE",
		"rate_limit.disabled":           "DISABLE_RATE_LIMIT",
		"matching.max_laycan_gap_days":  "MATCH_MAX_LAYCAN_GAP_DAYS",
		"matching.max_distance_days":    "MATCH_MAX_DISTANCE_DAYS",
		"matching.max_oversize_ratio":   "MATCH_MAX_OVERSIZE_RATIO",
		"matching.route_factor":         "MATCH_ROUTE_FACTOR",
		"matching.min_score":            "MATCH_MIN_SCORE",
		"refresh.enabled":               "MATCH_REFRESH_ENABLED",
		"refresh.interval":              "MATCH_REFRESH_INTERVAL",
		"refresh.expire_after_days":     "MATCH_EXPIRE_AFTER_DAYS",
		"classifier.retrain_on_startup": "RETRAIN_ON_STARTUP",
	}

	for configKey, envVar := range envBindings {
		v.BindEnv(configKey, "FIXTURE_MATCHER_"+envVar, envVar)
	}
}

// loadConfigFile loads configuration file if it exists
func loadConfigFile(v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.fixture-matcher")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return nil
}

// unmarshalServerConfig unmarshals Viper configuration into the Config struct
func unmarshalServerConfig(v *viper.Viper, config *Config) error {
	config.ServerPort = v.GetString("server.port")
	config.ServerHost = v.GetString("server.host")
	config.DBPath = v.GetString("database.path")
	config.LogLevel = v.GetString("logging.level")

	var err error
	config.CacheTTL, err = time.ParseDuration(v.GetString("cache.ttl"))
	if err != nil {
		return fmt.Errorf("invalid cache TTL: %w", err)
	}

	config.MatchRefreshInterval, err = time.ParseDuration(v.GetString("refresh.interval"))
	if err != nil {
		return fmt.Errorf("invalid refresh interval: %w", err)
	}

	config.DisableRateLimit = v.GetBool("rate_limit.disabled")
	config.DisableCache = v.GetBool("cache.disabled")
	config.MatchRefreshEnabled = v.GetBool("refresh.enabled")
	config.RetrainOnStartup = v.GetBool("classifier.retrain_on_startup")

	config.MatchMaxLaycanGapDays = v.GetInt("matching.max_laycan_gap_days")
	config.MatchExpireAfterDays = v.GetInt("refresh.expire_after_days")

	config.MatchMaxDistanceDays = v.GetFloat64("matching.max_distance_days")
	config.MatchMaxOversizeRatio = v.GetFloat64("matching.max_oversize_ratio")
	config.MatchRouteFactor = v.GetFloat64("matching.route_factor")
	config.MatchMinScore = v.GetFloat64("matching.min_score")

	return nil
}

// LoadServerConfig loads server configuration using a fresh Viper instance
func LoadServerConfig() (*Config, error) {
	v := viper.New()
	return LoadServerConfigWithViper(v)
}

// LoadServerConfigWithFile loads server configuration from a specific file
func LoadServerConfigWithFile(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	return LoadServerConfigWithViper(v)
}

// LoadServerConfigWithEnvFile loads server configuration with .env file support
func LoadServerConfigWithEnvFile(envFile string) (*Config, error) {
	if envFile != "" {
		LoadEnvFile(envFile)
	} else {
		LoadEnvFile(".env")
	}

	v := viper.New()
	return LoadServerConfigWithViper(v)
}
