package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"fixture-matching/internal/cli"
)

// LoadCLIConfigWithViper loads CLI configuration using Viper
func LoadCLIConfigWithViper(v *viper.Viper) (*cli.Config, error) {
	setCLIDefaults(v)
	setupCLIEnvBinding(v)

	if err := loadCLIConfigFile(v); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	config := &cli.Config{}
	if err := unmarshalCLIConfig(v, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setCLIDefaults sets default values for CLI configuration
func setCLIDefaults(v *viper.Viper) {
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("format", "table")
	v.SetDefault("quiet", false)
	v.SetDefault("no_color", false)
	v.SetDefault("request_timeout", "60s") // matching runs can take a while
}

// setupCLIEnvBinding sets up environment variable binding for CLI configuration
func setupCLIEnvBinding(v *viper.Viper) {
	v.SetEnvPrefix("FIXTURE_MATCHER")
	v.AutomaticEnv()

	envBindings := map[string]string{
		"server_url":      "FIXTURE_MATCHER_SERVER",
		"format":          "FIXTURE_MATCHER_FORMAT",
		"quiet":           "FIXTURE_MATCHER_QUIET",
		"no_color":        "FIXTURE_MATCHER_NO_COLOR",
		"request_timeout": "FIXTURE_MATCHER_TIMEOUT",
	}

	for configKey, envVar := range envBindings {
		v.BindEnv(configKey, envVar)
	}

	// Honor the conventional NO_COLOR variable too
	v.BindEnv("no_color", "NO_COLOR")
}

// loadCLIConfigFile loads configuration file if it exists
func loadCLIConfigFile(v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME")
		v.SetConfigName("fixture-matcher")
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return nil
}

// unmarshalCLIConfig unmarshals Viper configuration into the CLI Config struct
func unmarshalCLIConfig(v *viper.Viper, config *cli.Config) error {
	config.ServerURL = v.GetString("server_url")
	config.Format = v.GetString("format")
	config.Quiet = v.GetBool("quiet")
	config.NoColor = v.GetBool("no_color")

	timeoutStr := v.GetString("request_timeout")
	if timeoutStr == "" {
		config.RequestTimeout = 60 * time.Second
		return nil
	}

	if duration, err := time.ParseDuration(timeoutStr); err == nil {
		config.RequestTimeout = duration
		return nil
	}

	// Bare integers are treated as seconds
	seconds, err := strconv.Atoi(timeoutStr)
	if err != nil {
		return fmt.Errorf("invalid request timeout: %s", timeoutStr)
	}
	if seconds <= 0 {
		return fmt.Errorf("request timeout must be positive, got %d seconds", seconds)
	}
	config.RequestTimeout = time.Duration(seconds) * time.Second

	return nil
}

// LoadCLIConfig loads CLI configuration using a fresh Viper instance
func LoadCLIConfig() (*cli.Config, error) {
	v := viper.New()
	return LoadCLIConfigWithViper(v)
}

// LoadCLIConfigWithFile loads CLI configuration from a specific file
func LoadCLIConfigWithFile(configFile string) (*cli.Config, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	return LoadCLIConfigWithViper(v)
}
