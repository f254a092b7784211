package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func clearCLIEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FIXTURE_MATCHER_SERVER", "FIXTURE_MATCHER_FORMAT",
		"FIXTURE_MATCHER_QUIET", "FIXTURE_MATCHER_NO_COLOR",
		"FIXTURE_MATCHER_TIMEOUT", "NO_COLOR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadCLIConfigDefaults(t *testing.T) {
	clearCLIEnv(t)

	config, err := LoadCLIConfigWithViper(viper.New())
	if err != nil {
		t.Fatalf("LoadCLIConfigWithViper() error = %v", err)
	}

	if config.ServerURL != "http://localhost:8080" {
		t.Errorf("ServerURL = %s, want http://localhost:8080", config.ServerURL)
	}
	if config.Format != "table" {
		t.Errorf("Format = %s, want table", config.Format)
	}
	if config.RequestTimeout != 60*time.Second {
		t.Errorf("RequestTimeout = %v, want 60s", config.RequestTimeout)
	}
}

func TestLoadCLIConfigEnvOverride(t *testing.T) {
	clearCLIEnv(t)
	t.Setenv("FIXTURE_MATCHER_SERVER", "http://broker.example:9000")
	t.Setenv("FIXTURE_MATCHER_FORMAT", "json")
	t.Setenv("FIXTURE_MATCHER_TIMEOUT", "120")

	config, err := LoadCLIConfigWithViper(viper.New())
	if err != nil {
		t.Fatalf("LoadCLIConfigWithViper() error = %v", err)
	}

	if config.ServerURL != "http://broker.example:9000" {
		t.Errorf("ServerURL = %s, want override", config.ServerURL)
	}
	if config.Format != "json" {
		t.Errorf("Format = %s, want json", config.Format)
	}
	// Bare integers are interpreted as seconds
	if config.RequestTimeout != 120*time.Second {
		t.Errorf("RequestTimeout = %v, want 120s", config.RequestTimeout)
	}
}

func TestLoadCLIConfigNoColorConvention(t *testing.T) {
	clearCLIEnv(t)
	t.Setenv("NO_COLOR", "1")

	config, err := LoadCLIConfigWithViper(viper.New())
	if err != nil {
		t.Fatalf("LoadCLIConfigWithViper() error = %v", err)
	}

	if !config.NoColor {
		t.Error("NoColor = false, want true when NO_COLOR is set")
	}
}

func TestLoadCLIConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad format", "FIXTURE_MATCHER_FORMAT", "xml"},
		{"bad timeout", "FIXTURE_MATCHER_TIMEOUT", "soon"},
		{"negative timeout", "FIXTURE_MATCHER_TIMEOUT", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCLIEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := LoadCLIConfigWithViper(viper.New()); err == nil {
				t.Errorf("LoadCLIConfigWithViper() with %s=%s expected error, got nil", tt.key, tt.value)
			}
		})
	}
}
