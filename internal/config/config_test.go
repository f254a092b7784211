package config

import (
	"os"
	"testing"
	"time"
)

// clearServerEnv unsets every variable Load consults so tests start clean
func clearServerEnv(t *testing.T) {
	t.Helper()
	vars := []string{
		"SERVER_PORT", "SERVER_HOST", "DB_PATH", "LOG_LEVEL",
		"DISABLE_RATE_LIMIT", "DISABLE_CACHE", "CACHE_TTL",
		"MATCH_MAX_LAYCAN_GAP_DAYS", "MATCH_MAX_DISTANCE_DAYS",
		"MATCH_MAX_OVERSIZE_RATIO", "MATCH_ROUTE_FACTOR", "MATCH_MIN_SCORE",
		"MATCH_REFRESH_ENABLED", "MATCH_REFRESH_INTERVAL",
		"MATCH_EXPIRE_AFTER_DAYS", "RETRAIN_ON_STARTUP",
	}
	for _, key := range vars {
		if value, ok := os.LookupEnv(key); ok {
			t.Setenv(key, value) // restore afterwards
			os.Unsetenv(key)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearServerEnv(t)

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.ServerPort != "8080" {
		t.Errorf("ServerPort = %s, want 8080", config.ServerPort)
	}
	if config.ServerHost != "localhost" {
		t.Errorf("ServerHost = %s, want localhost", config.ServerHost)
	}
	if config.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", config.LogLevel)
	}
	if config.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", config.CacheTTL)
	}
	if config.MatchMaxLaycanGapDays != 3 {
		t.Errorf("MatchMaxLaycanGapDays = %d, want 3", config.MatchMaxLaycanGapDays)
	}
	if config.MatchRouteFactor != 1.20 {
		t.Errorf("MatchRouteFactor = %v, want 1.20", config.MatchRouteFactor)
	}
	if !config.MatchRefreshEnabled {
		t.Error("MatchRefreshEnabled = false, want true")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearServerEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MATCH_MIN_SCORE", "75")
	t.Setenv("DISABLE_CACHE", "true")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.ServerPort != "9090" {
		t.Errorf("ServerPort = %s, want 9090", config.ServerPort)
	}
	if config.MatchMinScore != 75 {
		t.Errorf("MatchMinScore = %v, want 75", config.MatchMinScore)
	}
	if !config.DisableCache {
		t.Error("DisableCache = false, want true")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "SERVER_PORT", "not-a-port"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"oversize ratio out of range", "MATCH_MAX_OVERSIZE_RATIO", "1.5"},
		{"route factor below one", "MATCH_ROUTE_FACTOR", "0.8"},
		{"min score above hundred", "MATCH_MIN_SCORE", "150"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearServerEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s expected error, got nil", tt.key, tt.value)
			}
		})
	}
}

func TestAddress(t *testing.T) {
	config := &Config{ServerHost: "localhost", ServerPort: "8080"}
	if got := config.Address(); got != "localhost:8080" {
		t.Errorf("Address() = %s, want localhost:8080", got)
	}
}

func TestMatchCriteria(t *testing.T) {
	clearServerEnv(t)
	t.Setenv("MATCH_MAX_LAYCAN_GAP_DAYS", "5")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	criteria := config.MatchCriteria()
	if criteria.MaxLaycanGapDays != 5 {
		t.Errorf("MaxLaycanGapDays = %d, want 5", criteria.MaxLaycanGapDays)
	}
	if criteria.RouteFactor != 1.20 {
		t.Errorf("RouteFactor = %v, want default 1.20", criteria.RouteFactor)
	}
}
