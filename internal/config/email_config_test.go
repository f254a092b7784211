package config

import (
	"os"
	"strings"
	"testing"
)

func setMinimalGmailEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GMAIL_CLIENT_ID", "client-id")
	t.Setenv("GMAIL_CLIENT_SECRET", "client-secret")
	t.Setenv("GMAIL_REFRESH_TOKEN", "refresh-token-value")
}

func TestLoadEmailConfigDefaults(t *testing.T) {
	setMinimalGmailEnv(t)

	config, err := LoadEmailConfig()
	if err != nil {
		t.Fatalf("LoadEmailConfig() error = %v", err)
	}

	if config.Gmail.MaxResults != 100 {
		t.Errorf("Gmail.MaxResults = %d, want 100", config.Gmail.MaxResults)
	}
	if config.Search.AfterDays != 30 {
		t.Errorf("Search.AfterDays = %d, want 30", config.Search.AfterDays)
	}
	if config.Processing.MaxEmailsPerRun != 50 {
		t.Errorf("Processing.MaxEmailsPerRun = %d, want 50", config.Processing.MaxEmailsPerRun)
	}
	if config.API.URL != "http://localhost:8080" {
		t.Errorf("API.URL = %s, want http://localhost:8080", config.API.URL)
	}
}

func TestLoadEmailConfigRequiresOAuth(t *testing.T) {
	for _, key := range []string{"GMAIL_CLIENT_ID", "GMAIL_CLIENT_SECRET"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	if _, err := LoadEmailConfig(); err == nil {
		t.Error("LoadEmailConfig() without credentials expected error, got nil")
	}
}

func TestLoadEmailConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"check interval too short", "EMAIL_CHECK_INTERVAL", "10s"},
		{"too many emails per run", "EMAIL_MAX_PER_RUN", "5000"},
		{"confidence out of range", "EMAIL_MIN_CONFIDENCE", "1.5"},
		{"search max results out of range", "GMAIL_SEARCH_MAX_RESULTS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setMinimalGmailEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := LoadEmailConfig(); err == nil {
				t.Errorf("LoadEmailConfig() with %s=%s expected error, got nil", tt.key, tt.value)
			}
		})
	}
}

func TestGetSearchQuery(t *testing.T) {
	setMinimalGmailEnv(t)
	t.Setenv("GMAIL_SEARCH_AFTER_DAYS", "0")

	config, err := LoadEmailConfig()
	if err != nil {
		t.Fatalf("LoadEmailConfig() error = %v", err)
	}

	query := config.GetSearchQuery()
	if !strings.Contains(query, "cargo") || !strings.Contains(query, "vessel") {
		t.Errorf("default query missing brokerage terms: %s", query)
	}

	config.Search.Query = "label:chartering"
	if got := config.GetSearchQuery(); got != "label:chartering" {
		t.Errorf("GetSearchQuery() = %s, want explicit query", got)
	}

	config.Search.Query = ""
	config.Search.UnreadOnly = true
	if got := config.GetSearchQuery(); !strings.Contains(got, "is:unread") {
		t.Errorf("GetSearchQuery() = %s, want is:unread filter", got)
	}
}

func TestToJSONRedactsSecrets(t *testing.T) {
	setMinimalGmailEnv(t)

	config, err := LoadEmailConfig()
	if err != nil {
		t.Fatalf("LoadEmailConfig() error = %v", err)
	}

	out, err := config.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	if strings.Contains(out, "client-secret") {
		t.Error("ToJSON() leaked client secret")
	}
	if strings.Contains(out, "refresh-token-value") {
		t.Error("ToJSON() leaked refresh token")
	}
}
