package cmd

import (
	"testing"
)

func TestLoadConfiguration_DryRunOverride(t *testing.T) {
	t.Setenv("GMAIL_CLIENT_ID", "test-client-id")
	t.Setenv("GMAIL_CLIENT_SECRET", "test-client-secret")
	t.Setenv("EMAIL_DRY_RUN", "false")

	dryRun = true
	defer func() { dryRun = false }()

	cfg, err := loadConfiguration()
	if err != nil {
		t.Fatalf("loadConfiguration() error = %v", err)
	}

	if !cfg.Processing.DryRun {
		t.Error("Expected --dry-run flag to override EMAIL_DRY_RUN=false")
	}
}

func TestLoadConfiguration_RequiresCredentials(t *testing.T) {
	t.Setenv("GMAIL_CLIENT_ID", "")
	t.Setenv("GMAIL_CLIENT_SECRET", "")

	if _, err := loadConfiguration(); err == nil {
		t.Error("Expected error without Gmail credentials")
	}
}

func TestRootCommandFlags(t *testing.T) {
	if rootCmd.PersistentFlags().Lookup("config") == nil {
		t.Error("Expected --config flag to be registered")
	}
	if rootCmd.PersistentFlags().Lookup("dry-run") == nil {
		t.Error("Expected --dry-run flag to be registered")
	}
}
