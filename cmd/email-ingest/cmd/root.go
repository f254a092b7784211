package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"fixture-matching/internal/api"
	"fixture-matching/internal/config"
	"fixture-matching/internal/email"
	"fixture-matching/internal/workers"
)

const Version = "1.0.0"

var (
	configFile string
	dryRun     bool
)

var rootCmd = &cobra.Command{
	Use:   "email-ingest",
	Short: "Mailbox ingest service for the fixture matching system",
	Long: `Email Ingest Service

DESCRIPTION:
    Monitors a Gmail mailbox for brokerage circulars (vessel open positions
    and cargo orders) and submits them to the fixture matching API for
    classification, extraction, and matching.

CONFIGURATION:
    Configuration is done via environment variables and .env files:

    Gmail API Configuration:
        GMAIL_CLIENT_ID         - OAuth2 client ID
        GMAIL_CLIENT_SECRET     - OAuth2 client secret
        GMAIL_REFRESH_TOKEN     - OAuth2 refresh token
        GMAIL_ACCESS_TOKEN      - OAuth2 access token
        GMAIL_MAX_RESULTS       - Maximum messages per search (default: 100)
        GMAIL_RATE_LIMIT_DELAY  - Delay between message fetches (default: 100ms)

    Search Configuration:
        GMAIL_SEARCH_QUERY      - Explicit Gmail search query (overrides defaults)
        GMAIL_SEARCH_AFTER_DAYS - Days of history to search (default: 30)
        GMAIL_SEARCH_UNREAD_ONLY - Only search unread messages (default: false)

    Processing Configuration:
        EMAIL_CHECK_INTERVAL    - How often to scan for new emails (default: 5m)
        EMAIL_MAX_PER_RUN       - Maximum emails to process per run (default: 50)
        EMAIL_DRY_RUN           - Parse emails without persisting positions (default: false)
        EMAIL_STATE_DB_PATH     - SQLite database for ingest state (default: ./email-state.db)
        EMAIL_MIN_CONFIDENCE    - Minimum classification confidence (default: 0.5)

    API Configuration:
        EMAIL_API_URL           - Fixture matching API URL (default: http://localhost:8080)
        EMAIL_API_TIMEOUT       - API request timeout (default: 30s)
        EMAIL_API_RETRY_COUNT   - Number of API retries (default: 3)

EXAMPLES:
    # Basic usage with OAuth2
    export GMAIL_CLIENT_ID="your-client-id"
    export GMAIL_CLIENT_SECRET="your-client-secret"
    export GMAIL_REFRESH_TOKEN="your-refresh-token"
    email-ingest

    # With custom configuration file
    email-ingest --config=.env.production

    # Dry run mode for testing
    email-ingest --dry-run`,
	Version: Version,
	RunE:    runEmailIngest,
}

// Execute runs the root command
func Execute() {
	fang.Execute(context.Background(), rootCmd)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env in current directory)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "parse emails without persisting positions")
}

// loadConfiguration loads configuration from files and environment variables
func loadConfiguration() (*config.EmailConfig, error) {
	var cfg *config.EmailConfig
	var err error

	if configFile != "" {
		cfg, err = config.LoadEmailConfigWithEnvFile(configFile)
	} else {
		cfg, err = config.LoadEmailConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// CLI flag overrides the environment
	if dryRun {
		cfg.Processing.DryRun = true
	}

	return cfg, nil
}

// runEmailIngest is the main execution function for the ingest service
func runEmailIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logLevel := slog.LevelInfo
	if cfg.Processing.DebugMode {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	logger.Info("Starting email ingest service", "version", Version)
	logger.Info("Configuration loaded",
		"dry_run", cfg.Processing.DryRun,
		"check_interval", cfg.Processing.CheckInterval,
		"api_url", cfg.API.URL)

	if configJSON, err := cfg.ToJSON(); err == nil {
		logger.Debug("Configuration details", "config", configJSON)
	}

	// Gmail client
	if !cfg.IsOAuth2Configured() {
		return fmt.Errorf("no valid email authentication method configured")
	}
	emailClient, err := email.NewGmailClient(&cfg.Gmail, &cfg.Search)
	if err != nil {
		return fmt.Errorf("failed to create email client: %w", err)
	}
	defer emailClient.Close()

	logger.Info("Email client initialized")

	// Ingest state store
	stateManager, err := email.NewSQLiteStateManager(cfg.Processing.StateDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize state manager: %w", err)
	}
	defer stateManager.Close()

	logger.Info("State manager initialized", "db_path", cfg.Processing.StateDBPath)

	// Parse-submission client
	apiClient := api.NewClient(&cfg.API)
	if err := apiClient.HealthCheck(); err != nil {
		return fmt.Errorf("API health check failed: %w", err)
	}

	logger.Info("API client initialized", "url", apiClient.GetBaseURL())

	// Start the processor and block until a shutdown signal
	processor := workers.NewEmailProcessor(cfg, emailClient, stateManager, apiClient, logger)
	processor.Start()
	defer processor.Stop()

	logger.Info("Email ingest service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("Received shutdown signal", "signal", sig.String())
	return nil
}
