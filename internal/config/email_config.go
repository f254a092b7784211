package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// EmailConfig holds all email ingestion configuration
type EmailConfig struct {
	// Gmail API Configuration
	Gmail GmailConfig `json:"gmail"`

	// Search Configuration
	Search SearchConfig `json:"search"`

	// Processing Configuration
	Processing ProcessingConfig `json:"processing"`

	// API Configuration
	API APIConfig `json:"api"`
}

// GmailConfig holds Gmail-specific configuration
type GmailConfig struct {
	// OAuth2 Settings
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
	AccessToken  string `json:"access_token"`
	TokenFile    string `json:"token_file"`

	// Request Settings
	MaxResults     int64         `json:"max_results"`
	RequestTimeout time.Duration `json:"request_timeout"`
	RateLimitDelay time.Duration `json:"rate_limit_delay"`
}

// SearchConfig holds mailbox search configuration
type SearchConfig struct {
	Query         string   `json:"query"`
	AfterDays     int      `json:"after_days"`
	UnreadOnly    bool     `json:"unread_only"`
	MaxResults    int      `json:"max_results"`
	IncludeLabels []string `json:"include_labels"`
	ExcludeLabels []string `json:"exclude_labels"`
}

// ProcessingConfig holds email processing configuration
type ProcessingConfig struct {
	CheckInterval     time.Duration `json:"check_interval"`
	MaxEmailsPerRun   int           `json:"max_emails_per_run"`
	DryRun            bool          `json:"dry_run"`
	ProcessingTimeout time.Duration `json:"processing_timeout"`
	StateDBPath       string        `json:"state_db_path"`

	// Parsing Configuration
	MinConfidence float64 `json:"min_confidence"`
	DebugMode     bool    `json:"debug_mode"`
}

// APIConfig holds API client configuration
type APIConfig struct {
	URL           string        `json:"url"`
	Timeout       time.Duration `json:"timeout"`
	RetryCount    int           `json:"retry_count"`
	RetryDelay    time.Duration `json:"retry_delay"`
	UserAgent     string        `json:"user_agent"`
	BackoffFactor float64       `json:"backoff_factor"`
}

// LoadEmailConfig loads email configuration from environment variables
func LoadEmailConfig() (*EmailConfig, error) {
	return LoadEmailConfigWithEnvFile("")
}

// LoadEmailConfigWithEnvFile loads email configuration from environment
// variables and optionally loads a .env file first
func LoadEmailConfigWithEnvFile(envFile string) (*EmailConfig, error) {
	if envFile != "" {
		loadEnvFile(envFile)
	} else {
		loadEnvFile(".env")
	}
	config := &EmailConfig{
		Gmail: GmailConfig{
			ClientID:       getEnvOrDefault("GMAIL_CLIENT_ID", ""),
			ClientSecret:   getEnvOrDefault("GMAIL_CLIENT_SECRET", ""),
			RefreshToken:   getEnvOrDefault("GMAIL_REFRESH_TOKEN", ""),
			AccessToken:    getEnvOrDefault("GMAIL_ACCESS_TOKEN", ""),
			TokenFile:      getEnvOrDefault("GMAIL_TOKEN_FILE", "./gmail-token.json"),
			MaxResults:     getEnvInt64OrDefault("GMAIL_MAX_RESULTS", 100),
			RequestTimeout: getEnvDurationOrDefault("GMAIL_REQUEST_TIMEOUT", "30s"),
			RateLimitDelay: getEnvDurationOrDefault("GMAIL_RATE_LIMIT_DELAY", "100ms"),
		},

		Search: SearchConfig{
			Query:         getEnvOrDefault("GMAIL_SEARCH_QUERY", ""),
			AfterDays:     getEnvIntOrDefault("GMAIL_SEARCH_AFTER_DAYS", 30),
			UnreadOnly:    getEnvBoolOrDefault("GMAIL_SEARCH_UNREAD_ONLY", false),
			MaxResults:    getEnvIntOrDefault("GMAIL_SEARCH_MAX_RESULTS", 100),
			IncludeLabels: getEnvSliceOrDefault("GMAIL_INCLUDE_LABELS", []string{}),
			ExcludeLabels: getEnvSliceOrDefault("GMAIL_EXCLUDE_LABELS", []string{}),
		},

		Processing: ProcessingConfig{
			CheckInterval:     getEnvDurationOrDefault("EMAIL_CHECK_INTERVAL", "5m"),
			MaxEmailsPerRun:   getEnvIntOrDefault("EMAIL_MAX_PER_RUN", 50),
			DryRun:            getEnvBoolOrDefault("EMAIL_DRY_RUN", false),
			ProcessingTimeout: getEnvDurationOrDefault("EMAIL_PROCESSING_TIMEOUT", "10m"),
			StateDBPath:       getEnvOrDefault("EMAIL_STATE_DB_PATH", "./email-state.db"),
			MinConfidence:     getEnvFloatOrDefault("EMAIL_MIN_CONFIDENCE", 0.5),
			DebugMode:         getEnvBoolOrDefault("EMAIL_DEBUG_MODE", false),
		},

		API: APIConfig{
			URL:           getEnvOrDefault("EMAIL_API_URL", "http://localhost:8080"),
			Timeout:       getEnvDurationOrDefault("EMAIL_API_TIMEOUT", "30s"),
			RetryCount:    getEnvIntOrDefault("EMAIL_API_RETRY_COUNT", 3),
			RetryDelay:    getEnvDurationOrDefault("EMAIL_API_RETRY_DELAY", "1s"),
			UserAgent:     getEnvOrDefault("EMAIL_API_USER_AGENT", "fixture-ingest/1.0"),
			BackoffFactor: getEnvFloatOrDefault("EMAIL_API_BACKOFF_FACTOR", 2.0),
		},
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid email configuration: %w", err)
	}

	return config, nil
}

// validate checks if the configuration is valid
func (c *EmailConfig) validate() error {
	if c.Gmail.ClientID == "" {
		return fmt.Errorf("gmail_client_id is required")
	}

	if c.Gmail.ClientSecret == "" {
		return fmt.Errorf("gmail_client_secret is required")
	}

	if c.Search.AfterDays < 0 {
		return fmt.Errorf("search after_days must be non-negative")
	}

	if c.Search.MaxResults < 1 || c.Search.MaxResults > 1000 {
		return fmt.Errorf("search max_results must be between 1 and 1000")
	}

	if c.Processing.CheckInterval < time.Minute {
		return fmt.Errorf("check_interval must be at least 1 minute")
	}

	if c.Processing.MaxEmailsPerRun < 1 || c.Processing.MaxEmailsPerRun > 1000 {
		return fmt.Errorf("max_emails_per_run must be between 1 and 1000")
	}

	if c.Processing.MinConfidence < 0 || c.Processing.MinConfidence > 1.0 {
		return fmt.Errorf("min_confidence must be between 0.0 and 1.0")
	}

	if c.API.URL == "" {
		return fmt.Errorf("API URL cannot be empty")
	}

	if c.API.RetryCount < 0 || c.API.RetryCount > 10 {
		return fmt.Errorf("API retry_count must be between 0 and 10")
	}

	return nil
}

// GetSearchQuery returns the configured search query or builds a default one
func (c *EmailConfig) GetSearchQuery() string {
	if c.Search.Query != "" {
		return c.Search.Query
	}
	return buildDefaultSearchQuery(c.Search.AfterDays, c.Search.UnreadOnly)
}

// buildDefaultSearchQuery constructs a Gmail search query aimed at brokerage
// circulars
func buildDefaultSearchQuery(afterDays int, unreadOnly bool) string {
	query := `subject:(cargo OR vessel OR fixture OR laycan OR "open position" OR tonnage)`

	if afterDays > 0 {
		// Gmail date format: YYYY/MM/DD
		afterDate := time.Now().AddDate(0, 0, -afterDays).Format("2006/1/2")
		query += fmt.Sprintf(" after:%s", afterDate)
	}

	if unreadOnly {
		query += " is:unread"
	}

	return query
}

// IsOAuth2Configured returns true if OAuth2 is configured
func (c *EmailConfig) IsOAuth2Configured() bool {
	return c.Gmail.ClientID != "" && c.Gmail.ClientSecret != ""
}

// ToJSON serializes the configuration to JSON with sensitive fields redacted
func (c *EmailConfig) ToJSON() (string, error) {
	safe := *c
	safe.Gmail.ClientSecret = redact(safe.Gmail.ClientSecret)
	safe.Gmail.RefreshToken = redact(safe.Gmail.RefreshToken)
	safe.Gmail.AccessToken = redact(safe.Gmail.AccessToken)

	data, err := json.MarshalIndent(safe, "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func redact(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return "***"
	}
	return value[:4] + "***" + value[len(value)-4:]
}
