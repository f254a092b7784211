package email

import (
	"context"
	"time"
)

// EmailMessage represents an email retrieved from a mailbox
type EmailMessage struct {
	ID        string            `json:"id"`
	ThreadID  string            `json:"thread_id"`
	From      string            `json:"from"`
	Subject   string            `json:"subject"`
	Date      time.Time         `json:"date"`
	Headers   map[string]string `json:"headers"`
	PlainText string            `json:"plain_text"`
	HTMLText  string            `json:"html_text"`
	Labels    []string          `json:"labels"`
}

// EmailClient defines the interface for email retrieval
type EmailClient interface {
	// Search retrieves emails matching the given query
	Search(ctx context.Context, query string) ([]EmailMessage, error)

	// GetMessage retrieves a specific email by ID
	GetMessage(ctx context.Context, id string) (*EmailMessage, error)

	// HealthCheck verifies the email connection is working
	HealthCheck(ctx context.Context) error

	// Close cleans up the client resources
	Close() error
}

// StateEntry tracks the processing outcome of a single email
type StateEntry struct {
	GmailMessageID string    `json:"gmail_message_id"`
	GmailThreadID  string    `json:"gmail_thread_id"`
	ProcessedAt    time.Time `json:"processed_at"`
	Status         string    `json:"status"` // "processed", "discarded", "error"
	Sender         string    `json:"sender"`
	Subject        string    `json:"subject"`
	Label          string    `json:"label"` // classifier label assigned, if any
	ErrorMessage   string    `json:"error_message,omitempty"`
}

// StateManager defines the interface for tracking processed emails
type StateManager interface {
	// IsProcessed checks if an email has already been processed
	IsProcessed(messageID string) (bool, error)

	// MarkProcessed records an email's processing outcome
	MarkProcessed(entry *StateEntry) error

	// GetStats returns processing statistics
	GetStats() (*StateStats, error)

	// Cleanup removes entries older than the given cutoff
	Cleanup(olderThan time.Time) error

	// Close cleans up state manager resources
	Close() error
}

// StateStats provides statistics about email ingest state
type StateStats struct {
	TotalEmails     int       `json:"total_emails"`
	ProcessedEmails int       `json:"processed_emails"`
	DiscardedEmails int       `json:"discarded_emails"`
	ErrorEmails     int       `json:"error_emails"`
	LastProcessed   time.Time `json:"last_processed"`
}
