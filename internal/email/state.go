package email

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStateManager tracks which emails the ingest worker has already
// handled, so repeated mailbox searches do not reprocess the same message
type SQLiteStateManager struct {
	db *sql.DB
}

// NewSQLiteStateManager creates a new SQLite-based state manager
func NewSQLiteStateManager(dbPath string) (*SQLiteStateManager, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	manager := &SQLiteStateManager{db: db}
	if err := manager.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create state schema: %w", err)
	}

	return manager, nil
}

// createSchema creates the processed_emails table if it doesn't exist
func (s *SQLiteStateManager) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS processed_emails (
		gmail_message_id TEXT PRIMARY KEY,
		gmail_thread_id TEXT NOT NULL DEFAULT '',
		processed_at DATETIME NOT NULL,
		status TEXT NOT NULL DEFAULT 'processed',
		sender TEXT NOT NULL DEFAULT '',
		subject TEXT NOT NULL DEFAULT '',
		label TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_processed_emails_processed_at ON processed_emails(processed_at);
	CREATE INDEX IF NOT EXISTS idx_processed_emails_status ON processed_emails(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// IsProcessed checks if an email has already been processed
func (s *SQLiteStateManager) IsProcessed(messageID string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM processed_emails WHERE gmail_message_id = ?",
		messageID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check processed state: %w", err)
	}
	return count > 0, nil
}

// MarkProcessed records an email's processing outcome
func (s *SQLiteStateManager) MarkProcessed(entry *StateEntry) error {
	if entry.GmailMessageID == "" {
		return fmt.Errorf("gmail message ID is required")
	}

	processedAt := entry.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO processed_emails (gmail_message_id, gmail_thread_id, processed_at, status, sender, subject, label, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(gmail_message_id) DO UPDATE SET
			processed_at = excluded.processed_at,
			status = excluded.status,
			label = excluded.label,
			error_message = excluded.error_message`,
		entry.GmailMessageID, entry.GmailThreadID, processedAt,
		entry.Status, entry.Sender, entry.Subject, entry.Label, entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to mark email processed: %w", err)
	}
	return nil
}

// GetRecentEntries returns the most recently processed entries
func (s *SQLiteStateManager) GetRecentEntries(limit int) ([]StateEntry, error) {
	rows, err := s.db.Query(`
		SELECT gmail_message_id, gmail_thread_id, processed_at, status, sender, subject, label, error_message
		FROM processed_emails
		ORDER BY processed_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent entries: %w", err)
	}
	defer rows.Close()

	var entries []StateEntry
	for rows.Next() {
		var entry StateEntry
		err := rows.Scan(
			&entry.GmailMessageID, &entry.GmailThreadID, &entry.ProcessedAt,
			&entry.Status, &entry.Sender, &entry.Subject, &entry.Label, &entry.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// GetStats returns processing statistics
func (s *SQLiteStateManager) GetStats() (*StateStats, error) {
	stats := &StateStats{}

	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COUNT(CASE WHEN status = 'processed' THEN 1 END),
			COUNT(CASE WHEN status = 'discarded' THEN 1 END),
			COUNT(CASE WHEN status = 'error' THEN 1 END)
		FROM processed_emails`,
	).Scan(&stats.TotalEmails, &stats.ProcessedEmails, &stats.DiscardedEmails, &stats.ErrorEmails)
	if err != nil {
		return nil, fmt.Errorf("failed to query state stats: %w", err)
	}

	var lastProcessed sql.NullTime
	err = s.db.QueryRow("SELECT MAX(processed_at) FROM processed_emails").Scan(&lastProcessed)
	if err != nil {
		return nil, fmt.Errorf("failed to query last processed time: %w", err)
	}
	if lastProcessed.Valid {
		stats.LastProcessed = lastProcessed.Time
	}

	return stats, nil
}

// Cleanup removes entries older than the given cutoff and reclaims space
func (s *SQLiteStateManager) Cleanup(olderThan time.Time) error {
	result, err := s.db.Exec("DELETE FROM processed_emails WHERE processed_at < ?", olderThan)
	if err != nil {
		return fmt.Errorf("failed to clean up old entries: %w", err)
	}

	deleted, _ := result.RowsAffected()
	if deleted > 0 {
		if _, err := s.db.Exec("VACUUM"); err != nil {
			return fmt.Errorf("failed to vacuum state database: %w", err)
		}
	}

	return nil
}

// Close closes the state database
func (s *SQLiteStateManager) Close() error {
	return s.db.Close()
}
