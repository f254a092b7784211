package database

import (
	"database/sql"
	"time"
)

// InboundEmail is a stored brokerage message plus the pipeline's verdict on it.
// Labeled rows double as the classifier's accumulated training corpus.
type InboundEmail struct {
	ID              int        `json:"id"`
	MessageID       string     `json:"message_id"`
	Sender          string     `json:"sender"`
	Subject         string     `json:"subject"`
	BodyText        string     `json:"body_text"`
	Label           string     `json:"label"` // CARGO, VESSEL or OTHER
	LabelConfidence float64    `json:"label_confidence"`
	GateDecision    string     `json:"gate_decision"`
	Reviewed        bool       `json:"reviewed"`
	ReceivedAt      *time.Time `json:"received_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// EmailStore handles database operations for inbound emails
type EmailStore struct {
	db *sql.DB
}

func NewEmailStore(db *sql.DB) *EmailStore {
	return &EmailStore{db: db}
}

const emailColumns = `id, message_id, sender, subject, body_text, label,
	label_confidence, gate_decision, reviewed, received_at, created_at`

func scanEmail(scanner interface {
	Scan(dest ...interface{}) error
}) (*InboundEmail, error) {
	var email InboundEmail
	var label, gateDecision sql.NullString
	var confidence sql.NullFloat64
	err := scanner.Scan(&email.ID, &email.MessageID, &email.Sender, &email.Subject,
		&email.BodyText, &label, &confidence, &gateDecision, &email.Reviewed,
		&email.ReceivedAt, &email.CreatedAt)
	if err != nil {
		return nil, err
	}
	email.Label = label.String
	email.LabelConfidence = confidence.Float64
	email.GateDecision = gateDecision.String
	return &email, nil
}

// GetAll returns all stored emails, newest first
func (s *EmailStore) GetAll() ([]InboundEmail, error) {
	rows, err := s.db.Query(
		`SELECT ` + emailColumns + ` FROM inbound_emails ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEmails(rows)
}

// GetUnreviewed returns emails awaiting label review, oldest first
func (s *EmailStore) GetUnreviewed() ([]InboundEmail, error) {
	rows, err := s.db.Query(
		`SELECT ` + emailColumns + ` FROM inbound_emails WHERE reviewed = FALSE ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEmails(rows)
}

func collectEmails(rows *sql.Rows) ([]InboundEmail, error) {
	var emails []InboundEmail
	for rows.Next() {
		email, err := scanEmail(rows)
		if err != nil {
			return nil, err
		}
		emails = append(emails, *email)
	}
	return emails, rows.Err()
}

// GetByID retrieves an email by its row ID
func (s *EmailStore) GetByID(id int) (*InboundEmail, error) {
	return scanEmail(s.db.QueryRow(
		`SELECT `+emailColumns+` FROM inbound_emails WHERE id = ?`, id))
}

// GetByMessageID retrieves an email by its mailbox message ID
func (s *EmailStore) GetByMessageID(messageID string) (*InboundEmail, error) {
	return scanEmail(s.db.QueryRow(
		`SELECT `+emailColumns+` FROM inbound_emails WHERE message_id = ?`, messageID))
}

// IsProcessed reports whether a message has already been ingested
func (s *EmailStore) IsProcessed(messageID string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM inbound_emails WHERE message_id = ?`, messageID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create stores a new inbound email
func (s *EmailStore) Create(email *InboundEmail) error {
	query := `INSERT INTO inbound_emails (message_id, sender, subject, body_text, label,
			  label_confidence, gate_decision, reviewed, received_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.Exec(query, email.MessageID, email.Sender, email.Subject,
		email.BodyText, nullString(email.Label), email.LabelConfidence,
		nullString(email.GateDecision), email.Reviewed, email.ReceivedAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	email.ID = int(id)
	return nil
}

// SetLabel records a (possibly corrected) label for an email. Reviewed labels
// feed classifier retraining.
func (s *EmailStore) SetLabel(id int, label string, reviewed bool) error {
	result, err := s.db.Exec(
		`UPDATE inbound_emails SET label = ?, reviewed = ? WHERE id = ?`,
		label, reviewed, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetLabeled returns all emails carrying a label, oldest first. This is the
// accumulated training set for classifier retraining.
func (s *EmailStore) GetLabeled() ([]InboundEmail, error) {
	rows, err := s.db.Query(
		`SELECT ` + emailColumns + ` FROM inbound_emails
		 WHERE label IS NOT NULL AND label != '' ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []InboundEmail
	for rows.Next() {
		email, err := scanEmail(rows)
		if err != nil {
			return nil, err
		}
		emails = append(emails, *email)
	}

	return emails, rows.Err()
}

// DeleteOlderThan removes unreviewed emails older than the cutoff
func (s *EmailStore) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM inbound_emails WHERE reviewed = FALSE AND created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
