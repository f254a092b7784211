package services

import (
	"fmt"
	"log/slog"
	"time"

	"fixture-matching/internal/classifier"
	"fixture-matching/internal/database"
)

// Relabeler re-runs the current classifier over stored emails. After a
// retrain the automatic labels assigned by the previous model may be stale,
// so unreviewed emails are scored again with the model now in service.
// Reviewed labels are human corrections and are never touched.
type Relabeler struct {
	emailStore *database.EmailStore
	model      *classifier.Ref
	logger     *slog.Logger
}

// RelabelResult represents the outcome of relabeling a single email
type RelabelResult struct {
	EmailID     int       `json:"email_id"`
	OldLabel    string    `json:"old_label"`
	NewLabel    string    `json:"new_label"`
	Confidence  float64   `json:"confidence"`
	Changed     bool      `json:"changed"`
	Error       string    `json:"error,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// RelabelSummary represents the overall results of a relabel operation
type RelabelSummary struct {
	TotalEmails    int             `json:"total_emails"`
	ChangedCount   int             `json:"changed_count"`
	FailureCount   int             `json:"failure_count"`
	Results        []RelabelResult `json:"results"`
	ProcessingTime time.Duration   `json:"processing_time"`
	StartedAt      time.Time       `json:"started_at"`
	CompletedAt    time.Time       `json:"completed_at"`
}

// NewRelabeler creates a new relabeler service
func NewRelabeler(emailStore *database.EmailStore, model *classifier.Ref, logger *slog.Logger) *Relabeler {
	return &Relabeler{
		emailStore: emailStore,
		model:      model,
		logger:     logger,
	}
}

// RelabelUnreviewed reclassifies all unreviewed emails with the current
// model. With dryRun set the new labels are reported but not written.
func (rl *Relabeler) RelabelUnreviewed(limit int, dryRun bool) (*RelabelSummary, error) {
	startTime := time.Now()

	rl.logger.Info("Starting relabel of unreviewed emails",
		"limit", limit,
		"dry_run", dryRun)

	emails, err := rl.emailStore.GetUnreviewed()
	if err != nil {
		return nil, fmt.Errorf("failed to load unreviewed emails: %w", err)
	}
	if limit > 0 && len(emails) > limit {
		emails = emails[:limit]
	}

	summary := &RelabelSummary{
		TotalEmails: len(emails),
		Results:     make([]RelabelResult, 0, len(emails)),
		StartedAt:   startTime,
	}

	for _, email := range emails {
		result := rl.relabelEmail(&email, dryRun)
		summary.Results = append(summary.Results, result)

		if result.Error != "" {
			summary.FailureCount++
		} else if result.Changed {
			summary.ChangedCount++
		}
	}

	summary.CompletedAt = time.Now()
	summary.ProcessingTime = summary.CompletedAt.Sub(startTime)

	rl.logger.Info("Completed relabel operation",
		"total", summary.TotalEmails,
		"changed", summary.ChangedCount,
		"failures", summary.FailureCount,
		"duration", summary.ProcessingTime)

	return summary, nil
}

// RelabelEmail reclassifies a single stored email by ID. Reviewed emails
// are refused: a human label outranks the model.
func (rl *Relabeler) RelabelEmail(emailID int, dryRun bool) (*RelabelResult, error) {
	email, err := rl.emailStore.GetByID(emailID)
	if err != nil {
		return nil, fmt.Errorf("failed to get email %d: %w", emailID, err)
	}
	if email.Reviewed {
		return nil, fmt.Errorf("email %d has a reviewed label", emailID)
	}

	result := rl.relabelEmail(email, dryRun)
	return &result, nil
}

func (rl *Relabeler) relabelEmail(email *database.InboundEmail, dryRun bool) RelabelResult {
	result := RelabelResult{
		EmailID:     email.ID,
		OldLabel:    email.Label,
		ProcessedAt: time.Now(),
	}

	classification, err := rl.model.Classify(email.Subject + "\n" + email.BodyText)
	if err != nil {
		result.Error = fmt.Sprintf("classification failed: %v", err)
		rl.logger.Warn("Failed to reclassify email",
			"email_id", email.ID,
			"error", err)
		return result
	}

	result.NewLabel = classification.Label
	result.Confidence = classification.Confidence
	result.Changed = classification.Label != email.Label

	if !result.Changed {
		return result
	}

	rl.logger.Debug("Email label changed",
		"email_id", email.ID,
		"old_label", email.Label,
		"new_label", classification.Label,
		"confidence", classification.Confidence)

	if dryRun {
		return result
	}

	if err := rl.emailStore.SetLabel(email.ID, classification.Label, false); err != nil {
		result.Error = fmt.Sprintf("failed to update label: %v", err)
		rl.logger.Error("Failed to update email label",
			"email_id", email.ID,
			"new_label", classification.Label,
			"error", err)
		return result
	}

	rl.logger.Info("Relabeled email",
		"email_id", email.ID,
		"old_label", email.Label,
		"new_label", classification.Label)
	return result
}
