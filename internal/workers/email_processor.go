package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"fixture-matching/internal/api"
	"fixture-matching/internal/config"
	"fixture-matching/internal/email"
)

// APIClient submits emails to the parse endpoint
type APIClient interface {
	SubmitEmail(subject, body string, persist bool) (*api.ParseResult, error)
	HealthCheck() error
}

// ProcessingMetrics tracks email ingest statistics
type ProcessingMetrics struct {
	TotalRuns       atomic.Int64
	TotalEmails     atomic.Int64
	ProcessedEmails atomic.Int64
	DiscardedEmails atomic.Int64
	ErrorEmails     atomic.Int64
	PositionsFound  atomic.Int64
	LastRun         atomic.Value // time.Time
	LastError       atomic.Value // string
}

// EmailProcessor polls a mailbox for brokerage circulars and submits them to
// the parse endpoint
type EmailProcessor struct {
	ctx         context.Context
	cancel      context.CancelFunc
	config      *config.EmailConfig
	emailClient email.EmailClient
	state       email.StateManager
	apiClient   APIClient
	paused      atomic.Bool
	logger      *slog.Logger
	metrics     *ProcessingMetrics
}

// NewEmailProcessor creates a new email ingest worker
func NewEmailProcessor(
	cfg *config.EmailConfig,
	emailClient email.EmailClient,
	state email.StateManager,
	apiClient APIClient,
	logger *slog.Logger,
) *EmailProcessor {
	ctx, cancel := context.WithCancel(context.Background())

	return &EmailProcessor{
		ctx:         ctx,
		cancel:      cancel,
		config:      cfg,
		emailClient: emailClient,
		state:       state,
		apiClient:   apiClient,
		logger:      logger,
		metrics:     &ProcessingMetrics{},
	}
}

// Start begins the background email processing
func (p *EmailProcessor) Start() {
	p.logger.Info("Starting email ingest worker",
		"check_interval", p.config.Processing.CheckInterval,
		"dry_run", p.config.Processing.DryRun,
		"max_emails_per_run", p.config.Processing.MaxEmailsPerRun)

	if err := p.healthCheck(); err != nil {
		p.logger.Error("Health check failed", "error", err)
		return
	}

	go p.processingLoop()
}

// Stop gracefully stops the email processing
func (p *EmailProcessor) Stop() {
	p.logger.Info("Stopping email ingest worker")
	p.cancel()
}

// Pause temporarily pauses email processing
func (p *EmailProcessor) Pause() {
	p.paused.Store(true)
	p.logger.Info("Email ingest worker paused")
}

// Resume resumes email processing
func (p *EmailProcessor) Resume() {
	p.paused.Store(false)
	p.logger.Info("Email ingest worker resumed")
}

// IsPaused returns true if the worker is currently paused
func (p *EmailProcessor) IsPaused() bool {
	return p.paused.Load()
}

// IsRunning returns true if the worker has not been stopped
func (p *EmailProcessor) IsRunning() bool {
	select {
	case <-p.ctx.Done():
		return false
	default:
		return true
	}
}

// GetMetrics returns current processing metrics
func (p *EmailProcessor) GetMetrics() *ProcessingMetrics {
	return p.metrics
}

// ProcessOnce performs a single ingest run synchronously, outside the
// background schedule
func (p *EmailProcessor) ProcessOnce() {
	p.runProcessing()
}

// healthCheck verifies the mailbox and API connections are working
func (p *EmailProcessor) healthCheck() error {
	ctx, cancel := context.WithTimeout(p.ctx, 30*time.Second)
	defer cancel()

	if err := p.emailClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("email client health check failed: %w", err)
	}

	if err := p.apiClient.HealthCheck(); err != nil {
		return fmt.Errorf("API health check failed: %w", err)
	}

	return nil
}

// processingLoop is the main background loop
func (p *EmailProcessor) processingLoop() {
	ticker := time.NewTicker(p.config.Processing.CheckInterval)
	defer ticker.Stop()

	// Perform initial processing after a short delay
	initialDelay := time.NewTimer(10 * time.Second)
	defer initialDelay.Stop()

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Info("Email ingest loop stopped")
			return

		case <-initialDelay.C:
			p.runProcessing()

		case <-ticker.C:
			if !p.paused.Load() {
				p.runProcessing()
			}
		}
	}
}

// runProcessing performs a single ingest run
func (p *EmailProcessor) runProcessing() {
	startTime := time.Now()
	p.metrics.TotalRuns.Add(1)

	p.logger.Info("Starting email ingest run")

	ctx, cancel := context.WithTimeout(p.ctx, p.config.Processing.ProcessingTimeout)
	defer cancel()

	emails, err := p.searchEmails(ctx)
	if err != nil {
		p.logger.Error("Failed to search emails", "error", err)
		p.metrics.LastError.Store(err.Error())
		return
	}

	p.logger.Info("Found emails to process", "count", len(emails))
	p.metrics.TotalEmails.Add(int64(len(emails)))

	processed := 0
	discarded := 0
	errors := 0

	for i := range emails {
		select {
		case <-ctx.Done():
			p.logger.Warn("Ingest run cancelled before completion")
			return
		default:
		}

		switch p.processEmail(&emails[i]) {
		case "processed":
			processed++
		case "discarded":
			discarded++
		case "error":
			errors++
		}
	}

	p.metrics.ProcessedEmails.Add(int64(processed))
	p.metrics.DiscardedEmails.Add(int64(discarded))
	p.metrics.ErrorEmails.Add(int64(errors))
	p.metrics.LastRun.Store(time.Now())

	p.logger.Info("Email ingest run completed",
		"duration", time.Since(startTime),
		"processed", processed,
		"discarded", discarded,
		"errors", errors)

	// Prune ingest state older than 30 days
	if err := p.state.Cleanup(time.Now().AddDate(0, 0, -30)); err != nil {
		p.logger.Warn("Failed to clean up old state entries", "error", err)
	}
}

// searchEmails searches the mailbox and filters already processed messages
func (p *EmailProcessor) searchEmails(ctx context.Context) ([]email.EmailMessage, error) {
	emails, err := p.emailClient.Search(ctx, p.config.GetSearchQuery())
	if err != nil {
		return nil, fmt.Errorf("email search failed: %w", err)
	}

	var newEmails []email.EmailMessage
	for _, msg := range emails {
		processed, err := p.state.IsProcessed(msg.ID)
		if err != nil {
			p.logger.Warn("Failed to check processed state", "email_id", msg.ID, "error", err)
			continue
		}

		if !processed {
			newEmails = append(newEmails, msg)
		}

		if len(newEmails) >= p.config.Processing.MaxEmailsPerRun {
			break
		}
	}

	return newEmails, nil
}

// processEmail submits a single email to the parse endpoint and records the
// outcome. Returns the recorded status.
func (p *EmailProcessor) processEmail(msg *email.EmailMessage) string {
	logger := p.logger.With("email_id", msg.ID, "from", msg.From, "subject", msg.Subject)

	persist := !p.config.Processing.DryRun

	result, err := p.apiClient.SubmitEmail(msg.Subject, msg.PlainText, persist)
	if err != nil {
		logger.Error("Failed to submit email for parsing", "error", err)
		p.markProcessed(msg, "error", "", err.Error())
		return "error"
	}

	if result.LabelConfidence < p.config.Processing.MinConfidence {
		logger.Debug("Classification below confidence threshold",
			"label", result.Label,
			"confidence", result.LabelConfidence)
	}

	status := "discarded"
	if result.GateDecision == "persist" {
		status = "processed"
		found := int64(result.VesselsFound + result.CargosFound)
		p.metrics.PositionsFound.Add(found)

		if p.config.Processing.DryRun {
			logger.Info("Dry-run mode: would persist positions",
				"label", result.Label,
				"vessels", result.VesselsFound,
				"cargos", result.CargosFound)
		} else {
			logger.Info("Persisted positions from email",
				"label", result.Label,
				"vessels", result.VesselsFound,
				"cargos", result.CargosFound,
				"matches", result.TotalMatches)
		}
	} else {
		logger.Debug("Email discarded by quality gate",
			"label", result.Label,
			"decision", result.GateDecision)
	}

	p.markProcessed(msg, status, result.Label, "")
	return status
}

// markProcessed records the email's outcome in ingest state
func (p *EmailProcessor) markProcessed(msg *email.EmailMessage, status, label, errMsg string) {
	entry := &email.StateEntry{
		GmailMessageID: msg.ID,
		GmailThreadID:  msg.ThreadID,
		ProcessedAt:    time.Now(),
		Status:         status,
		Sender:         msg.From,
		Subject:        msg.Subject,
		Label:          label,
		ErrorMessage:   errMsg,
	}

	if err := p.state.MarkProcessed(entry); err != nil {
		p.logger.Error("Failed to mark email as processed",
			"email_id", msg.ID,
			"error", err)
	}
}
