package workers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"fixture-matching/internal/api"
	"fixture-matching/internal/config"
	"fixture-matching/internal/email"
)

type mockEmailClient struct {
	emails    []email.EmailMessage
	searchErr error
}

func (m *mockEmailClient) Search(ctx context.Context, query string) ([]email.EmailMessage, error) {
	return m.emails, m.searchErr
}

func (m *mockEmailClient) GetMessage(ctx context.Context, id string) (*email.EmailMessage, error) {
	for i := range m.emails {
		if m.emails[i].ID == id {
			return &m.emails[i], nil
		}
	}
	return nil, fmt.Errorf("message %s not found", id)
}

func (m *mockEmailClient) HealthCheck(ctx context.Context) error { return nil }
func (m *mockEmailClient) Close() error                          { return nil }

type mockStateManager struct {
	mu      sync.Mutex
	entries map[string]*email.StateEntry
}

func newMockStateManager() *mockStateManager {
	return &mockStateManager{entries: make(map[string]*email.StateEntry)}
}

func (m *mockStateManager) IsProcessed(messageID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[messageID]
	return ok, nil
}

func (m *mockStateManager) MarkProcessed(entry *email.StateEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.GmailMessageID] = entry
	return nil
}

func (m *mockStateManager) GetStats() (*email.StateStats, error) {
	return &email.StateStats{TotalEmails: len(m.entries)}, nil
}

func (m *mockStateManager) Cleanup(olderThan time.Time) error { return nil }
func (m *mockStateManager) Close() error                      { return nil }

type mockAPIClient struct {
	mu        sync.Mutex
	submitted []api.ParseRequest
	result    *api.ParseResult
	submitErr error
}

func (m *mockAPIClient) SubmitEmail(subject, body string, persist bool) (*api.ParseResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted = append(m.submitted, api.ParseRequest{Subject: subject, Body: body, Persist: persist})
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return m.result, nil
}

func (m *mockAPIClient) HealthCheck() error { return nil }

func testEmailConfig() *config.EmailConfig {
	return &config.EmailConfig{
		Processing: config.ProcessingConfig{
			CheckInterval:     5 * time.Minute,
			MaxEmailsPerRun:   10,
			ProcessingTimeout: time.Minute,
			MinConfidence:     0.5,
		},
	}
}

func newTestProcessor(cfg *config.EmailConfig, client *mockEmailClient, state *mockStateManager, apiClient *mockAPIClient) *EmailProcessor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEmailProcessor(cfg, client, state, apiClient, logger)
}

func TestProcessEmail_Persisted(t *testing.T) {
	state := newMockStateManager()
	apiClient := &mockAPIClient{
		result: &api.ParseResult{
			Label:           "VESSEL",
			LabelConfidence: 0.9,
			GateDecision:    "persist",
			VesselsFound:    1,
			TotalMatches:    2,
		},
	}
	processor := newTestProcessor(testEmailConfig(), &mockEmailClient{}, state, apiClient)

	msg := &email.EmailMessage{
		ID:        "msg-1",
		ThreadID:  "thread-1",
		From:      "broker@example.com",
		Subject:   "MV Baltic Wind open Hamburg",
		PlainText: "dwt 35000 speed 12.5 open 10-15 sep",
	}

	status := processor.processEmail(msg)
	if status != "processed" {
		t.Errorf("processEmail() status = %s, want processed", status)
	}

	if len(apiClient.submitted) != 1 {
		t.Fatalf("Expected 1 submission, got %d", len(apiClient.submitted))
	}
	if !apiClient.submitted[0].Persist {
		t.Error("Expected persist flag to be set outside dry-run mode")
	}

	entry := state.entries["msg-1"]
	if entry == nil {
		t.Fatal("Expected state entry to be recorded")
	}
	if entry.Status != "processed" {
		t.Errorf("Entry status = %s, want processed", entry.Status)
	}
	if entry.Label != "VESSEL" {
		t.Errorf("Entry label = %s, want VESSEL", entry.Label)
	}

	if got := processor.GetMetrics().PositionsFound.Load(); got != 1 {
		t.Errorf("PositionsFound = %d, want 1", got)
	}
}

func TestProcessEmail_Discarded(t *testing.T) {
	state := newMockStateManager()
	apiClient := &mockAPIClient{
		result: &api.ParseResult{
			Label:           "OTHER",
			LabelConfidence: 0.8,
			GateDecision:    "discard",
		},
	}
	processor := newTestProcessor(testEmailConfig(), &mockEmailClient{}, state, apiClient)

	status := processor.processEmail(&email.EmailMessage{ID: "msg-1", Subject: "Weekly market report"})
	if status != "discarded" {
		t.Errorf("processEmail() status = %s, want discarded", status)
	}

	if entry := state.entries["msg-1"]; entry == nil || entry.Status != "discarded" {
		t.Error("Expected discarded state entry")
	}
}

func TestProcessEmail_SubmitError(t *testing.T) {
	state := newMockStateManager()
	apiClient := &mockAPIClient{submitErr: fmt.Errorf("connection refused")}
	processor := newTestProcessor(testEmailConfig(), &mockEmailClient{}, state, apiClient)

	status := processor.processEmail(&email.EmailMessage{ID: "msg-1", Subject: "subject"})
	if status != "error" {
		t.Errorf("processEmail() status = %s, want error", status)
	}

	entry := state.entries["msg-1"]
	if entry == nil || entry.Status != "error" {
		t.Fatal("Expected error state entry")
	}
	if entry.ErrorMessage == "" {
		t.Error("Expected error message to be recorded")
	}
}

func TestProcessEmail_DryRun(t *testing.T) {
	cfg := testEmailConfig()
	cfg.Processing.DryRun = true

	apiClient := &mockAPIClient{
		result: &api.ParseResult{Label: "CARGO", LabelConfidence: 0.9, GateDecision: "persist", CargosFound: 1},
	}
	processor := newTestProcessor(cfg, &mockEmailClient{}, newMockStateManager(), apiClient)

	processor.processEmail(&email.EmailMessage{ID: "msg-1", Subject: "50k coal Newcastle/Rotterdam"})

	if apiClient.submitted[0].Persist {
		t.Error("Expected persist flag to be false in dry-run mode")
	}
}

func TestSearchEmails_FiltersProcessed(t *testing.T) {
	state := newMockStateManager()
	state.MarkProcessed(&email.StateEntry{GmailMessageID: "seen-1", Status: "processed"})

	client := &mockEmailClient{
		emails: []email.EmailMessage{
			{ID: "seen-1", Subject: "already handled"},
			{ID: "new-1", Subject: "MV Aegean Spirit open Piraeus"},
			{ID: "new-2", Subject: "30k grain River Plate"},
		},
	}
	processor := newTestProcessor(testEmailConfig(), client, state, &mockAPIClient{})

	emails, err := processor.searchEmails(context.Background())
	if err != nil {
		t.Fatalf("searchEmails() error = %v", err)
	}

	if len(emails) != 2 {
		t.Fatalf("Expected 2 new emails, got %d", len(emails))
	}
	for _, msg := range emails {
		if msg.ID == "seen-1" {
			t.Error("Expected already processed email to be filtered out")
		}
	}
}

func TestSearchEmails_RespectsMaxPerRun(t *testing.T) {
	cfg := testEmailConfig()
	cfg.Processing.MaxEmailsPerRun = 2

	client := &mockEmailClient{
		emails: []email.EmailMessage{
			{ID: "msg-1"}, {ID: "msg-2"}, {ID: "msg-3"}, {ID: "msg-4"},
		},
	}
	processor := newTestProcessor(cfg, client, newMockStateManager(), &mockAPIClient{})

	emails, err := processor.searchEmails(context.Background())
	if err != nil {
		t.Fatalf("searchEmails() error = %v", err)
	}
	if len(emails) != 2 {
		t.Errorf("Expected 2 emails with max per run of 2, got %d", len(emails))
	}
}

func TestEmailProcessor_PauseResume(t *testing.T) {
	processor := newTestProcessor(testEmailConfig(), &mockEmailClient{}, newMockStateManager(), &mockAPIClient{})

	if processor.IsPaused() {
		t.Error("Expected processor to start unpaused")
	}

	processor.Pause()
	if !processor.IsPaused() {
		t.Error("Expected processor to be paused")
	}

	processor.Resume()
	if processor.IsPaused() {
		t.Error("Expected processor to be resumed")
	}
}

func TestEmailProcessor_Stop(t *testing.T) {
	processor := newTestProcessor(testEmailConfig(), &mockEmailClient{}, newMockStateManager(), &mockAPIClient{})

	if !processor.IsRunning() {
		t.Error("Expected processor to be running before Stop")
	}

	processor.Stop()
	if processor.IsRunning() {
		t.Error("Expected processor to be stopped after Stop")
	}
}
