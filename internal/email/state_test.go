package email

import (
	"testing"
	"time"
)

func newTestStateManager(t *testing.T) *SQLiteStateManager {
	t.Helper()

	manager, err := NewSQLiteStateManager(":memory:")
	if err != nil {
		t.Fatalf("Failed to create state manager: %v", err)
	}
	t.Cleanup(func() { manager.Close() })

	return manager
}

func TestIsProcessed_Empty(t *testing.T) {
	manager := newTestStateManager(t)

	processed, err := manager.IsProcessed("unknown-id")
	if err != nil {
		t.Fatalf("IsProcessed() error = %v", err)
	}
	if processed {
		t.Error("Expected unknown message to not be processed")
	}
}

func TestMarkProcessed(t *testing.T) {
	manager := newTestStateManager(t)

	entry := &StateEntry{
		GmailMessageID: "msg-1",
		GmailThreadID:  "thread-1",
		Status:         "processed",
		Sender:         "broker@example.com",
		Subject:        "MV Atlantic Carrier open Rotterdam",
		Label:          "VESSEL",
	}

	if err := manager.MarkProcessed(entry); err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}

	processed, err := manager.IsProcessed("msg-1")
	if err != nil {
		t.Fatalf("IsProcessed() error = %v", err)
	}
	if !processed {
		t.Error("Expected message to be marked processed")
	}
}

func TestMarkProcessed_RequiresMessageID(t *testing.T) {
	manager := newTestStateManager(t)

	err := manager.MarkProcessed(&StateEntry{Status: "processed"})
	if err == nil {
		t.Error("Expected error for entry without message ID")
	}
}

func TestMarkProcessed_Upsert(t *testing.T) {
	manager := newTestStateManager(t)

	entry := &StateEntry{
		GmailMessageID: "msg-1",
		Status:         "error",
		ErrorMessage:   "extraction failed",
	}
	if err := manager.MarkProcessed(entry); err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}

	// Reprocessing the same message updates its outcome
	entry.Status = "processed"
	entry.Label = "CARGO"
	entry.ErrorMessage = ""
	if err := manager.MarkProcessed(entry); err != nil {
		t.Fatalf("MarkProcessed() second call error = %v", err)
	}

	entries, err := manager.GetRecentEntries(10)
	if err != nil {
		t.Fatalf("GetRecentEntries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry after upsert, got %d", len(entries))
	}
	if entries[0].Status != "processed" {
		t.Errorf("Status = %s, want processed", entries[0].Status)
	}
	if entries[0].Label != "CARGO" {
		t.Errorf("Label = %s, want CARGO", entries[0].Label)
	}
}

func TestGetStats(t *testing.T) {
	manager := newTestStateManager(t)

	entries := []*StateEntry{
		{GmailMessageID: "msg-1", Status: "processed", Label: "CARGO"},
		{GmailMessageID: "msg-2", Status: "processed", Label: "VESSEL"},
		{GmailMessageID: "msg-3", Status: "discarded", Label: "OTHER"},
		{GmailMessageID: "msg-4", Status: "error", ErrorMessage: "timeout"},
	}
	for _, entry := range entries {
		if err := manager.MarkProcessed(entry); err != nil {
			t.Fatalf("MarkProcessed(%s) error = %v", entry.GmailMessageID, err)
		}
	}

	stats, err := manager.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}

	if stats.TotalEmails != 4 {
		t.Errorf("TotalEmails = %d, want 4", stats.TotalEmails)
	}
	if stats.ProcessedEmails != 2 {
		t.Errorf("ProcessedEmails = %d, want 2", stats.ProcessedEmails)
	}
	if stats.DiscardedEmails != 1 {
		t.Errorf("DiscardedEmails = %d, want 1", stats.DiscardedEmails)
	}
	if stats.ErrorEmails != 1 {
		t.Errorf("ErrorEmails = %d, want 1", stats.ErrorEmails)
	}
	if stats.LastProcessed.IsZero() {
		t.Error("Expected LastProcessed to be set")
	}
}

func TestCleanup(t *testing.T) {
	manager := newTestStateManager(t)

	old := &StateEntry{
		GmailMessageID: "old-msg",
		Status:         "processed",
		ProcessedAt:    time.Now().Add(-48 * time.Hour),
	}
	recent := &StateEntry{
		GmailMessageID: "recent-msg",
		Status:         "processed",
	}

	for _, entry := range []*StateEntry{old, recent} {
		if err := manager.MarkProcessed(entry); err != nil {
			t.Fatalf("MarkProcessed() error = %v", err)
		}
	}

	if err := manager.Cleanup(time.Now().Add(-24 * time.Hour)); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}

	oldProcessed, err := manager.IsProcessed("old-msg")
	if err != nil {
		t.Fatalf("IsProcessed() error = %v", err)
	}
	if oldProcessed {
		t.Error("Expected old entry to be removed")
	}

	recentProcessed, err := manager.IsProcessed("recent-msg")
	if err != nil {
		t.Fatalf("IsProcessed() error = %v", err)
	}
	if !recentProcessed {
		t.Error("Expected recent entry to survive cleanup")
	}
}
