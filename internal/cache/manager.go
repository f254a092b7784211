package cache

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"fixture-matching/internal/database"
)

// cachedEntry represents an in-memory cached match-run payload with expiry
type cachedEntry struct {
	Payload   string
	ExpiresAt time.Time
}

// isExpired checks if the cached entry has expired
func (c *cachedEntry) isExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// Manager layers an in-memory cache over the persistent match-run cache.
// Entries are keyed by a fingerprint of the criteria and record pools, and the
// whole cache is invalidated whenever a vessel or cargo changes so scores are
// never served stale.
type Manager struct {
	store    *database.MatchRunCacheStore
	memory   sync.Map // map[string]*cachedEntry
	disabled bool
	ttl      time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a new cache manager
func NewManager(store *database.MatchRunCacheStore, disabled bool, ttl time.Duration) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	manager := &Manager{
		store:    store,
		disabled: disabled,
		ttl:      ttl,
		ctx:      ctx,
		cancel:   cancel,
	}

	if !disabled {
		go manager.cleanupLoop()
	}

	return manager
}

// Get retrieves a cached match-run payload. Returns ("", nil) on miss.
func (m *Manager) Get(key string) (string, error) {
	if m.disabled {
		return "", nil
	}

	if value, ok := m.memory.Load(key); ok {
		cached := value.(*cachedEntry)
		if !cached.isExpired() {
			return cached.Payload, nil
		}
		m.memory.Delete(key)
	}

	payload, err := m.store.Get(key)
	if err != nil {
		return "", fmt.Errorf("failed to get from database cache: %w", err)
	}

	if payload != "" {
		m.memory.Store(key, &cachedEntry{
			Payload:   payload,
			ExpiresAt: time.Now().Add(m.ttl),
		})
	}

	return payload, nil
}

// Set stores a match-run payload in both memory and database
func (m *Manager) Set(key, payload string) error {
	if m.disabled {
		return nil
	}

	if err := m.store.Set(key, payload, m.ttl); err != nil {
		return fmt.Errorf("failed to store in database cache: %w", err)
	}

	m.memory.Store(key, &cachedEntry{
		Payload:   payload,
		ExpiresAt: time.Now().Add(m.ttl),
	})

	return nil
}

// Delete removes one cached entry from both memory and database
func (m *Manager) Delete(key string) error {
	if m.disabled {
		return nil
	}

	m.memory.Delete(key)

	if err := m.store.Delete(key); err != nil {
		return fmt.Errorf("failed to delete from database cache: %w", err)
	}

	return nil
}

// InvalidateAll drops every cached run. Called on any vessel or cargo
// mutation.
func (m *Manager) InvalidateAll() error {
	if m.disabled {
		return nil
	}

	m.memory.Range(func(key, value interface{}) bool {
		m.memory.Delete(key)
		return true
	})

	if err := m.store.DeleteAll(); err != nil {
		return fmt.Errorf("failed to clear database cache: %w", err)
	}

	return nil
}

// IsEnabled returns true if caching is enabled
func (m *Manager) IsEnabled() bool {
	return !m.disabled
}

// GetTTL returns the cache TTL duration
func (m *Manager) GetTTL() time.Duration {
	return m.ttl
}

// cleanupLoop runs periodically to clean up expired entries
func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

// cleanup removes expired entries from both memory and database
func (m *Manager) cleanup() {
	memoryCount := 0
	m.memory.Range(func(key, value interface{}) bool {
		cached := value.(*cachedEntry)
		if cached.isExpired() {
			m.memory.Delete(key)
			memoryCount++
		}
		return true
	})

	if err := m.store.DeleteExpired(); err != nil {
		log.Printf("WARN: Failed to clean up expired database cache entries: %v", err)
	}

	if memoryCount > 0 {
		log.Printf("DEBUG: Cleaned up %d expired memory cache entries", memoryCount)
	}
}

// GetStats returns cache statistics
func (m *Manager) GetStats() (CacheStats, error) {
	stats := CacheStats{
		Disabled: m.disabled,
		TTL:      m.ttl,
	}

	if m.disabled {
		return stats, nil
	}

	memoryTotal := 0
	memoryExpired := 0
	m.memory.Range(func(key, value interface{}) bool {
		memoryTotal++
		if value.(*cachedEntry).isExpired() {
			memoryExpired++
		}
		return true
	})

	stats.MemoryTotal = memoryTotal
	stats.MemoryExpired = memoryExpired

	dbTotal, dbExpired, err := m.store.GetStats()
	if err != nil {
		return stats, fmt.Errorf("failed to get database stats: %w", err)
	}

	stats.DatabaseTotal = dbTotal
	stats.DatabaseExpired = dbExpired

	return stats, nil
}

// Close shuts down the cache manager and cleanup goroutine
func (m *Manager) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

// CacheStats represents cache statistics
type CacheStats struct {
	Disabled        bool          `json:"disabled"`
	TTL             time.Duration `json:"ttl"`
	MemoryTotal     int           `json:"memory_total"`
	MemoryExpired   int           `json:"memory_expired"`
	DatabaseTotal   int           `json:"database_total"`
	DatabaseExpired int           `json:"database_expired"`
}
