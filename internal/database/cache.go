package database

import (
	"database/sql"
	"fmt"
	"time"
)

// MatchRunCacheEntry represents a cached match-run response keyed by the
// criteria + pool fingerprint it was computed from.
type MatchRunCacheEntry struct {
	CacheKey     string    `json:"cache_key"`
	ResponseData string    `json:"response_data"`
	CachedAt     time.Time `json:"cached_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// MatchRunCacheStore handles database operations for the match-run cache
type MatchRunCacheStore struct {
	db *sql.DB
}

func NewMatchRunCacheStore(db *sql.DB) *MatchRunCacheStore {
	return &MatchRunCacheStore{db: db}
}

// Get retrieves a cached match-run response by key. Returns ("", nil) on miss.
func (s *MatchRunCacheStore) Get(key string) (string, error) {
	var responseData string
	var expiresAt time.Time

	err := s.db.QueryRow(
		`SELECT response_data, expires_at FROM match_run_cache WHERE cache_key = ?`,
		key).Scan(&responseData, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil // Cache miss
		}
		return "", fmt.Errorf("failed to get cached response: %w", err)
	}

	if time.Now().After(expiresAt) {
		s.Delete(key)
		return "", nil
	}

	return responseData, nil
}

// Set stores a match-run response with the specified TTL
func (s *MatchRunCacheStore) Set(key, responseData string, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl)

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO match_run_cache (cache_key, response_data, cached_at, expires_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP, ?)`,
		key, responseData, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to cache response: %w", err)
	}

	return nil
}

// Delete removes a cached entry
func (s *MatchRunCacheStore) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM match_run_cache WHERE cache_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete cached entry: %w", err)
	}
	return nil
}

// DeleteAll clears the cache. Called whenever a vessel or cargo is mutated so
// match scores are never served stale.
func (s *MatchRunCacheStore) DeleteAll() error {
	_, err := s.db.Exec(`DELETE FROM match_run_cache`)
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// GetStats returns total and expired entry counts
func (s *MatchRunCacheStore) GetStats() (total, expired int, err error) {
	err = s.db.QueryRow(`SELECT COUNT(*) FROM match_run_cache`).Scan(&total)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM match_run_cache WHERE expires_at <= ?`,
		time.Now()).Scan(&expired)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count expired cache entries: %w", err)
	}
	return total, expired, nil
}

// DeleteExpired removes all expired cache entries
func (s *MatchRunCacheStore) DeleteExpired() error {
	_, err := s.db.Exec(`DELETE FROM match_run_cache WHERE expires_at <= ?`, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired entries: %w", err)
	}
	return nil
}
