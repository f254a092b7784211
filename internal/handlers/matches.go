package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"fixture-matching/internal/cache"
	"fixture-matching/internal/database"
	"fixture-matching/internal/matching"
	"fixture-matching/internal/ratelimit"

	"github.com/go-chi/chi/v5"
)

// MatchHandler handles HTTP requests for matches and match runs
type MatchHandler struct {
	db       *database.DB
	config   ratelimit.Config
	cache    *cache.Manager
	criteria matching.Criteria

	mu            sync.Mutex
	lastManualRun *time.Time
}

// NewMatchHandler creates a new match handler. The criteria are the server's
// configured defaults; a run request may override them per call.
func NewMatchHandler(db *database.DB, config ratelimit.Config, cacheManager *cache.Manager, criteria matching.Criteria) *MatchHandler {
	return &MatchHandler{
		db:       db,
		config:   config,
		cache:    cacheManager,
		criteria: criteria,
	}
}

// GetMatches handles GET /api/matches. The optional status query filters by
// match status.
func (h *MatchHandler) GetMatches(w http.ResponseWriter, r *http.Request) {
	var matches []database.Match
	var err error

	if status := r.URL.Query().Get("status"); status != "" {
		matches, err = h.db.Matches.GetByStatus(strings.ToUpper(status))
	} else {
		matches, err = h.db.Matches.GetAll()
	}
	if err != nil {
		log.Printf("ERROR: Failed to get matches: %v", err)
		http.Error(w, fmt.Sprintf("Failed to get matches: %v", err), http.StatusInternalServerError)
		return
	}
	if matches == nil {
		matches = []database.Match{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(matches)
}

// GetMatchByID handles GET /api/matches/{id}
func (h *MatchHandler) GetMatchByID(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid match ID", http.StatusBadRequest)
		return
	}

	match, err := h.db.Matches.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Match not found", http.StatusNotFound)
			return
		}
		log.Printf("ERROR: Failed to get match %d: %v", id, err)
		http.Error(w, fmt.Sprintf("Failed to get match: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(match)
}

// RunMatchesRequest is the optional body for POST /api/matches/run
type RunMatchesRequest struct {
	Criteria *matching.Criteria `json:"criteria,omitempty"`
	Force    bool               `json:"force,omitempty"`
}

// RunMatchesResponse summarizes a completed match run
type RunMatchesResponse struct {
	VesselCount      int              `json:"vessel_count"`
	CargoCount       int              `json:"cargo_count"`
	TotalMatches     int              `json:"total_matches"`
	ProcessingTimeMS int64            `json:"processing_time_ms"`
	Matches          []database.Match `json:"matches"`
}

// RunMatches handles POST /api/matches/run. It rescores the full AVAILABLE
// vessel and cargo pools, replaces all PROPOSED matches, and returns the new
// proposals ordered by score.
func (h *MatchHandler) RunMatches(w http.ResponseWriter, r *http.Request) {
	var req RunMatchesRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
	}

	h.mu.Lock()
	lastRun := h.lastManualRun
	h.mu.Unlock()

	limit := ratelimit.CheckMatchRunRateLimit(h.config, lastRun, req.Force)
	if limit.ShouldBlock {
		http.Error(w, fmt.Sprintf("Rate limit exceeded. Please wait %v before running again",
			limit.RemainingTime.Truncate(time.Second)), http.StatusTooManyRequests)
		return
	}

	criteria := h.criteria
	if req.Criteria != nil {
		normalized, err := req.Criteria.Normalized()
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid criteria: %v", err), http.StatusBadRequest)
			return
		}
		criteria = normalized
	}

	// Cached runs are only valid for the exact criteria they were computed with
	cacheKey := matchRunCacheKey(criteria)
	if h.cache != nil && !req.Force {
		if payload, err := h.cache.Get(cacheKey); err == nil && payload != "" {
			var cached RunMatchesResponse
			if err := json.Unmarshal([]byte(payload), &cached); err == nil {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(cached)
				return
			}
		}
	}

	response, err := h.recompute(r, criteria)
	if err != nil {
		log.Printf("ERROR: Match run failed: %v", err)
		http.Error(w, fmt.Sprintf("Match run failed: %v", err), http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	now := time.Now()
	h.lastManualRun = &now
	h.mu.Unlock()

	if h.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := h.cache.Set(cacheKey, string(payload)); err != nil {
				log.Printf("WARN: Failed to cache match run: %v", err)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func (h *MatchHandler) recompute(r *http.Request, criteria matching.Criteria) (*RunMatchesResponse, error) {
	start := time.Now()

	vessels, err := h.db.Vessels.GetAvailable()
	if err != nil {
		return nil, fmt.Errorf("failed to load vessels: %w", err)
	}
	cargos, err := h.db.Cargos.GetAvailable()
	if err != nil {
		return nil, fmt.Errorf("failed to load cargos: %w", err)
	}
	ports, err := h.db.Ports.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load ports: %w", err)
	}

	engine, err := matching.NewEngine(ports, criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}

	results := engine.Match(r.Context(), vessels, cargos)

	if err := h.db.Matches.DeleteProposed(); err != nil {
		return nil, fmt.Errorf("failed to clear proposed matches: %w", err)
	}

	stored := make([]database.Match, 0, len(results))
	for _, result := range results {
		breakdown, err := json.Marshal(result.Breakdown)
		if err != nil {
			return nil, fmt.Errorf("failed to encode breakdown: %w", err)
		}

		match := &database.Match{
			VesselID:  result.Vessel.ID,
			CargoID:   result.Cargo.ID,
			Score:     result.Score,
			Breakdown: string(breakdown),
			Rationale: result.Rationale,
			Status:    database.MatchProposed,
		}
		if err := h.db.Matches.Upsert(match); err != nil {
			// An accepted pair keeps its terminal record
			if err == database.ErrMatchAccepted {
				continue
			}
			return nil, fmt.Errorf("failed to store match: %w", err)
		}
		stored = append(stored, *match)
	}

	return &RunMatchesResponse{
		VesselCount:      len(vessels),
		CargoCount:       len(cargos),
		TotalMatches:     len(stored),
		ProcessingTimeMS: time.Since(start).Milliseconds(),
		Matches:          stored,
	}, nil
}

// matchRunCacheKey derives a stable cache key from the run criteria
func matchRunCacheKey(criteria matching.Criteria) string {
	return fmt.Sprintf("match-run:%d:%.3f:%.3f:%.3f:%.1f",
		criteria.MaxLaycanGapDays, criteria.MaxDistanceDays,
		criteria.MaxOversizeRatio, criteria.RouteFactor, criteria.MinMatchScore)
}

// AcceptMatch handles POST /api/matches/{id}/accept. Accepting fixes both
// linked records and expires competing proposals.
func (h *MatchHandler) AcceptMatch(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid match ID", http.StatusBadRequest)
		return
	}

	match, err := h.db.Matches.Accept(id)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Match not found", http.StatusNotFound)
			return
		}
		if strings.Contains(err.Error(), "only proposed matches") {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		log.Printf("ERROR: Failed to accept match %d: %v", id, err)
		http.Error(w, fmt.Sprintf("Failed to accept match: %v", err), http.StatusInternalServerError)
		return
	}

	// The accepted pair left the AVAILABLE pools
	if h.cache != nil {
		if err := h.cache.InvalidateAll(); err != nil {
			log.Printf("WARN: Failed to invalidate match cache: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(match)
}

// RejectMatch handles POST /api/matches/{id}/reject
func (h *MatchHandler) RejectMatch(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid match ID", http.StatusBadRequest)
		return
	}

	match, err := h.db.Matches.Reject(id)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Match not found", http.StatusNotFound)
			return
		}
		if err == database.ErrMatchAccepted {
			http.Error(w, "Match is accepted and cannot be rejected", http.StatusConflict)
			return
		}
		log.Printf("ERROR: Failed to reject match %d: %v", id, err)
		http.Error(w, fmt.Sprintf("Failed to reject match: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(match)
}

// DeleteMatch handles DELETE /api/matches/{id}
func (h *MatchHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid match ID", http.StatusBadRequest)
		return
	}

	if err := h.db.Matches.Delete(id); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Match not found", http.StatusNotFound)
			return
		}
		if err == database.ErrMatchAccepted {
			http.Error(w, "Match is accepted and cannot be deleted", http.StatusConflict)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to delete match: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
