package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"fixture-matching/internal/cache"
	"fixture-matching/internal/services"
	"fixture-matching/internal/workers"
)

// AdminHandler handles administrative operations
type AdminHandler struct {
	matchUpdater *workers.MatchUpdater
	cache        *cache.Manager
	relabeler    *services.Relabeler
	logger       *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(matchUpdater *workers.MatchUpdater, cacheManager *cache.Manager, relabeler *services.Relabeler, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		matchUpdater: matchUpdater,
		cache:        cacheManager,
		relabeler:    relabeler,
		logger:       logger,
	}
}

// MatchUpdaterStatusResponse represents the status of the match updater
type MatchUpdaterStatusResponse struct {
	Running bool `json:"running"`
	Paused  bool `json:"paused"`
}

// GetMatchUpdaterStatus handles GET /api/admin/match-updater/status
func (h *AdminHandler) GetMatchUpdaterStatus(w http.ResponseWriter, r *http.Request) {
	status := MatchUpdaterStatusResponse{
		Running: h.matchUpdater.IsRunning(),
		Paused:  h.matchUpdater.IsPaused(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// PauseMatchUpdater handles POST /api/admin/match-updater/pause
func (h *AdminHandler) PauseMatchUpdater(w http.ResponseWriter, r *http.Request) {
	h.matchUpdater.Pause()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "paused",
		"message": "Match updater has been paused",
	})
}

// ResumeMatchUpdater handles POST /api/admin/match-updater/resume
func (h *AdminHandler) ResumeMatchUpdater(w http.ResponseWriter, r *http.Request) {
	h.matchUpdater.Resume()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "resumed",
		"message": "Match updater has been resumed",
	})
}

// RelabelEmailsRequest is the body for POST /api/admin/emails/relabel
type RelabelEmailsRequest struct {
	Limit  int  `json:"limit"`
	DryRun bool `json:"dry_run"`
}

// RelabelEmails handles POST /api/admin/emails/relabel. It reclassifies
// unreviewed stored emails with the current model, typically after a retrain.
func (h *AdminHandler) RelabelEmails(w http.ResponseWriter, r *http.Request) {
	var req RelabelEmailsRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
	}

	summary, err := h.relabeler.RelabelUnreviewed(req.Limit, req.DryRun)
	if err != nil {
		h.logger.Error("Relabel operation failed", "error", err)
		http.Error(w, "Relabel operation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(summary)
}

// GetCacheStats handles GET /api/admin/cache/stats
func (h *AdminHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.cache.GetStats()
	if err != nil {
		h.logger.Error("Failed to collect cache stats", "error", err)
		http.Error(w, "Failed to collect cache stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(stats)
}

// InvalidateCache handles POST /api/admin/cache/invalidate
func (h *AdminHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.InvalidateAll(); err != nil {
		h.logger.Error("Failed to invalidate cache", "error", err)
		http.Error(w, "Failed to invalidate cache", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Match run cache invalidated via admin API")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "invalidated",
		"message": "Match run cache has been cleared",
	})
}
