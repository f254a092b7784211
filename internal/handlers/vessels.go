package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"fixture-matching/internal/cache"
	"fixture-matching/internal/database"

	"github.com/go-chi/chi/v5"
)

// VesselHandler handles HTTP requests for vessels
type VesselHandler struct {
	db    *database.DB
	cache *cache.Manager
}

// NewVesselHandler creates a new vessel handler
func NewVesselHandler(db *database.DB, cacheManager *cache.Manager) *VesselHandler {
	return &VesselHandler{db: db, cache: cacheManager}
}

// GetVessels handles GET /api/vessels. The optional status query filters to
// AVAILABLE records only.
func (h *VesselHandler) GetVessels(w http.ResponseWriter, r *http.Request) {
	var vessels []database.Vessel
	var err error

	if strings.EqualFold(r.URL.Query().Get("status"), database.StatusAvailable) {
		vessels, err = h.db.Vessels.GetAvailable()
	} else {
		vessels, err = h.db.Vessels.GetAll()
	}
	if err != nil {
		log.Printf("ERROR: Failed to get vessels: %v", err)
		http.Error(w, fmt.Sprintf("Failed to get vessels: %v", err), http.StatusInternalServerError)
		return
	}
	if vessels == nil {
		vessels = []database.Vessel{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(vessels)
}

// CreateVessel handles POST /api/vessels
func (h *VesselHandler) CreateVessel(w http.ResponseWriter, r *http.Request) {
	var vessel database.Vessel
	if err := json.NewDecoder(r.Body).Decode(&vessel); err != nil {
		log.Printf("ERROR: Invalid JSON in CreateVessel: %v", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := validateVessel(&vessel); err != nil {
		log.Printf("ERROR: Validation failed for vessel: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.db.Vessels.Create(&vessel); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			log.Printf("ERROR: Duplicate vessel: %s", vessel.Name)
			http.Error(w, "Vessel already exists", http.StatusConflict)
			return
		}
		log.Printf("ERROR: Failed to create vessel: %v", err)
		http.Error(w, fmt.Sprintf("Failed to create vessel: %v", err), http.StatusInternalServerError)
		return
	}

	// A new vessel changes the candidate pool, so cached match runs are stale
	h.invalidateMatchCache()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(vessel)
}

// GetVesselByID handles GET /api/vessels/{id}
func (h *VesselHandler) GetVesselByID(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid vessel ID", http.StatusBadRequest)
		return
	}

	vessel, err := h.db.Vessels.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Vessel not found", http.StatusNotFound)
			return
		}
		log.Printf("ERROR: Failed to get vessel %d: %v", id, err)
		http.Error(w, fmt.Sprintf("Failed to get vessel: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(vessel)
}

// UpdateVessel handles PUT /api/vessels/{id}
func (h *VesselHandler) UpdateVessel(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid vessel ID", http.StatusBadRequest)
		return
	}

	var vessel database.Vessel
	if err := json.NewDecoder(r.Body).Decode(&vessel); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := validateVessel(&vessel); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.db.Vessels.Update(id, &vessel); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Vessel not found", http.StatusNotFound)
			return
		}
		log.Printf("ERROR: Failed to update vessel %d: %v", id, err)
		http.Error(w, fmt.Sprintf("Failed to update vessel: %v", err), http.StatusInternalServerError)
		return
	}

	h.invalidateMatchCache()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(vessel)
}

// DeleteVessel handles DELETE /api/vessels/{id}
func (h *VesselHandler) DeleteVessel(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid vessel ID", http.StatusBadRequest)
		return
	}

	if err := h.db.Vessels.Delete(id); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Vessel not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to delete vessel: %v", err), http.StatusInternalServerError)
		return
	}

	h.invalidateMatchCache()

	w.WriteHeader(http.StatusNoContent)
}

func (h *VesselHandler) invalidateMatchCache() {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateAll(); err != nil {
		log.Printf("WARN: Failed to invalidate match cache: %v", err)
	}
}

// validateVessel validates vessel data
func validateVessel(vessel *database.Vessel) error {
	if vessel.Name == "" {
		return fmt.Errorf("vessel name is required")
	}
	if vessel.DWT <= 0 {
		return fmt.Errorf("dwt must be positive")
	}
	if vessel.SpeedKnots < 0 {
		return fmt.Errorf("speed_knots cannot be negative")
	}
	if vessel.OpenFrom != nil && vessel.OpenUntil != nil && vessel.OpenUntil.Before(*vessel.OpenFrom) {
		return fmt.Errorf("open_until cannot precede open_from")
	}
	if vessel.Status != "" && vessel.Status != database.StatusAvailable && vessel.Status != database.StatusFixed {
		return fmt.Errorf("invalid status: must be %s or %s", database.StatusAvailable, database.StatusFixed)
	}
	return nil
}
