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

// CargoHandler handles HTTP requests for cargos
type CargoHandler struct {
	db    *database.DB
	cache *cache.Manager
}

// NewCargoHandler creates a new cargo handler
func NewCargoHandler(db *database.DB, cacheManager *cache.Manager) *CargoHandler {
	return &CargoHandler{db: db, cache: cacheManager}
}

// GetCargos handles GET /api/cargos. The optional status query filters to
// AVAILABLE records only.
func (h *CargoHandler) GetCargos(w http.ResponseWriter, r *http.Request) {
	var cargos []database.Cargo
	var err error

	if strings.EqualFold(r.URL.Query().Get("status"), database.StatusAvailable) {
		cargos, err = h.db.Cargos.GetAvailable()
	} else {
		cargos, err = h.db.Cargos.GetAll()
	}
	if err != nil {
		log.Printf("ERROR: Failed to get cargos: %v", err)
		http.Error(w, fmt.Sprintf("Failed to get cargos: %v", err), http.StatusInternalServerError)
		return
	}
	if cargos == nil {
		cargos = []database.Cargo{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(cargos)
}

// CreateCargo handles POST /api/cargos
func (h *CargoHandler) CreateCargo(w http.ResponseWriter, r *http.Request) {
	var cargo database.Cargo
	if err := json.NewDecoder(r.Body).Decode(&cargo); err != nil {
		log.Printf("ERROR: Invalid JSON in CreateCargo: %v", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := validateCargo(&cargo); err != nil {
		log.Printf("ERROR: Validation failed for cargo: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.db.Cargos.Create(&cargo); err != nil {
		log.Printf("ERROR: Failed to create cargo: %v", err)
		http.Error(w, fmt.Sprintf("Failed to create cargo: %v", err), http.StatusInternalServerError)
		return
	}

	// A new cargo changes the candidate pool, so cached match runs are stale
	h.invalidateMatchCache()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(cargo)
}

// GetCargoByID handles GET /api/cargos/{id}
func (h *CargoHandler) GetCargoByID(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid cargo ID", http.StatusBadRequest)
		return
	}

	cargo, err := h.db.Cargos.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Cargo not found", http.StatusNotFound)
			return
		}
		log.Printf("ERROR: Failed to get cargo %d: %v", id, err)
		http.Error(w, fmt.Sprintf("Failed to get cargo: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(cargo)
}

// UpdateCargo handles PUT /api/cargos/{id}
func (h *CargoHandler) UpdateCargo(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid cargo ID", http.StatusBadRequest)
		return
	}

	var cargo database.Cargo
	if err := json.NewDecoder(r.Body).Decode(&cargo); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := validateCargo(&cargo); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.db.Cargos.Update(id, &cargo); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Cargo not found", http.StatusNotFound)
			return
		}
		log.Printf("ERROR: Failed to update cargo %d: %v", id, err)
		http.Error(w, fmt.Sprintf("Failed to update cargo: %v", err), http.StatusInternalServerError)
		return
	}

	h.invalidateMatchCache()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(cargo)
}

// DeleteCargo handles DELETE /api/cargos/{id}
func (h *CargoHandler) DeleteCargo(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid cargo ID", http.StatusBadRequest)
		return
	}

	if err := h.db.Cargos.Delete(id); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Cargo not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to delete cargo: %v", err), http.StatusInternalServerError)
		return
	}

	h.invalidateMatchCache()

	w.WriteHeader(http.StatusNoContent)
}

func (h *CargoHandler) invalidateMatchCache() {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateAll(); err != nil {
		log.Printf("WARN: Failed to invalidate match cache: %v", err)
	}
}

// validateCargo validates cargo data
func validateCargo(cargo *database.Cargo) error {
	if cargo.Commodity == "" {
		return fmt.Errorf("commodity is required")
	}
	if cargo.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if cargo.LoadPort == "" {
		return fmt.Errorf("load port is required")
	}
	if cargo.LaycanFrom != nil && cargo.LaycanUntil != nil && cargo.LaycanUntil.Before(*cargo.LaycanFrom) {
		return fmt.Errorf("laycan_until cannot precede laycan_from")
	}
	if cargo.StowageFactor != nil && *cargo.StowageFactor <= 0 {
		return fmt.Errorf("stowage_factor must be positive")
	}
	if cargo.BrokenStowagePct < 0 || cargo.BrokenStowagePct >= 100 {
		return fmt.Errorf("broken_stowage_pct must be in [0, 100)")
	}
	if cargo.Status != "" && cargo.Status != database.StatusAvailable && cargo.Status != database.StatusFixed {
		return fmt.Errorf("invalid status: must be %s or %s", database.StatusAvailable, database.StatusFixed)
	}
	return nil
}
