package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"fixture-matching/internal/database"

	"github.com/go-chi/chi/v5"
)

// PortHandler handles HTTP requests for the port gazetteer
type PortHandler struct {
	db *database.DB
}

// NewPortHandler creates a new port handler
func NewPortHandler(db *database.DB) *PortHandler {
	return &PortHandler{db: db}
}

// GetPorts handles GET /api/ports
func (h *PortHandler) GetPorts(w http.ResponseWriter, r *http.Request) {
	ports, err := h.db.Ports.GetAll()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get ports: %v", err), http.StatusInternalServerError)
		return
	}
	if ports == nil {
		ports = []database.Port{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ports)
}

// CreatePort handles POST /api/ports
func (h *PortHandler) CreatePort(w http.ResponseWriter, r *http.Request) {
	var port database.Port
	if err := json.NewDecoder(r.Body).Decode(&port); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if port.Name == "" {
		http.Error(w, "Port name is required", http.StatusBadRequest)
		return
	}
	if port.Latitude < -90 || port.Latitude > 90 || port.Longitude < -180 || port.Longitude > 180 {
		http.Error(w, "Invalid coordinates", http.StatusBadRequest)
		return
	}

	if err := h.db.Ports.Create(&port); err != nil {
		log.Printf("ERROR: Failed to create port: %v", err)
		http.Error(w, fmt.Sprintf("Failed to create port: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(port)
}

// DeletePort handles DELETE /api/ports/{id}
func (h *PortHandler) DeletePort(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid port ID", http.StatusBadRequest)
		return
	}

	if err := h.db.Ports.Delete(id); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Port not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to delete port: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
