package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"fixture-matching/internal/classifier"
	"fixture-matching/internal/database"

	"github.com/go-chi/chi/v5"
)

// EmailHandler handles HTTP requests for stored inbound emails
type EmailHandler struct {
	db *database.DB
}

// NewEmailHandler creates a new email handler
func NewEmailHandler(db *database.DB) *EmailHandler {
	return &EmailHandler{db: db}
}

// GetEmails handles GET /api/emails. The unreviewed query limits the list to
// messages awaiting label review.
func (h *EmailHandler) GetEmails(w http.ResponseWriter, r *http.Request) {
	var emails []database.InboundEmail
	var err error

	if r.URL.Query().Get("unreviewed") == "true" {
		emails, err = h.db.Emails.GetUnreviewed()
	} else {
		emails, err = h.db.Emails.GetAll()
	}
	if err != nil {
		log.Printf("ERROR: Failed to get emails: %v", err)
		http.Error(w, fmt.Sprintf("Failed to get emails: %v", err), http.StatusInternalServerError)
		return
	}
	if emails == nil {
		emails = []database.InboundEmail{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(emails)
}

// GetEmailByID handles GET /api/emails/{id}
func (h *EmailHandler) GetEmailByID(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid email ID", http.StatusBadRequest)
		return
	}

	email, err := h.db.Emails.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Email not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to get email: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(email)
}

// LabelEmailRequest is the body for POST /api/emails/{id}/label
type LabelEmailRequest struct {
	Label string `json:"label"`
}

// LabelEmail handles POST /api/emails/{id}/label. A reviewed label corrects
// the automatic classification and feeds the next retraining.
func (h *EmailHandler) LabelEmail(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid email ID", http.StatusBadRequest)
		return
	}

	var req LabelEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	switch req.Label {
	case classifier.LabelCargo, classifier.LabelVessel, classifier.LabelOther:
	default:
		http.Error(w, fmt.Sprintf("Invalid label: must be one of %v", classifier.Labels), http.StatusBadRequest)
		return
	}

	if err := h.db.Emails.SetLabel(id, req.Label, true); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Email not found", http.StatusNotFound)
			return
		}
		log.Printf("ERROR: Failed to label email %d: %v", id, err)
		http.Error(w, fmt.Sprintf("Failed to label email: %v", err), http.StatusInternalServerError)
		return
	}

	email, err := h.db.Emails.GetByID(id)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get email: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(email)
}
