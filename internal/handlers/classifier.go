package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"fixture-matching/internal/classifier"
	"fixture-matching/internal/database"
)

// ClassifierHandler handles classifier lifecycle requests
type ClassifierHandler struct {
	db    *database.DB
	model *classifier.Ref
}

// NewClassifierHandler creates a new classifier handler
func NewClassifierHandler(db *database.DB, model *classifier.Ref) *ClassifierHandler {
	return &ClassifierHandler{db: db, model: model}
}

// RetrainResponse summarizes a completed retraining
type RetrainResponse struct {
	TrainedOn      int `json:"trained_on"`
	VocabularySize int `json:"vocabulary_size"`
}

// Retrain handles POST /api/classifier/retrain. The new model is trained on
// the seed corpus plus every labeled stored email, then swapped in atomically.
// In-flight classifications keep the model they started with.
func (h *ClassifierHandler) Retrain(w http.ResponseWriter, r *http.Request) {
	corpus, err := TrainingCorpus(h.db)
	if err != nil {
		log.Printf("ERROR: Failed to load training corpus: %v", err)
		http.Error(w, fmt.Sprintf("Failed to load training corpus: %v", err), http.StatusInternalServerError)
		return
	}

	model, err := classifier.Train(corpus)
	if err != nil {
		log.Printf("ERROR: Retraining failed: %v", err)
		http.Error(w, fmt.Sprintf("Retraining failed: %v", err), http.StatusInternalServerError)
		return
	}

	h.model.Swap(model)
	log.Printf("INFO: Classifier retrained on %d examples (%d terms)",
		model.TrainedOn(), model.VocabularySize())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(RetrainResponse{
		TrainedOn:      model.TrainedOn(),
		VocabularySize: model.VocabularySize(),
	})
}

// Status handles GET /api/classifier/status
func (h *ClassifierHandler) Status(w http.ResponseWriter, r *http.Request) {
	model := h.model.Get()
	if model == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"trained": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"trained":         true,
		"trained_on":      model.TrainedOn(),
		"vocabulary_size": model.VocabularySize(),
	})
}

// TrainingCorpus builds the full training set: the built-in seed corpus plus
// all labeled stored emails. Reviewed corrections therefore sharpen the model
// over time.
func TrainingCorpus(db *database.DB) ([]classifier.Example, error) {
	corpus := classifier.DefaultCorpus()

	labeled, err := db.Emails.GetLabeled()
	if err != nil {
		return nil, err
	}
	for _, email := range labeled {
		corpus = append(corpus, classifier.Example{
			Text:  email.Subject + "\n" + email.BodyText,
			Label: email.Label,
		})
	}

	return corpus, nil
}
