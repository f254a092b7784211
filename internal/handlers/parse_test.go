package handlers

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"fixture-matching/internal/classifier"
	"fixture-matching/internal/database"
	"fixture-matching/internal/matching"
	"fixture-matching/internal/parser"
)

func newParseRouter(t *testing.T, db *database.DB, model *classifier.Ref) chi.Router {
	t.Helper()
	handler := NewParseHandler(db, model, parser.NewNoOpFallbackExtractor(), matching.DefaultCriteria())

	r := chi.NewRouter()
	r.Post("/api/parse", handler.Parse)
	return r
}

func trainedRef(t *testing.T) *classifier.Ref {
	t.Helper()
	model, err := classifier.Train(classifier.DefaultCorpus())
	if err != nil {
		t.Fatalf("Failed to train classifier: %v", err)
	}
	return classifier.NewRef(model)
}

const vesselEmailSubject = "MV Baltic Wind open Rotterdam"
const vesselEmailBody = "MV Baltic Wind, 45,000 dwt, geared, speed 14 knots, open Rotterdam 10/10-20/10. Grain fitted vessel for charterers."

func TestParseRequiresContent(t *testing.T) {
	db := newTestDB(t)
	router := newParseRouter(t, db, trainedRef(t))

	rec := doJSON(t, router, http.MethodPost, "/api/parse", map[string]interface{}{
		"subject": "",
		"body":    "",
	})
	mustStatus(t, rec, http.StatusBadRequest)
}

func TestParseUntrainedClassifier(t *testing.T) {
	db := newTestDB(t)
	router := newParseRouter(t, db, classifier.NewRef(nil))

	rec := doJSON(t, router, http.MethodPost, "/api/parse", map[string]interface{}{
		"subject": vesselEmailSubject,
		"body":    vesselEmailBody,
	})
	mustStatus(t, rec, http.StatusServiceUnavailable)
}

func TestParseIrrelevantContentDiscarded(t *testing.T) {
	db := newTestDB(t)
	router := newParseRouter(t, db, trainedRef(t))

	rec := doJSON(t, router, http.MethodPost, "/api/parse", map[string]interface{}{
		"subject": "Weekly newsletter",
		"body":    "Limited time discount! Click here to unsubscribe from our newsletter.",
		"persist": true,
	})
	mustStatus(t, rec, http.StatusOK)

	var result ParseResponse
	decodeBody(t, rec, &result)
	if result.GateDecision != parser.DecisionDiscard {
		t.Errorf("GateDecision = %s, want %s", result.GateDecision, parser.DecisionDiscard)
	}

	// Nothing may be stored from discarded content
	vessels, err := db.Vessels.GetAll()
	if err != nil {
		t.Fatalf("Failed to list vessels: %v", err)
	}
	cargos, err := db.Cargos.GetAll()
	if err != nil {
		t.Fatalf("Failed to list cargos: %v", err)
	}
	if len(vessels) != 0 || len(cargos) != 0 {
		t.Errorf("stored %d vessels, %d cargos from discarded content", len(vessels), len(cargos))
	}
}

func TestParseVesselWithoutPersist(t *testing.T) {
	db := newTestDB(t)
	router := newParseRouter(t, db, trainedRef(t))

	rec := doJSON(t, router, http.MethodPost, "/api/parse", map[string]interface{}{
		"subject": vesselEmailSubject,
		"body":    vesselEmailBody,
		"persist": false,
	})
	mustStatus(t, rec, http.StatusOK)

	var result ParseResponse
	decodeBody(t, rec, &result)
	if result.Label != classifier.LabelVessel {
		t.Errorf("Label = %s, want %s", result.Label, classifier.LabelVessel)
	}
	if result.GateDecision != parser.DecisionPersist {
		t.Errorf("GateDecision = %s, want %s", result.GateDecision, parser.DecisionPersist)
	}
	if result.VesselsFound != 1 {
		t.Errorf("VesselsFound = %d, want 1", result.VesselsFound)
	}
	if result.Candidate == nil || result.Candidate.VesselName == nil || *result.Candidate.VesselName != "Baltic Wind" {
		t.Errorf("expected extracted vessel name Baltic Wind, got %+v", result.Candidate)
	}

	// Dry-run parses must not write
	vessels, err := db.Vessels.GetAll()
	if err != nil {
		t.Fatalf("Failed to list vessels: %v", err)
	}
	if len(vessels) != 0 {
		t.Errorf("stored %d vessels on a dry-run parse", len(vessels))
	}
}

func TestParseVesselPersistAndMatch(t *testing.T) {
	db := newTestDB(t)
	_, cargo := seedMatchablePair(t, db)

	// Remove the seeded vessel so only the parsed one remains
	vessels, err := db.Vessels.GetAll()
	if err != nil {
		t.Fatalf("Failed to list vessels: %v", err)
	}
	for _, vessel := range vessels {
		if err := db.Vessels.Delete(vessel.ID); err != nil {
			t.Fatalf("Failed to delete vessel: %v", err)
		}
	}

	router := newParseRouter(t, db, trainedRef(t))

	rec := doJSON(t, router, http.MethodPost, "/api/parse", map[string]interface{}{
		"subject": vesselEmailSubject,
		"body":    vesselEmailBody,
		"persist": true,
	})
	mustStatus(t, rec, http.StatusOK)

	var result ParseResponse
	decodeBody(t, rec, &result)
	if result.CargosFound != 1 {
		t.Errorf("CargosFound = %d, want 1", result.CargosFound)
	}
	if result.TotalMatches != 1 {
		t.Fatalf("TotalMatches = %d, want 1", result.TotalMatches)
	}
	if result.Matches[0].Cargo.ID != cargo.ID {
		t.Errorf("matched cargo %d, want %d", result.Matches[0].Cargo.ID, cargo.ID)
	}

	stored, err := db.Vessels.GetAll()
	if err != nil {
		t.Fatalf("Failed to list vessels: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored vessels = %d, want 1", len(stored))
	}
	if stored[0].Name != "Baltic Wind" {
		t.Errorf("stored vessel name = %s, want Baltic Wind", stored[0].Name)
	}
}

func TestParseInvalidJSON(t *testing.T) {
	db := newTestDB(t)
	router := newParseRouter(t, db, trainedRef(t))

	rec := doJSON(t, router, http.MethodPost, "/api/parse", nil)
	mustStatus(t, rec, http.StatusBadRequest)
}

func TestCandidateToCargoBrokenStowageDefault(t *testing.T) {
	commodity := "wheat"
	quantity := 48000.0
	sf := 45.0
	unit := "cuft/mt"

	candidate := &parser.Candidate{
		Commodity:         &commodity,
		Quantity:          &quantity,
		StowageFactor:     &sf,
		StowageFactorUnit: &unit,
	}

	cargo := candidateToCargo(candidate)
	if cargo.BrokenStowagePct != database.DefaultBrokenStowagePct {
		t.Errorf("broken stowage = %.1f, want default %.1f",
			cargo.BrokenStowagePct, database.DefaultBrokenStowagePct)
	}

	// An explicit figure from the message is kept.
	explicit := 8.0
	candidate.BrokenStowagePct = &explicit
	cargo = candidateToCargo(candidate)
	if cargo.BrokenStowagePct != 8.0 {
		t.Errorf("broken stowage = %.1f, want 8.0", cargo.BrokenStowagePct)
	}
}
