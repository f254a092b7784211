package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"fixture-matching/internal/classifier"
	"fixture-matching/internal/database"
	"fixture-matching/internal/matching"
	"fixture-matching/internal/parser"
)

// ParseHandler runs the full parse-and-match pipeline for a single message:
// normalize, classify, extract, gate, optionally persist, then score the new
// record against the opposite AVAILABLE pool.
type ParseHandler struct {
	db        *database.DB
	model     *classifier.Ref
	normalize *parser.Normalizer
	extractor *parser.FieldExtractor
	gate      *parser.QualityGate
	fallback  parser.FallbackExtractor
	criteria  matching.Criteria
}

// NewParseHandler creates a new parse handler
func NewParseHandler(db *database.DB, model *classifier.Ref, fallback parser.FallbackExtractor, criteria matching.Criteria) *ParseHandler {
	if fallback == nil {
		fallback = parser.NewNoOpFallbackExtractor()
	}
	return &ParseHandler{
		db:        db,
		model:     model,
		normalize: parser.NewDefaultNormalizer(),
		extractor: parser.NewFieldExtractor(),
		gate:      parser.NewQualityGate(),
		fallback:  fallback,
		criteria:  criteria,
	}
}

// ParseRequest is the body for POST /api/parse
type ParseRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Persist bool   `json:"persist"`
}

// ParseResponse reports the pipeline verdict for one message
type ParseResponse struct {
	Label            string             `json:"label"`
	LabelConfidence  float64            `json:"label_confidence"`
	GateDecision     string             `json:"gate_decision"`
	Candidate        *parser.Candidate  `json:"candidate,omitempty"`
	Gate             *parser.GateResult `json:"gate,omitempty"`
	VesselsFound     int                `json:"vessels_found"`
	CargosFound      int                `json:"cargos_found"`
	TotalMatches     int                `json:"total_matches"`
	ProcessingTimeMS int64              `json:"processing_time_ms"`
	Matches          []matching.Result  `json:"matches"`
}

// Parse handles POST /api/parse
func (h *ParseHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Subject == "" && req.Body == "" {
		http.Error(w, "Subject or body is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	rawText := req.Subject + "\n" + req.Body

	classification, err := h.model.Classify(rawText)
	if err != nil {
		if err == classifier.ErrUntrained {
			http.Error(w, "Classifier is not trained", http.StatusServiceUnavailable)
			return
		}
		log.Printf("ERROR: Classification failed: %v", err)
		http.Error(w, fmt.Sprintf("Classification failed: %v", err), http.StatusInternalServerError)
		return
	}

	response := ParseResponse{
		Label:           classification.Label,
		LabelConfidence: classification.Confidence,
		Matches:         []matching.Result{},
	}

	if classification.Label == classifier.LabelOther {
		response.GateDecision = parser.DecisionDiscard
		response.ProcessingTimeMS = time.Since(start).Milliseconds()
		writeJSON(w, http.StatusOK, response)
		return
	}

	kind := parser.KindCargo
	if classification.Label == classifier.LabelVessel {
		kind = parser.KindVessel
	}

	normalized := h.normalize.Normalize(req.Subject, req.Body)
	candidate := h.extractor.Extract(normalized, kind)
	gateResult := h.gate.Evaluate(candidate, rawText)

	if gateResult.Decision == parser.DecisionFallback && h.fallback.IsEnabled() {
		recovered, err := h.fallback.Extract(req.Subject, req.Body, kind)
		if err != nil {
			log.Printf("WARN: Fallback extraction failed, keeping local result: %v", err)
		} else {
			candidate = recovered
			gateResult = h.gate.Evaluate(candidate, rawText)
		}
	}

	response.Candidate = candidate
	response.Gate = gateResult
	response.GateDecision = gateResult.Decision

	if gateResult.Decision != parser.DecisionPersist {
		response.ProcessingTimeMS = time.Since(start).Milliseconds()
		writeJSON(w, http.StatusOK, response)
		return
	}

	if kind == parser.KindVessel {
		vessel := candidateToVessel(candidate)
		if req.Persist {
			if err := h.db.Vessels.Create(vessel); err != nil {
				log.Printf("ERROR: Failed to persist extracted vessel: %v", err)
				http.Error(w, fmt.Sprintf("Failed to persist vessel: %v", err), http.StatusInternalServerError)
				return
			}
		}
		response.VesselsFound = 1

		cargos, err := h.db.Cargos.GetAvailable()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to load cargos: %v", err), http.StatusInternalServerError)
			return
		}
		response.CargosFound = len(cargos)
		response.Matches = h.matchPools(r, []database.Vessel{*vessel}, cargos)
	} else {
		cargo := candidateToCargo(candidate)
		if req.Persist {
			if err := h.db.Cargos.Create(cargo); err != nil {
				log.Printf("ERROR: Failed to persist extracted cargo: %v", err)
				http.Error(w, fmt.Sprintf("Failed to persist cargo: %v", err), http.StatusInternalServerError)
				return
			}
		}
		response.CargosFound = 1

		vessels, err := h.db.Vessels.GetAvailable()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to load vessels: %v", err), http.StatusInternalServerError)
			return
		}
		response.VesselsFound = len(vessels)
		response.Matches = h.matchPools(r, vessels, []database.Cargo{*cargo})
	}

	response.TotalMatches = len(response.Matches)
	response.ProcessingTimeMS = time.Since(start).Milliseconds()
	writeJSON(w, http.StatusOK, response)
}

func (h *ParseHandler) matchPools(r *http.Request, vessels []database.Vessel, cargos []database.Cargo) []matching.Result {
	ports, err := h.db.Ports.GetAll()
	if err != nil {
		log.Printf("WARN: Failed to load ports for ad-hoc match: %v", err)
		return []matching.Result{}
	}

	engine, err := matching.NewEngine(ports, h.criteria)
	if err != nil {
		log.Printf("WARN: Failed to build ad-hoc engine: %v", err)
		return []matching.Result{}
	}

	results := engine.Match(r.Context(), vessels, cargos)
	if results == nil {
		results = []matching.Result{}
	}
	return results
}

// candidateToVessel maps an extracted candidate onto a vessel record
func candidateToVessel(c *parser.Candidate) *database.Vessel {
	vessel := &database.Vessel{
		GrainCapacity: c.GrainCapacity,
		BaleCapacity:  c.BaleCapacity,
		Features:      c.Features,
		OpenFrom:      c.LaycanFrom,
		OpenUntil:     c.LaycanUntil,
		Status:        database.StatusAvailable,
	}
	if c.VesselName != nil {
		vessel.Name = *c.VesselName
	}
	if c.DWT != nil {
		vessel.DWT = *c.DWT
	}
	if c.SpeedKnots != nil {
		vessel.SpeedKnots = *c.SpeedKnots
	}
	if c.CurrentPort != nil {
		vessel.CurrentPort = *c.CurrentPort
	}
	return vessel
}

// candidateToCargo maps an extracted candidate onto a cargo record. The
// broken-stowage default is applied here, not only on persist, so ad-hoc
// matching scores volume the same way a stored cargo would.
func candidateToCargo(c *parser.Candidate) *database.Cargo {
	cargo := &database.Cargo{
		LaycanFrom:       c.LaycanFrom,
		LaycanUntil:      c.LaycanUntil,
		StowageFactor:    c.StowageFactor,
		Requirements:     c.Requirements,
		Status:           database.StatusAvailable,
		BrokenStowagePct: database.DefaultBrokenStowagePct,
	}
	if c.Commodity != nil {
		cargo.Commodity = *c.Commodity
	}
	if c.Quantity != nil {
		cargo.Quantity = *c.Quantity
	}
	if c.LoadPort != nil {
		cargo.LoadPort = *c.LoadPort
	}
	if c.DischargePort != nil {
		cargo.DischargePort = *c.DischargePort
	}
	if c.StowageFactorUnit != nil {
		cargo.StowageFactorUnit = *c.StowageFactorUnit
	}
	if c.BrokenStowagePct != nil {
		cargo.BrokenStowagePct = *c.BrokenStowagePct
	}
	return cargo
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
