package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"fixture-matching/internal/database"
)

// rateConfig satisfies ratelimit.Config for tests
type rateConfig struct {
	disabled bool
}

func (c rateConfig) GetDisableRateLimit() bool { return c.disabled }

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedMatchablePair stores one vessel and one cargo that score above the
// retention threshold with the default criteria
func seedMatchablePair(t *testing.T, db *database.DB) (*database.Vessel, *database.Cargo) {
	t.Helper()

	openFrom := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)
	openUntil := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	vessel := &database.Vessel{
		Name:        "Baltic Wind",
		DWT:         45000,
		SpeedKnots:  14,
		CurrentPort: "Rotterdam",
		OpenFrom:    &openFrom,
		OpenUntil:   &openUntil,
		Features:    []string{"geared"},
		Status:      database.StatusAvailable,
	}
	if err := db.Vessels.Create(vessel); err != nil {
		t.Fatalf("Failed to create vessel: %v", err)
	}

	laycanFrom := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	laycanUntil := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	cargo := &database.Cargo{
		Commodity:   "wheat",
		Quantity:    40000,
		LoadPort:    "Hamburg",
		LaycanFrom:  &laycanFrom,
		LaycanUntil: &laycanUntil,
		Status:      database.StatusAvailable,
	}
	if err := db.Cargos.Create(cargo); err != nil {
		t.Fatalf("Failed to create cargo: %v", err)
	}

	return vessel, cargo
}

func itoa(id int) string { return strconv.Itoa(id) }

func doJSON(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("Status = %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}
