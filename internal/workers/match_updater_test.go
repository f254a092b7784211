package workers

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"fixture-matching/internal/config"
	"fixture-matching/internal/database"
	"fixture-matching/internal/matching"
)

func setupUpdaterTest(t *testing.T) (*MatchUpdater, *database.DB) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		MatchRefreshEnabled:   true,
		MatchRefreshInterval:  time.Hour,
		MatchExpireAfterDays:  14,
		MatchMaxLaycanGapDays: matching.DefaultMaxLaycanGapDays,
		MatchMaxDistanceDays:  matching.DefaultMaxDistanceDays,
		MatchMaxOversizeRatio: matching.DefaultMaxOversizeRatio,
		MatchRouteFactor:      matching.DefaultRouteFactor,
		MatchMinScore:         matching.DefaultMinMatchScore,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMatchUpdater(cfg, db, nil, logger), db
}

func seedMatchablePair(t *testing.T, db *database.DB) (*database.Vessel, *database.Cargo) {
	t.Helper()

	openFrom := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)
	openUntil := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	vessel := &database.Vessel{
		Name:        "Baltic Wind",
		DWT:         45000,
		SpeedKnots:  12,
		CurrentPort: "Rotterdam",
		OpenFrom:    &openFrom,
		OpenUntil:   &openUntil,
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
	}
	if err := db.Cargos.Create(cargo); err != nil {
		t.Fatalf("Failed to create cargo: %v", err)
	}

	return vessel, cargo
}

func TestPerformRefresh_CreatesProposals(t *testing.T) {
	updater, db := setupUpdaterTest(t)
	seedMatchablePair(t, db)

	updater.performRefresh()

	matches, err := db.Matches.GetByStatus(database.MatchProposed)
	if err != nil {
		t.Fatalf("GetByStatus() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected 1 proposed match, got %d", len(matches))
	}
	if matches[0].Score <= 0 {
		t.Errorf("Expected positive score, got %f", matches[0].Score)
	}
}

func TestPerformRefresh_PreservesAcceptedMatches(t *testing.T) {
	updater, db := setupUpdaterTest(t)
	vessel, cargo := seedMatchablePair(t, db)

	updater.performRefresh()

	matches, err := db.Matches.GetByStatus(database.MatchProposed)
	if err != nil {
		t.Fatalf("GetByStatus() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected 1 proposed match, got %d", len(matches))
	}

	if _, err := db.Matches.Accept(matches[0].ID); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}

	// A later refresh must not touch the accepted fixture
	updater.performRefresh()

	accepted, err := db.Matches.GetByStatus(database.MatchAccepted)
	if err != nil {
		t.Fatalf("GetByStatus() error = %v", err)
	}
	if len(accepted) != 1 {
		t.Fatalf("Expected accepted match to survive refresh, got %d", len(accepted))
	}

	v, err := db.Vessels.GetByID(vessel.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if v.Status != database.StatusFixed {
		t.Errorf("Vessel status = %s, want %s", v.Status, database.StatusFixed)
	}

	c, err := db.Cargos.GetByID(cargo.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if c.Status != database.StatusFixed {
		t.Errorf("Cargo status = %s, want %s", c.Status, database.StatusFixed)
	}
}

func TestPerformRefresh_ExpiresPassedLaycans(t *testing.T) {
	updater, db := setupUpdaterTest(t)

	// Cargo whose laycan already passed
	openFrom := time.Now().UTC().AddDate(0, 0, -30)
	openUntil := time.Now().UTC().AddDate(0, 0, -20)
	vessel := &database.Vessel{
		Name:        "Aegean Spirit",
		DWT:         30000,
		SpeedKnots:  12,
		CurrentPort: "Rotterdam",
		OpenFrom:    &openFrom,
		OpenUntil:   &openUntil,
	}
	if err := db.Vessels.Create(vessel); err != nil {
		t.Fatalf("Failed to create vessel: %v", err)
	}

	laycanFrom := time.Now().UTC().AddDate(0, 0, -28)
	laycanUntil := time.Now().UTC().AddDate(0, 0, -22)
	cargo := &database.Cargo{
		Commodity:   "coal",
		Quantity:    25000,
		LoadPort:    "Hamburg",
		LaycanFrom:  &laycanFrom,
		LaycanUntil: &laycanUntil,
	}
	if err := db.Cargos.Create(cargo); err != nil {
		t.Fatalf("Failed to create cargo: %v", err)
	}

	match := &database.Match{
		VesselID: vessel.ID,
		CargoID:  cargo.ID,
		Score:    75,
		Status:   database.MatchProposed,
	}
	if err := db.Matches.Upsert(match); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	updater.expireStaleProposals()

	expired, err := db.Matches.GetByStatus(database.MatchExpired)
	if err != nil {
		t.Fatalf("GetByStatus() error = %v", err)
	}
	if len(expired) != 1 {
		t.Errorf("Expected 1 expired match, got %d", len(expired))
	}
}

func TestMatchUpdater_PauseSkipsRefresh(t *testing.T) {
	updater, db := setupUpdaterTest(t)
	seedMatchablePair(t, db)

	updater.Pause()
	updater.performRefresh()

	matches, err := db.Matches.GetAll()
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Expected no matches while paused, got %d", len(matches))
	}

	updater.Resume()
	updater.performRefresh()

	matches, err = db.Matches.GetAll()
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("Expected 1 match after resume, got %d", len(matches))
	}
}

func TestMatchUpdater_StartStop(t *testing.T) {
	updater, _ := setupUpdaterTest(t)

	if !updater.IsRunning() {
		t.Error("Expected updater to be running before Stop")
	}

	updater.Stop()
	if updater.IsRunning() {
		t.Error("Expected updater to be stopped after Stop")
	}
}
