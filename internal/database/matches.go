package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Match statuses. An accepted match is terminal and fixes both linked records.
const (
	MatchProposed = "PROPOSED"
	MatchAccepted = "ACCEPTED"
	MatchRejected = "REJECTED"
	MatchExpired  = "EXPIRED"
)

// ErrMatchAccepted is returned when attempting to delete or re-transition an
// accepted match.
var ErrMatchAccepted = fmt.Errorf("match is accepted and cannot be modified")

type Match struct {
	ID        int       `json:"id"`
	VesselID  int       `json:"vessel_id"`
	CargoID   int       `json:"cargo_id"`
	Score     float64   `json:"score"`
	Breakdown string    `json:"breakdown"` // JSON-encoded compatibility breakdown
	Rationale string    `json:"rationale"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MatchStore handles database operations for matches
type MatchStore struct {
	db *sql.DB
}

func NewMatchStore(db *sql.DB) *MatchStore {
	return &MatchStore{db: db}
}

const matchColumns = `id, vessel_id, cargo_id, score, breakdown, rationale, status,
	created_at, updated_at`

func scanMatch(scanner interface {
	Scan(dest ...interface{}) error
}) (*Match, error) {
	var match Match
	err := scanner.Scan(&match.ID, &match.VesselID, &match.CargoID, &match.Score,
		&match.Breakdown, &match.Rationale, &match.Status, &match.CreatedAt,
		&match.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// GetAll returns all matches ordered by score descending
func (s *MatchStore) GetAll() ([]Match, error) {
	rows, err := s.db.Query(
		`SELECT ` + matchColumns + ` FROM matches ORDER BY score DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMatches(rows)
}

// GetByStatus returns matches with the given status ordered by score descending
func (s *MatchStore) GetByStatus(status string) ([]Match, error) {
	rows, err := s.db.Query(
		`SELECT `+matchColumns+` FROM matches WHERE status = ? ORDER BY score DESC, id ASC`,
		status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMatches(rows)
}

func collectMatches(rows *sql.Rows) ([]Match, error) {
	var matches []Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *match)
	}
	return matches, rows.Err()
}

// GetByID returns a match by ID
func (s *MatchStore) GetByID(id int) (*Match, error) {
	return scanMatch(s.db.QueryRow(
		`SELECT `+matchColumns+` FROM matches WHERE id = ?`, id))
}

// Upsert inserts or replaces the match for a (vessel, cargo) pair. Scores are
// always recomputed from current record state, so an existing PROPOSED row is
// overwritten rather than kept stale. Accepted matches are never overwritten.
func (s *MatchStore) Upsert(match *Match) error {
	if match.Status == "" {
		match.Status = MatchProposed
	}

	existing, err := s.getByPair(match.VesselID, match.CargoID)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	if existing != nil {
		if existing.Status == MatchAccepted {
			return ErrMatchAccepted
		}
		query := `UPDATE matches SET score = ?, breakdown = ?, rationale = ?, status = ?,
				  updated_at = CURRENT_TIMESTAMP WHERE id = ?`
		if _, err := s.db.Exec(query, match.Score, match.Breakdown, match.Rationale,
			match.Status, existing.ID); err != nil {
			return err
		}
		match.ID = existing.ID
		return nil
	}

	query := `INSERT INTO matches (vessel_id, cargo_id, score, breakdown, rationale, status)
			  VALUES (?, ?, ?, ?, ?, ?)`
	result, err := s.db.Exec(query, match.VesselID, match.CargoID, match.Score,
		match.Breakdown, match.Rationale, match.Status)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	match.ID = int(id)
	return nil
}

func (s *MatchStore) getByPair(vesselID, cargoID int) (*Match, error) {
	return scanMatch(s.db.QueryRow(
		`SELECT `+matchColumns+` FROM matches WHERE vessel_id = ? AND cargo_id = ?`,
		vesselID, cargoID))
}

// Accept transitions a match to ACCEPTED and fixes the linked vessel and cargo.
// Other PROPOSED matches touching either record are expired since their pools
// no longer contain an AVAILABLE counterpart.
func (s *MatchStore) Accept(id int) (*Match, error) {
	match, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if match.Status == MatchAccepted {
		return match, nil
	}
	if match.Status != MatchProposed {
		return nil, fmt.Errorf("match %d is %s, only proposed matches can be accepted", id, match.Status)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if tx.Commit() succeeds

	statements := []struct {
		query string
		args  []interface{}
	}{
		{`UPDATE matches SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			[]interface{}{MatchAccepted, id}},
		{`UPDATE vessels SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			[]interface{}{StatusFixed, match.VesselID}},
		{`UPDATE cargos SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			[]interface{}{StatusFixed, match.CargoID}},
		{`UPDATE matches SET status = ?, updated_at = CURRENT_TIMESTAMP
		  WHERE status = ? AND id != ? AND (vessel_id = ? OR cargo_id = ?)`,
			[]interface{}{MatchExpired, MatchProposed, id, match.VesselID, match.CargoID}},
	}

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt.query, stmt.args...); err != nil {
			return nil, fmt.Errorf("failed to accept match: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s.GetByID(id)
}

// Reject transitions a match to REJECTED
func (s *MatchStore) Reject(id int) (*Match, error) {
	match, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if match.Status == MatchAccepted {
		return nil, ErrMatchAccepted
	}

	_, err = s.db.Exec(
		`UPDATE matches SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		MatchRejected, id)
	if err != nil {
		return nil, err
	}

	return s.GetByID(id)
}

// Delete deletes a match by ID. Accepted matches are terminal and cannot be deleted.
func (s *MatchStore) Delete(id int) error {
	match, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if match.Status == MatchAccepted {
		return ErrMatchAccepted
	}

	_, err = s.db.Exec(`DELETE FROM matches WHERE id = ?`, id)
	return err
}

// DeleteProposed clears all PROPOSED matches, used before a fresh matching run
func (s *MatchStore) DeleteProposed() error {
	_, err := s.db.Exec(`DELETE FROM matches WHERE status = ?`, MatchProposed)
	return err
}

// ExpireProposedBefore expires proposed matches whose linked cargo laycan has
// fully passed.
func (s *MatchStore) ExpireProposedBefore(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(
		`UPDATE matches SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE status = ? AND cargo_id IN (
			SELECT id FROM cargos WHERE laycan_until IS NOT NULL AND laycan_until < ?
		 )`,
		MatchExpired, MatchProposed, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
