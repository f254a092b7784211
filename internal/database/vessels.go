package database

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Record lifecycle statuses shared by vessels and cargos.
const (
	StatusAvailable = "AVAILABLE"
	StatusFixed     = "FIXED"
)

type Vessel struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	DWT           float64    `json:"dwt"`
	GrainCapacity *float64   `json:"grain_capacity,omitempty"`
	BaleCapacity  *float64   `json:"bale_capacity,omitempty"`
	SpeedKnots    float64    `json:"speed_knots"`
	CurrentPort   string     `json:"current_port"`
	OpenFrom      *time.Time `json:"open_from,omitempty"`
	OpenUntil     *time.Time `json:"open_until,omitempty"`
	Features      []string   `json:"features"`
	Status        string     `json:"status"`
	SourceEmailID *int       `json:"source_email_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// VesselStore handles database operations for vessels
type VesselStore struct {
	db *sql.DB
}

func NewVesselStore(db *sql.DB) *VesselStore {
	return &VesselStore{db: db}
}

const vesselColumns = `id, name, dwt, grain_capacity, bale_capacity, speed_knots,
	current_port, open_from, open_until, features, status, source_email_id,
	created_at, updated_at`

func scanVessel(scanner interface {
	Scan(dest ...interface{}) error
}) (*Vessel, error) {
	var vessel Vessel
	var features string
	err := scanner.Scan(&vessel.ID, &vessel.Name, &vessel.DWT, &vessel.GrainCapacity,
		&vessel.BaleCapacity, &vessel.SpeedKnots, &vessel.CurrentPort,
		&vessel.OpenFrom, &vessel.OpenUntil, &features, &vessel.Status,
		&vessel.SourceEmailID, &vessel.CreatedAt, &vessel.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(features), &vessel.Features); err != nil {
		vessel.Features = nil
	}
	return &vessel, nil
}

// GetAll returns all vessels
func (s *VesselStore) GetAll() ([]Vessel, error) {
	query := `SELECT ` + vesselColumns + ` FROM vessels ORDER BY created_at DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vessels []Vessel
	for rows.Next() {
		vessel, err := scanVessel(rows)
		if err != nil {
			return nil, err
		}
		vessels = append(vessels, *vessel)
	}

	return vessels, rows.Err()
}

// GetAvailable returns vessels with status AVAILABLE
func (s *VesselStore) GetAvailable() ([]Vessel, error) {
	query := `SELECT ` + vesselColumns + ` FROM vessels WHERE status = ? ORDER BY id ASC`

	rows, err := s.db.Query(query, StatusAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vessels []Vessel
	for rows.Next() {
		vessel, err := scanVessel(rows)
		if err != nil {
			return nil, err
		}
		vessels = append(vessels, *vessel)
	}

	return vessels, rows.Err()
}

// GetByID returns a vessel by ID
func (s *VesselStore) GetByID(id int) (*Vessel, error) {
	query := `SELECT ` + vesselColumns + ` FROM vessels WHERE id = ?`
	return scanVessel(s.db.QueryRow(query, id))
}

// Create creates a new vessel
func (s *VesselStore) Create(vessel *Vessel) error {
	if vessel.Status == "" {
		vessel.Status = StatusAvailable
	}
	if vessel.SpeedKnots == 0 {
		vessel.SpeedKnots = 12
	}
	features, err := json.Marshal(vessel.Features)
	if err != nil {
		return err
	}

	query := `INSERT INTO vessels (name, dwt, grain_capacity, bale_capacity, speed_knots,
			  current_port, open_from, open_until, features, status, source_email_id)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.Exec(query, vessel.Name, vessel.DWT, vessel.GrainCapacity,
		vessel.BaleCapacity, vessel.SpeedKnots, vessel.CurrentPort, vessel.OpenFrom,
		vessel.OpenUntil, string(features), vessel.Status, vessel.SourceEmailID)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	vessel.ID = int(id)

	created, err := s.GetByID(vessel.ID)
	if err != nil {
		return err
	}
	vessel.CreatedAt = created.CreatedAt
	vessel.UpdatedAt = created.UpdatedAt

	return nil
}

// Update updates an existing vessel
func (s *VesselStore) Update(id int, vessel *Vessel) error {
	features, err := json.Marshal(vessel.Features)
	if err != nil {
		return err
	}

	query := `UPDATE vessels SET name = ?, dwt = ?, grain_capacity = ?, bale_capacity = ?,
			  speed_knots = ?, current_port = ?, open_from = ?, open_until = ?,
			  features = ?, status = ?, updated_at = CURRENT_TIMESTAMP
			  WHERE id = ?`

	result, err := s.db.Exec(query, vessel.Name, vessel.DWT, vessel.GrainCapacity,
		vessel.BaleCapacity, vessel.SpeedKnots, vessel.CurrentPort, vessel.OpenFrom,
		vessel.OpenUntil, string(features), vessel.Status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	updated, err := s.GetByID(id)
	if err != nil {
		return err
	}
	*vessel = *updated
	return nil
}

// SetStatus updates only the vessel status
func (s *VesselStore) SetStatus(id int, status string) error {
	result, err := s.db.Exec(
		`UPDATE vessels SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete deletes a vessel by ID
func (s *VesselStore) Delete(id int) error {
	result, err := s.db.Exec(`DELETE FROM vessels WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
