package database

import (
	"database/sql"
	"encoding/json"
	"time"
)

type Cargo struct {
	ID                int        `json:"id"`
	Commodity         string     `json:"commodity"`
	Quantity          float64    `json:"quantity"`
	LoadPort          string     `json:"load_port"`
	DischargePort     string     `json:"discharge_port"`
	LaycanFrom        *time.Time `json:"laycan_from,omitempty"`
	LaycanUntil       *time.Time `json:"laycan_until,omitempty"`
	StowageFactor     *float64   `json:"stowage_factor,omitempty"`
	StowageFactorUnit string     `json:"stowage_factor_unit,omitempty"`
	BrokenStowagePct  float64    `json:"broken_stowage_pct"`
	Requirements      []string   `json:"requirements"`
	Status            string     `json:"status"`
	SourceEmailID     *int       `json:"source_email_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// DefaultBrokenStowagePct is assumed when a cargo does not quote its own
// broken-stowage allowance
const DefaultBrokenStowagePct = 5.0

// CargoStore handles database operations for cargos
type CargoStore struct {
	db *sql.DB
}

func NewCargoStore(db *sql.DB) *CargoStore {
	return &CargoStore{db: db}
}

const cargoColumns = `id, commodity, quantity, load_port, discharge_port, laycan_from,
	laycan_until, stowage_factor, stowage_factor_unit, broken_stowage_pct,
	requirements, status, source_email_id, created_at, updated_at`

func scanCargo(scanner interface {
	Scan(dest ...interface{}) error
}) (*Cargo, error) {
	var cargo Cargo
	var requirements string
	var sfUnit sql.NullString
	err := scanner.Scan(&cargo.ID, &cargo.Commodity, &cargo.Quantity, &cargo.LoadPort,
		&cargo.DischargePort, &cargo.LaycanFrom, &cargo.LaycanUntil,
		&cargo.StowageFactor, &sfUnit, &cargo.BrokenStowagePct, &requirements,
		&cargo.Status, &cargo.SourceEmailID, &cargo.CreatedAt, &cargo.UpdatedAt)
	if err != nil {
		return nil, err
	}
	cargo.StowageFactorUnit = sfUnit.String
	if err := json.Unmarshal([]byte(requirements), &cargo.Requirements); err != nil {
		cargo.Requirements = nil
	}
	return &cargo, nil
}

// GetAll returns all cargos
func (s *CargoStore) GetAll() ([]Cargo, error) {
	query := `SELECT ` + cargoColumns + ` FROM cargos ORDER BY created_at DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cargos []Cargo
	for rows.Next() {
		cargo, err := scanCargo(rows)
		if err != nil {
			return nil, err
		}
		cargos = append(cargos, *cargo)
	}

	return cargos, rows.Err()
}

// GetAvailable returns cargos with status AVAILABLE
func (s *CargoStore) GetAvailable() ([]Cargo, error) {
	query := `SELECT ` + cargoColumns + ` FROM cargos WHERE status = ? ORDER BY id ASC`

	rows, err := s.db.Query(query, StatusAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cargos []Cargo
	for rows.Next() {
		cargo, err := scanCargo(rows)
		if err != nil {
			return nil, err
		}
		cargos = append(cargos, *cargo)
	}

	return cargos, rows.Err()
}

// GetByID returns a cargo by ID
func (s *CargoStore) GetByID(id int) (*Cargo, error) {
	query := `SELECT ` + cargoColumns + ` FROM cargos WHERE id = ?`
	return scanCargo(s.db.QueryRow(query, id))
}

// Create creates a new cargo
func (s *CargoStore) Create(cargo *Cargo) error {
	if cargo.Status == "" {
		cargo.Status = StatusAvailable
	}
	if cargo.BrokenStowagePct == 0 {
		cargo.BrokenStowagePct = DefaultBrokenStowagePct
	}
	requirements, err := json.Marshal(cargo.Requirements)
	if err != nil {
		return err
	}

	query := `INSERT INTO cargos (commodity, quantity, load_port, discharge_port,
			  laycan_from, laycan_until, stowage_factor, stowage_factor_unit,
			  broken_stowage_pct, requirements, status, source_email_id)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.Exec(query, cargo.Commodity, cargo.Quantity, cargo.LoadPort,
		cargo.DischargePort, cargo.LaycanFrom, cargo.LaycanUntil, cargo.StowageFactor,
		nullString(cargo.StowageFactorUnit), cargo.BrokenStowagePct,
		string(requirements), cargo.Status, cargo.SourceEmailID)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	cargo.ID = int(id)

	created, err := s.GetByID(cargo.ID)
	if err != nil {
		return err
	}
	cargo.CreatedAt = created.CreatedAt
	cargo.UpdatedAt = created.UpdatedAt

	return nil
}

// Update updates an existing cargo
func (s *CargoStore) Update(id int, cargo *Cargo) error {
	requirements, err := json.Marshal(cargo.Requirements)
	if err != nil {
		return err
	}

	query := `UPDATE cargos SET commodity = ?, quantity = ?, load_port = ?,
			  discharge_port = ?, laycan_from = ?, laycan_until = ?, stowage_factor = ?,
			  stowage_factor_unit = ?, broken_stowage_pct = ?, requirements = ?,
			  status = ?, updated_at = CURRENT_TIMESTAMP
			  WHERE id = ?`

	result, err := s.db.Exec(query, cargo.Commodity, cargo.Quantity, cargo.LoadPort,
		cargo.DischargePort, cargo.LaycanFrom, cargo.LaycanUntil, cargo.StowageFactor,
		nullString(cargo.StowageFactorUnit), cargo.BrokenStowagePct,
		string(requirements), cargo.Status, id)
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
	*cargo = *updated
	return nil
}

// SetStatus updates only the cargo status
func (s *CargoStore) SetStatus(id int, status string) error {
	result, err := s.db.Exec(
		`UPDATE cargos SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
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

// Delete deletes a cargo by ID
func (s *CargoStore) Delete(id int) error {
	result, err := s.db.Exec(`DELETE FROM cargos WHERE id = ?`, id)
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

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
