package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the sql.DB connection and provides access to stores
type DB struct {
	*sql.DB
	Vessels       *VesselStore
	Cargos        *CargoStore
	Ports         *PortStore
	Matches       *MatchStore
	Emails        *EmailStore
	MatchRunCache *MatchRunCacheStore
}

// Open opens a database connection and initializes stores
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Enable foreign key constraints in SQLite
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	database := &DB{
		DB:            db,
		Vessels:       NewVesselStore(db),
		Cargos:        NewCargoStore(db),
		Ports:         NewPortStore(db),
		Matches:       NewMatchStore(db),
		Emails:        NewEmailStore(db),
		MatchRunCache: NewMatchRunCacheStore(db),
	}

	// Run migrations
	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return database, nil
}

// migrate creates the database schema
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS vessels (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		dwt REAL NOT NULL,
		grain_capacity REAL,
		bale_capacity REAL,
		speed_knots REAL NOT NULL DEFAULT 12,
		current_port TEXT,
		open_from DATETIME,
		open_until DATETIME,
		features TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'AVAILABLE',
		source_email_id INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (source_email_id) REFERENCES inbound_emails(id) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS cargos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		commodity TEXT NOT NULL,
		quantity REAL NOT NULL,
		load_port TEXT,
		discharge_port TEXT,
		laycan_from DATETIME,
		laycan_until DATETIME,
		stowage_factor REAL,
		stowage_factor_unit TEXT,
		broken_stowage_pct REAL NOT NULL DEFAULT 5,
		requirements TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'AVAILABLE',
		source_email_id INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (source_email_id) REFERENCES inbound_emails(id) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS ports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		country TEXT NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		alt_names TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vessel_id INTEGER NOT NULL,
		cargo_id INTEGER NOT NULL,
		score REAL NOT NULL,
		breakdown TEXT NOT NULL DEFAULT '{}',
		rationale TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'PROPOSED',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (vessel_id, cargo_id),
		FOREIGN KEY (vessel_id) REFERENCES vessels(id) ON DELETE CASCADE,
		FOREIGN KEY (cargo_id) REFERENCES cargos(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS inbound_emails (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id TEXT NOT NULL UNIQUE,
		sender TEXT,
		subject TEXT,
		body_text TEXT,
		label TEXT,
		label_confidence REAL,
		gate_decision TEXT,
		reviewed BOOLEAN DEFAULT FALSE,
		received_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS match_run_cache (
		cache_key TEXT PRIMARY KEY,
		response_data TEXT NOT NULL,
		cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		expires_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_vessels_status ON vessels(status);
	CREATE INDEX IF NOT EXISTS idx_cargos_status ON cargos(status);
	CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status);
	CREATE INDEX IF NOT EXISTS idx_matches_pair ON matches(vessel_id, cargo_id);
	CREATE INDEX IF NOT EXISTS idx_inbound_emails_label ON inbound_emails(label);
	CREATE INDEX IF NOT EXISTS idx_match_run_cache_expires ON match_run_cache(expires_at);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Seed the port gazetteer if empty
	return db.seedDefaultPorts()
}

// seedDefaultPorts inserts the built-in port gazetteer
func (db *DB) seedDefaultPorts() error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM ports").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, port := range DefaultPorts() {
		if err := db.Ports.Create(&port); err != nil {
			return fmt.Errorf("failed to seed port %s: %w", port.Name, err)
		}
	}

	return nil
}

// IsHealthy checks if the database connection is healthy
func (db *DB) IsHealthy() error {
	return db.Ping()
}
