package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/blackoutkit/blackout/internal/engine"
	_ "modernc.org/sqlite"
)

// Store handles persistent storage using SQLite. It keeps user-entered
// configuration only: battery settings, the appliance list and the grid
// power schedule. Computed results are never persisted.
type Store struct {
	db *sql.DB
}

// NewStore creates a new store and initializes the database
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// initialize creates the database schema
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS battery (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		capacity_kwh REAL NOT NULL,
		min_discharge REAL NOT NULL,
		max_charge REAL NOT NULL,
		current_charge REAL NOT NULL,
		charging_power_kw REAL NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS appliances (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		icon TEXT DEFAULT '',
		color TEXT DEFAULT '',
		power_kw REAL NOT NULL,
		enabled INTEGER DEFAULT 1,
		schedule TEXT,
		position INTEGER DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS power_schedule (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		periods TEXT NOT NULL,
		source TEXT DEFAULT '',
		fetched_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_appliances_position ON appliances(position, name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveBattery saves or replaces the single battery settings row
func (s *Store) SaveBattery(b engine.BatterySettings) error {
	query := `INSERT OR REPLACE INTO battery
		(id, capacity_kwh, min_discharge, max_charge, current_charge, charging_power_kw, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query, b.CapacityKwh, b.MinDischarge, b.MaxCharge, b.CurrentCharge, b.ChargingPowerKw, time.Now())
	return err
}

// GetBattery retrieves the battery settings
func (s *Store) GetBattery() (engine.BatterySettings, error) {
	query := `SELECT capacity_kwh, min_discharge, max_charge, current_charge, charging_power_kw
		FROM battery WHERE id = 1`

	var b engine.BatterySettings
	err := s.db.QueryRow(query).Scan(&b.CapacityKwh, &b.MinDischarge, &b.MaxCharge, &b.CurrentCharge, &b.ChargingPowerKw)
	if err != nil {
		return engine.BatterySettings{}, err
	}
	return b, nil
}

// SaveAppliance saves or updates an appliance, keeping its position when
// it already exists
func (s *Store) SaveAppliance(a engine.Appliance, position int) error {
	scheduleJSON, _ := json.Marshal(a.Schedule)

	// An existing appliance keeps its place in the list.
	var existing int
	if err := s.db.QueryRow(`SELECT position FROM appliances WHERE id = ?`, a.ID).Scan(&existing); err == nil {
		position = existing
	}

	query := `INSERT OR REPLACE INTO appliances
		(id, name, icon, color, power_kw, enabled, schedule, position, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query, a.ID, a.Name, a.Icon, a.Color, a.PowerKw,
		boolToInt(a.Enabled), string(scheduleJSON), position, time.Now())
	return err
}

// GetAppliances retrieves all appliances in stable catalog order
func (s *Store) GetAppliances() ([]engine.Appliance, error) {
	query := `SELECT id, name, icon, color, power_kw, enabled, schedule
		FROM appliances ORDER BY position, name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appliances := []engine.Appliance{}
	for rows.Next() {
		a, err := scanAppliance(rows)
		if err != nil {
			continue
		}
		appliances = append(appliances, a)
	}

	return appliances, rows.Err()
}

// GetAppliance retrieves a single appliance by ID
func (s *Store) GetAppliance(id string) (engine.Appliance, error) {
	query := `SELECT id, name, icon, color, power_kw, enabled, schedule
		FROM appliances WHERE id = ?`

	return scanAppliance(s.db.QueryRow(query, id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppliance(row rowScanner) (engine.Appliance, error) {
	var a engine.Appliance
	var enabledInt int
	var scheduleJSON sql.NullString

	err := row.Scan(&a.ID, &a.Name, &a.Icon, &a.Color, &a.PowerKw, &enabledInt, &scheduleJSON)
	if err != nil {
		return engine.Appliance{}, err
	}

	a.Enabled = enabledInt == 1
	if scheduleJSON.Valid && scheduleJSON.String != "" {
		json.Unmarshal([]byte(scheduleJSON.String), &a.Schedule)
	}
	return a, nil
}

// DeleteAppliance deletes an appliance by ID
func (s *Store) DeleteAppliance(id string) error {
	_, err := s.db.Exec(`DELETE FROM appliances WHERE id = ?`, id)
	return err
}

// ReplaceAppliances swaps the whole appliance list in one transaction.
// Used when a scenario is applied: the scenario's list replaces the
// current configuration verbatim.
func (s *Store) ReplaceAppliances(appliances []engine.Appliance) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM appliances`); err != nil {
		return err
	}

	for i, a := range appliances {
		scheduleJSON, _ := json.Marshal(a.Schedule)
		_, err := tx.Exec(`INSERT INTO appliances
			(id, name, icon, color, power_kw, enabled, schedule, position, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.Name, a.Icon, a.Color, a.PowerKw, boolToInt(a.Enabled),
			string(scheduleJSON), i, time.Now())
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveSchedule saves or replaces the grid power schedule and records
// where it came from ("provider", "manual", "mock")
func (s *Store) SaveSchedule(schedule engine.PowerSchedule, source string) error {
	periodsJSON, _ := json.Marshal(schedule.Periods)

	query := `INSERT OR REPLACE INTO power_schedule (id, periods, source, fetched_at)
		VALUES (1, ?, ?, ?)`

	_, err := s.db.Exec(query, string(periodsJSON), source, time.Now())
	return err
}

// GetSchedule retrieves the grid power schedule
func (s *Store) GetSchedule() (engine.PowerSchedule, error) {
	var periodsJSON string
	err := s.db.QueryRow(`SELECT periods FROM power_schedule WHERE id = 1`).Scan(&periodsJSON)
	if err != nil {
		return engine.PowerSchedule{}, err
	}

	var schedule engine.PowerSchedule
	if err := json.Unmarshal([]byte(periodsJSON), &schedule.Periods); err != nil {
		return engine.PowerSchedule{}, err
	}
	return schedule, nil
}

// SetSetting stores a key/value setting
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// GetSetting retrieves a setting value, empty string when unset
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
