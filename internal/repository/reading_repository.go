// Package repository provides data access implementations
package repository

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Aro-geo/washguard-prototype/internal/entities"
	_ "github.com/mattn/go-sqlite3"
)

// ReadingRepository defines the interface for reading persistence operations.
// Readings are append-only: there is no update or delete, and reads return
// full snapshots in insertion order.
type ReadingRepository interface {
	InsertChlorine(r entities.ChlorineReading) (int64, error)
	InsertQuality(r entities.QualityReading) (int64, error)
	InsertFeedback(r entities.FeedbackEntry) (int64, error)
	InsertInfrastructure(r entities.InfrastructureStatus) (int64, error)
	GetAllChlorine() ([]entities.ChlorineReading, error)
	GetAllQuality() ([]entities.QualityReading, error)
	GetAllFeedback() ([]entities.FeedbackEntry, error)
	GetAllInfrastructure() ([]entities.InfrastructureStatus, error)
	Close() error
}

// AlertLedger tracks locations with an open, unresolved alert across
// evaluation passes. Optional strengthening of the per-pass dedup.
type AlertLedger interface {
	// TryOpenAlert records an open alert for the location and reports
	// whether it was newly opened. An already-open location returns false.
	TryOpenAlert(location, statusLine string) (bool, error)
	// CloseAlert clears the open alert for a location, if any
	CloseAlert(location string) error
}

// SQLiteReadingRepository implements ReadingRepository and AlertLedger
// using SQLite
type SQLiteReadingRepository struct {
	db     *sql.DB
	DBPath string
}

// NewSQLiteReadingRepository creates and initializes a new SQLite repository
func NewSQLiteReadingRepository(dbPath string) (*SQLiteReadingRepository, error) {
	if dbPath == "" {
		// Set default path if not specified
		dbDir := "data"
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
		dbPath = filepath.Join(dbDir, "washguard.db")
	}

	log.Printf("Opening database at %s", dbPath)
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	// Create reading tables if they don't exist
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS chlorine (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tap_stand_id TEXT NOT NULL,
		date TEXT,
		time TEXT,
		chlorine_level REAL
	);
	CREATE TABLE IF NOT EXISTS quality (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_id TEXT NOT NULL,
		turbidity REAL,
		odour_present TEXT
	);
	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		household_id TEXT NOT NULL,
		feedback_text TEXT
	);
	CREATE TABLE IF NOT EXISTS infrastructure (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		location TEXT NOT NULL,
		generator_ok TEXT,
		pump_ok TEXT,
		pipe_leak TEXT,
		road_condition TEXT,
		comments TEXT,
		water_available_liters INTEGER
	);
	CREATE TABLE IF NOT EXISTS open_alerts (
		location TEXT PRIMARY KEY,
		status_line TEXT,
		opened_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &SQLiteReadingRepository{
		db:     db,
		DBPath: dbPath,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReadingRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertChlorine stores one chlorine reading and returns its assigned id
func (r *SQLiteReadingRepository) InsertChlorine(c entities.ChlorineReading) (int64, error) {
	res, err := r.db.Exec(
		"INSERT INTO chlorine (tap_stand_id, date, time, chlorine_level) VALUES (?, ?, ?, ?)",
		c.TapStandID, c.Date, c.Time, c.Level,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert chlorine reading for %s: %v", c.TapStandID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted chlorine id: %v", err)
	}
	return id, nil
}

// InsertQuality stores one water quality reading and returns its assigned id
func (r *SQLiteReadingRepository) InsertQuality(q entities.QualityReading) (int64, error) {
	res, err := r.db.Exec(
		"INSERT INTO quality (source_id, turbidity, odour_present) VALUES (?, ?, ?)",
		q.SourceID, q.Turbidity, string(q.OdourPresent),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert quality reading for %s: %v", q.SourceID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted quality id: %v", err)
	}
	return id, nil
}

// InsertFeedback stores one feedback entry and returns its assigned id
func (r *SQLiteReadingRepository) InsertFeedback(f entities.FeedbackEntry) (int64, error) {
	res, err := r.db.Exec(
		"INSERT INTO feedback (household_id, feedback_text) VALUES (?, ?)",
		f.HouseholdID, f.Text,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert feedback for %s: %v", f.HouseholdID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted feedback id: %v", err)
	}
	return id, nil
}

// InsertInfrastructure stores one infrastructure status report and returns
// its assigned id
func (r *SQLiteReadingRepository) InsertInfrastructure(s entities.InfrastructureStatus) (int64, error) {
	res, err := r.db.Exec(
		`INSERT INTO infrastructure
		(location, generator_ok, pump_ok, pipe_leak, road_condition, comments, water_available_liters)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Location, string(s.GeneratorOK), string(s.PumpOK), string(s.PipeLeak),
		string(s.RoadCondition), s.Comments, s.WaterAvailableLiters,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert infrastructure status for %s: %v", s.Location, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted infrastructure id: %v", err)
	}
	return id, nil
}

// GetAllChlorine returns every chlorine reading in insertion order
func (r *SQLiteReadingRepository) GetAllChlorine() ([]entities.ChlorineReading, error) {
	rows, err := r.db.Query(
		"SELECT id, tap_stand_id, date, time, chlorine_level FROM chlorine ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query chlorine readings: %v", err)
	}
	defer rows.Close()

	var result []entities.ChlorineReading
	for rows.Next() {
		var c entities.ChlorineReading
		if err := rows.Scan(&c.ID, &c.TapStandID, &c.Date, &c.Time, &c.Level); err != nil {
			return nil, fmt.Errorf("failed to scan chlorine row: %v", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %v", err)
	}
	return result, nil
}

// GetAllQuality returns every water quality reading in insertion order
func (r *SQLiteReadingRepository) GetAllQuality() ([]entities.QualityReading, error) {
	rows, err := r.db.Query(
		"SELECT id, source_id, turbidity, odour_present FROM quality ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query quality readings: %v", err)
	}
	defer rows.Close()

	var result []entities.QualityReading
	for rows.Next() {
		var q entities.QualityReading
		var odour string
		if err := rows.Scan(&q.ID, &q.SourceID, &q.Turbidity, &odour); err != nil {
			return nil, fmt.Errorf("failed to scan quality row: %v", err)
		}
		q.OdourPresent = entities.YesNo(odour)
		result = append(result, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %v", err)
	}
	return result, nil
}

// GetAllFeedback returns every feedback entry in insertion order
func (r *SQLiteReadingRepository) GetAllFeedback() ([]entities.FeedbackEntry, error) {
	rows, err := r.db.Query(
		"SELECT id, household_id, feedback_text FROM feedback ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback entries: %v", err)
	}
	defer rows.Close()

	var result []entities.FeedbackEntry
	for rows.Next() {
		var f entities.FeedbackEntry
		if err := rows.Scan(&f.ID, &f.HouseholdID, &f.Text); err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %v", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %v", err)
	}
	return result, nil
}

// GetAllInfrastructure returns every infrastructure status report in
// insertion order
func (r *SQLiteReadingRepository) GetAllInfrastructure() ([]entities.InfrastructureStatus, error) {
	rows, err := r.db.Query(
		`SELECT id, location, generator_ok, pump_ok, pipe_leak, road_condition, comments, water_available_liters
		FROM infrastructure ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query infrastructure statuses: %v", err)
	}
	defer rows.Close()

	var result []entities.InfrastructureStatus
	for rows.Next() {
		var s entities.InfrastructureStatus
		var generator, pump, leak, road string
		if err := rows.Scan(&s.ID, &s.Location, &generator, &pump, &leak, &road,
			&s.Comments, &s.WaterAvailableLiters); err != nil {
			return nil, fmt.Errorf("failed to scan infrastructure row: %v", err)
		}
		s.GeneratorOK = entities.YesNo(generator)
		s.PumpOK = entities.YesNo(pump)
		s.PipeLeak = entities.YesNo(leak)
		s.RoadCondition = entities.RoadCondition(road)
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %v", err)
	}
	return result, nil
}

// TryOpenAlert records an open alert for the location. Returns false when
// the location already has an open alert, so repeat passes stay quiet until
// the condition clears.
func (r *SQLiteReadingRepository) TryOpenAlert(location, statusLine string) (bool, error) {
	res, err := r.db.Exec(
		"INSERT INTO open_alerts (location, status_line, opened_at) VALUES (?, ?, ?) ON CONFLICT(location) DO NOTHING",
		location, statusLine, time.Now(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to open alert for %s: %v", location, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check open alert result for %s: %v", location, err)
	}
	return affected > 0, nil
}

// CloseAlert clears the open alert for a location, if any
func (r *SQLiteReadingRepository) CloseAlert(location string) error {
	if _, err := r.db.Exec("DELETE FROM open_alerts WHERE location = ?", location); err != nil {
		return fmt.Errorf("failed to close alert for %s: %v", location, err)
	}
	return nil
}
