package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/carreg/internal/log"
	"github.com/zjrosen/carreg/internal/vehicle"
)

// DefaultSQLiteFile is the database used by the sqlite backend when no path is configured.
const DefaultSQLiteFile = "car_data.db"

const vehiclesSchema = `
CREATE TABLE IF NOT EXISTS vehicles (
	registration TEXT PRIMARY KEY,
	make TEXT NOT NULL,
	model TEXT NOT NULL,
	year TEXT NOT NULL
)`

// SQLite stores the registry in a single vehicles table.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite prepares a store at path. The file is not created until the
// first Save.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = DefaultSQLiteFile
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &SQLite{db: db, path: path}, nil
}

func openDB(path string) (*sql.DB, error) {
	log.Debug(log.CatStore, "Opening database", "path", path)
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		log.ErrorErr(log.CatStore, "Failed to open database", err, "path", path)
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer, no concurrent sessions.
	db.SetMaxOpenConns(1)
	return db, nil
}

// Exists reports whether the database file is present.
func (s *SQLite) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking database file: %w", err)
}

// Load reads every row of the vehicles table.
func (s *SQLite) Load(ctx context.Context) (map[string]vehicle.Vehicle, error) {
	cars := make(map[string]vehicle.Vehicle)

	exists, err := s.Exists(ctx)
	if err != nil {
		return cars, err
	}
	if !exists {
		log.Info(log.CatStore, "No database file", "path", s.path)
		return cars, fmt.Errorf("%s: %w", s.path, ErrNotExist)
	}

	if err := s.ensureSchema(ctx); err != nil {
		return cars, s.classify(err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT registration, make, model, year FROM vehicles`)
	if err != nil {
		return cars, s.classify(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var reg string
		var v vehicle.Vehicle
		if err := rows.Scan(&reg, &v.Make, &v.Model, &v.Year); err != nil {
			return make(map[string]vehicle.Vehicle), s.classify(err)
		}
		if err := checkRecord(reg, v); err != nil {
			log.ErrorErr(log.CatStore, "Invalid row", err, "path", s.path, "registration", reg)
			return make(map[string]vehicle.Vehicle), fmt.Errorf("%s: %w: %v", s.path, ErrCorrupt, err)
		}
		cars[reg] = v
	}
	if err := rows.Err(); err != nil {
		return make(map[string]vehicle.Vehicle), s.classify(err)
	}

	log.Info(log.CatStore, "Loaded database", "path", s.path, "count", len(cars))
	return cars, nil
}

// Save replaces every row in one transaction. A file that is not a SQLite
// database is discarded and recreated, matching the JSON store's
// whole-file overwrite.
func (s *SQLite) Save(ctx context.Context, cars map[string]vehicle.Vehicle) error {
	err := s.save(ctx, cars)
	if err != nil && isCorrupt(err) {
		log.Warn(log.CatStore, "Recreating unreadable database", "path", s.path)
		if rerr := s.recreate(); rerr != nil {
			return rerr
		}
		err = s.save(ctx, cars)
	}
	if err != nil {
		log.ErrorErr(log.CatStore, "Failed to save database", err, "path", s.path)
		return err
	}
	log.Debug(log.CatStore, "Saved database", "path", s.path, "count", len(cars))
	return nil
}

func (s *SQLite) save(ctx context.Context, cars map[string]vehicle.Vehicle) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vehicles`); err != nil {
		return fmt.Errorf("clearing vehicles: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO vehicles (registration, make, model, year) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for reg, v := range cars {
		if _, err := stmt.ExecContext(ctx, reg, v.Make, v.Model, v.Year); err != nil {
			return fmt.Errorf("inserting %s: %w", reg, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

func (s *SQLite) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, vehiclesSchema); err != nil {
		return fmt.Errorf("creating vehicles table: %w", err)
	}
	return nil
}

func (s *SQLite) recreate() error {
	_ = s.db.Close()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing unreadable database: %w", err)
	}
	db, err := openDB(s.path)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *SQLite) classify(err error) error {
	if isCorrupt(err) {
		log.ErrorErr(log.CatStore, "Database unreadable", err, "path", s.path)
		return fmt.Errorf("%s: %w: %v", s.path, ErrCorrupt, err)
	}
	return fmt.Errorf("reading database: %w", err)
}

func isCorrupt(err error) bool {
	return errors.Is(err, sqlite3.NOTADB) || errors.Is(err, sqlite3.CORRUPT)
}

// Location returns the database file path.
func (s *SQLite) Location() string { return s.path }

// Close closes the underlying connection pool.
func (s *SQLite) Close() error {
	return s.db.Close()
}
