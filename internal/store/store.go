// Package store persists the vehicle registry. Every backend saves the
// whole registry on each call; there is no incremental write path.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/zjrosen/carreg/internal/vehicle"
)

var (
	// ErrNotExist means no database has been created yet.
	ErrNotExist = errors.New("database does not exist")
	// ErrCorrupt means a database exists but could not be decoded.
	ErrCorrupt = errors.New("database is corrupted")
)

// Backend names accepted by Open and the backend config key.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Store loads and saves a complete registry snapshot.
type Store interface {
	// Exists reports whether a database is present at the store location.
	Exists(ctx context.Context) (bool, error)
	// Load returns the stored records. It returns ErrNotExist or ErrCorrupt
	// (possibly wrapped) together with an empty, non-nil map.
	Load(ctx context.Context) (map[string]vehicle.Vehicle, error)
	// Save overwrites the stored records with cars.
	Save(ctx context.Context, cars map[string]vehicle.Vehicle) error
	// Location describes where data lives, for messages and logs.
	Location() string
	Close() error
}

// Open returns the store for backend at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return NewJSONFile(path), nil
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (must be %q, %q, or %q)", backend, BackendJSON, BackendSQLite, BackendMemory)
	}
}

// checkRecord rejects stored rows that Add could never have produced.
func checkRecord(reg string, v vehicle.Vehicle) error {
	if _, err := vehicle.ParseRegistration(reg); err != nil {
		return err
	}
	if _, err := vehicle.ParseDetail(v.Make); err != nil {
		return fmt.Errorf("make: %w", err)
	}
	if _, err := vehicle.ParseDetail(v.Model); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	if _, err := vehicle.ParseYear(v.Year); err != nil {
		return err
	}
	return nil
}
