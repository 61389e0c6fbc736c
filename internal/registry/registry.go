// Package registry holds the in-memory collection of vehicle records keyed
// by registration. A Registry is owned by a single session and passed
// explicitly to every operation; it does no locking.
package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/zjrosen/carreg/internal/log"
	"github.com/zjrosen/carreg/internal/vehicle"
)

var (
	ErrDuplicate = errors.New("registration already exists")
	ErrNotFound  = errors.New("registration not found")
)

// Registry maps canonical registrations to vehicle records.
type Registry struct {
	cars map[string]vehicle.Vehicle
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{cars: make(map[string]vehicle.Vehicle)}
}

// FromMap builds a registry from decoded storage data. Keys are
// normalized; when two keys collapse to the same registration the first
// in sorted order wins.
func FromMap(m map[string]vehicle.Vehicle) *Registry {
	r := New()
	r.Replace(m)
	return r
}

// Add inserts a record. raw must be a valid plate; existing keys are never
// overwritten.
func (r *Registry) Add(raw string, v vehicle.Vehicle) (string, error) {
	key, err := vehicle.ParseRegistration(raw)
	if err != nil {
		return "", err
	}
	if _, exists := r.cars[key]; exists {
		return key, fmt.Errorf("%w: %s", ErrDuplicate, key)
	}
	r.cars[key] = v
	log.Debug(log.CatRegistry, "Added vehicle", "registration", key, "count", len(r.cars))
	return key, nil
}

// Contains reports whether raw (in any case or spacing) is registered.
func (r *Registry) Contains(raw string) bool {
	_, ok := r.cars[vehicle.NormalizeRegistration(raw)]
	return ok
}

// Find returns the record for raw.
func (r *Registry) Find(raw string) (vehicle.Vehicle, error) {
	key := vehicle.NormalizeRegistration(raw)
	v, ok := r.cars[key]
	if !ok {
		return vehicle.Vehicle{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return v, nil
}

// Delete removes raw and returns the canonical key that was removed.
// A missing key leaves the registry unchanged.
func (r *Registry) Delete(raw string) (string, error) {
	key := vehicle.NormalizeRegistration(raw)
	if _, ok := r.cars[key]; !ok {
		return key, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	delete(r.cars, key)
	log.Debug(log.CatRegistry, "Deleted vehicle", "registration", key, "count", len(r.cars))
	return key, nil
}

// List returns every record ordered by registration.
func (r *Registry) List() []vehicle.Entry {
	keys := slices.Sorted(maps.Keys(r.cars))
	entries := make([]vehicle.Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, vehicle.Entry{Registration: k, Vehicle: r.cars[k]})
	}
	return entries
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.cars)
}

// Reset discards every record.
func (r *Registry) Reset() {
	r.cars = make(map[string]vehicle.Vehicle)
	log.Debug(log.CatRegistry, "Registry reset")
}

// Replace swaps the contents for m.
func (r *Registry) Replace(m map[string]vehicle.Vehicle) {
	cars := make(map[string]vehicle.Vehicle, len(m))
	for _, raw := range slices.Sorted(maps.Keys(m)) {
		key := vehicle.NormalizeRegistration(raw)
		if _, dup := cars[key]; dup {
			log.Warn(log.CatRegistry, "Dropping duplicate registration", "raw", raw, "registration", key)
			continue
		}
		cars[key] = m[raw]
	}
	r.cars = cars
}

// Snapshot returns a copy of the records suitable for persisting.
func (r *Registry) Snapshot() map[string]vehicle.Vehicle {
	return maps.Clone(r.cars)
}
