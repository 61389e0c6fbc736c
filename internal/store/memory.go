package store

import (
	"context"

	"github.com/zjrosen/carreg/internal/vehicle"
)

// Memory keeps nothing between runs. Load always starts empty and Save is a no-op.
type Memory struct{}

// NewMemory returns a store with no persistence.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Exists(ctx context.Context) (bool, error) { return false, nil }

func (m *Memory) Load(ctx context.Context) (map[string]vehicle.Vehicle, error) {
	return make(map[string]vehicle.Vehicle), ErrNotExist
}

func (m *Memory) Save(ctx context.Context, cars map[string]vehicle.Vehicle) error { return nil }

func (m *Memory) Location() string { return "memory" }

func (m *Memory) Close() error { return nil }
