package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/zjrosen/carreg/internal/log"
	"github.com/zjrosen/carreg/internal/vehicle"
)

// DefaultDataFile is the JSON database used when no path is configured.
const DefaultDataFile = "car_data.json"

// registrySchema describes the on-disk document: an object keyed by plate
// whose values carry a non-blank make and model and a 4-digit year.
const registrySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "propertyNames": { "pattern": "^[A-Z]{2}[0-9]{2}\\s?[A-Z]{3}$" },
  "additionalProperties": {
    "type": "object",
    "required": ["make", "model", "year"],
    "additionalProperties": false,
    "properties": {
      "make":  { "type": "string", "pattern": "\\S" },
      "model": { "type": "string", "pattern": "\\S" },
      "year":  { "type": "string", "pattern": "^[0-9]{4}$" }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(registrySchema))
})

// JSONFile stores the registry as a pretty-printed JSON object.
type JSONFile struct {
	path string
}

// NewJSONFile returns a store for path, defaulting to DefaultDataFile.
func NewJSONFile(path string) *JSONFile {
	if path == "" {
		path = DefaultDataFile
	}
	return &JSONFile{path: path}
}

// Exists reports whether the data file is present.
func (s *JSONFile) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking data file: %w", err)
}

// Load reads and validates the data file.
func (s *JSONFile) Load(ctx context.Context) (map[string]vehicle.Vehicle, error) {
	cars := make(map[string]vehicle.Vehicle)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info(log.CatStore, "No data file", "path", s.path)
			return cars, fmt.Errorf("%s: %w", s.path, ErrNotExist)
		}
		return cars, fmt.Errorf("reading data file: %w", err)
	}

	if err := validateDocument(data); err != nil {
		log.ErrorErr(log.CatStore, "Data file failed validation", err, "path", s.path)
		return make(map[string]vehicle.Vehicle), fmt.Errorf("%s: %w: %v", s.path, ErrCorrupt, err)
	}
	if err := json.Unmarshal(data, &cars); err != nil {
		log.ErrorErr(log.CatStore, "Data file failed to decode", err, "path", s.path)
		return make(map[string]vehicle.Vehicle), fmt.Errorf("%s: %w: %v", s.path, ErrCorrupt, err)
	}

	log.Info(log.CatStore, "Loaded data file", "path", s.path, "count", len(cars))
	return cars, nil
}

func validateDocument(data []byte) error {
	if !json.Valid(data) {
		return errors.New("not valid JSON")
	}
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}

// Save overwrites the data file with cars, indented by four spaces.
func (s *JSONFile) Save(ctx context.Context, cars map[string]vehicle.Vehicle) error {
	if cars == nil {
		cars = map[string]vehicle.Vehicle{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cars); err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // G306: data file is meant to be readable
		log.ErrorErr(log.CatStore, "Failed to write data file", err, "path", s.path)
		return fmt.Errorf("writing data file: %w", err)
	}

	log.Debug(log.CatStore, "Saved data file", "path", s.path, "count", len(cars))
	return nil
}

// Location returns the data file path.
func (s *JSONFile) Location() string { return s.path }

// Close is a no-op; the file is not held open.
func (s *JSONFile) Close() error { return nil }
