// Package export writes the registry out in formats meant for people
// rather than for reloading: YAML and an Excel workbook.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/carreg/internal/log"
	"github.com/zjrosen/carreg/internal/vehicle"
)

// Format names accepted by Write.
const (
	FormatYAML = "yaml"
	FormatXLSX = "xlsx"
)

const sheetName = "Vehicles"

var header = []any{"Registration", "Make", "Model", "Year"}

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (must be %q or %q)", s, FormatYAML, FormatXLSX)
	}
}

// WriteFile exports entries to path in the given format.
func WriteFile(format, path string, entries []vehicle.Entry) error {
	format, err := ParseFormat(format)
	if err != nil {
		return err
	}
	log.Info(log.CatExport, "Exporting registry", "format", format, "path", path, "count", len(entries))

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	switch format {
	case FormatXLSX:
		return XLSX(path, entries)
	default:
		f, err := os.Create(path) //nolint:gosec // G304: export path is chosen by the user
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		if err := YAML(f, entries); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}
}

// YAML writes entries as a mapping of registration to record, in
// registration order.
func YAML(w io.Writer, entries []vehicle.Entry) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range entries {
		var value yaml.Node
		if err := value.Encode(e.Vehicle); err != nil {
			return fmt.Errorf("encoding %s: %w", e.Registration, err)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Registration},
			&value,
		)
	}
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshaling yaml: %w", err)
	}
	return enc.Close()
}

// XLSX writes entries to a single-sheet workbook with a bold header row.
func XLSX(path string, entries []vehicle.Entry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "D1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{e.Registration, e.Make, e.Model, e.Year}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing %s: %w", e.Registration, err)
		}
	}
	if err := f.SetColWidth(sheetName, "A", "D", 16); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		log.ErrorErr(log.CatExport, "Failed to save workbook", err, "path", path)
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
