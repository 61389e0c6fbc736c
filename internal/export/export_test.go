package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/carreg/internal/vehicle"
)

var entries = []vehicle.Entry{
	{Registration: "AB12CDE", Vehicle: vehicle.Vehicle{Make: "Toyota", Model: "Corolla", Year: "2020"}},
	{Registration: "XY99ZZZ", Vehicle: vehicle.Vehicle{Make: "Ford", Model: "Focus", Year: "2011"}},
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]string{"yaml": FormatYAML, "YML": FormatYAML, " xlsx ": FormatXLSX, "excel": FormatXLSX} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseFormat("csv")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported export format")
}

func TestYAML_PreservesOrderAndFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, YAML(&buf, entries))

	out := buf.String()
	require.Less(t, bytes.Index(buf.Bytes(), []byte("AB12CDE")), bytes.Index(buf.Bytes(), []byte("XY99ZZZ")))
	require.Contains(t, out, "make: Toyota")
	require.Contains(t, out, `year: "2020"`, "years stay strings")

	var decoded map[string]vehicle.Vehicle
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, entries[0].Vehicle, decoded["AB12CDE"])
	require.Equal(t, entries[1].Vehicle, decoded["XY99ZZZ"])
}

func TestYAML_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, YAML(&buf, nil))
	require.Equal(t, "{}\n", buf.String())
}

func TestWriteFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.yaml")
	require.NoError(t, WriteFile("yaml", path, entries))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "AB12CDE:")
}

func TestWriteFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.xlsx")
	require.NoError(t, WriteFile("xlsx", path, entries))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	require.Equal(t, []string{sheetName}, f.GetSheetList())
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"Registration", "Make", "Model", "Year"},
		{"AB12CDE", "Toyota", "Corolla", "2020"},
		{"XY99ZZZ", "Ford", "Focus", "2011"},
	}, rows)
}

func TestWriteFile_UnknownFormat(t *testing.T) {
	err := WriteFile("pdf", filepath.Join(t.TempDir(), "x.pdf"), entries)
	require.Error(t, err)
}
