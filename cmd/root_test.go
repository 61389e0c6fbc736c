package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/zjrosen/carreg/internal/config"
	"github.com/zjrosen/carreg/internal/registry"
	"github.com/zjrosen/carreg/internal/store"
	"github.com/zjrosen/carreg/internal/vehicle"
)

// isolate runs the test from an empty directory with no user config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("CARREG_DEBUG", "")
	t.Setenv("CARREG_LOG", "")
	return dir
}

func execute(t *testing.T, input string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetIn(strings.NewReader(input))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func seed(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, store.NewJSONFile(path).Save(context.Background(), map[string]vehicle.Vehicle{
		"AB12CDE": {Make: "Toyota", Model: "Corolla", Year: "2020"},
		"XY99ZZZ": {Make: "Ford", Model: "Focus", Year: "2011"},
	}))
}

func TestRoot_InteractiveSessionSaves(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "fleet.json")

	out, _, err := execute(t, "1\n1\nab12 cde\ntoyota\ncorolla\n2020\n5\n", "--data", path)
	require.NoError(t, err)
	require.Contains(t, out, "Car added successfully!")

	cars, err := store.NewJSONFile(path).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, vehicle.Vehicle{Make: "Toyota", Model: "Corolla", Year: "2020"}, cars["AB12CDE"])
}

func TestRoot_DefaultDataFileInWorkingDir(t *testing.T) {
	dir := isolate(t)

	_, _, err := execute(t, "5\n")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, store.DefaultDataFile))
	require.NoError(t, err, "exit writes the default database")
}

func TestList(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "car_data.json")
	seed(t, path)

	out, _, err := execute(t, "", "list", "--data", path)
	require.NoError(t, err)
	require.Contains(t, out, "--- All Cars in Database ---")
	require.Less(t, strings.Index(out, "AB12CDE"), strings.Index(out, "XY99ZZZ"))
}

func TestList_MissingDatabase(t *testing.T) {
	isolate(t)

	out, errOut, err := execute(t, "", "list")
	require.NoError(t, err)
	require.Contains(t, out, "Database is currently empty.")
	require.Contains(t, errOut, "No existing database found")
}

func TestFind(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "car_data.json")
	seed(t, path)

	out, _, err := execute(t, "", "find", "xy99 zzz", "--data", path)
	require.NoError(t, err)
	require.Contains(t, out, "Registration: XY99ZZZ")
	require.Contains(t, out, "Make: Ford")

	_, _, err = execute(t, "", "find", "AA11AAA", "--data", path)
	require.ErrorIs(t, err, registry.ErrNotFound)
}

func TestFind_RequiresOneArg(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "", "find")
	require.Error(t, err)
}

func TestExport_YAMLToStdout(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "car_data.json")
	seed(t, path)

	out, _, err := execute(t, "", "export", "--data", path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "AB12CDE:\n"), out)
	require.Contains(t, out, "  make: Toyota\n")
	require.Contains(t, out, "XY99ZZZ:\n")
}

func TestExport_XLSX(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "car_data.json")
	seed(t, path)
	target := filepath.Join(dir, "out", "cars.xlsx")

	out, _, err := execute(t, "", "export", "--format", "xlsx", "--out", target, "--data", path)
	require.NoError(t, err)
	require.Contains(t, out, "Exported 2 car(s)")

	f, err := excelize.OpenFile(target)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	rows, err := f.GetRows("Vehicles")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"AB12CDE", "Toyota", "Corolla", "2020"}, rows[1])
}

func TestExport_XLSXRequiresOut(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "", "export", "--format", "xlsx")
	require.ErrorContains(t, err, "--out is required")
}

func TestExport_UnknownFormat(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "", "export", "--format", "csv")
	require.ErrorContains(t, err, "unsupported export format")
}

func TestInitConfig(t *testing.T) {
	dir := isolate(t)

	out, _, err := execute(t, "", "init-config")
	require.NoError(t, err)
	require.Contains(t, out, localConfigPath)

	data, err := os.ReadFile(filepath.Join(dir, localConfigPath))
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfigTemplate(), string(data))

	_, _, err = execute(t, "", "init-config")
	require.ErrorContains(t, err, "already exists")

	_, _, err = execute(t, "", "init-config", "--force")
	require.NoError(t, err)
}

func TestInvalidBackend(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "", "list", "--backend", "postgres")
	require.ErrorContains(t, err, "invalid configuration")
}

func TestSentinelFromConfigFile(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("sentinel: q\n"), 0o600))

	out, _, err := execute(t, "3\nq\n5\n", "--config", cfgPath)
	require.NoError(t, err)
	require.Contains(t, out, "Enter registration to find or press q to quit: ")
}

func TestLocalConfigIsPickedUp(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".carreg"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, localConfigPath), []byte("data_file: local.json\n"), 0o600))

	_, _, err := execute(t, "5\n")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "local.json"))
	require.NoError(t, err)
}

func TestSentinelFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("CARREG_SENTINEL", "x")

	out, _, err := execute(t, "2\nx\n5\n")
	require.NoError(t, err)
	require.Contains(t, out, "Enter registration to delete or press x to quit: ")
}

func TestMemoryBackendWritesNothing(t *testing.T) {
	dir := isolate(t)

	out, _, err := execute(t, "1\n1\nAB12CDE\nToyota\nCorolla\n2020\n4\n5\n", "--backend", "memory")
	require.NoError(t, err)
	require.Contains(t, out, "Registration: AB12CDE")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSQLiteBackend(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "cars.db")

	_, _, err := execute(t, "1\n1\nAB12CDE\nToyota\nCorolla\n2020\n5\n", "--backend", "sqlite", "--data", path)
	require.NoError(t, err)

	out, _, err := execute(t, "", "find", "AB12CDE", "--backend", "sqlite", "--data", path)
	require.NoError(t, err)
	require.Contains(t, out, "Model: Corolla")
}

func TestDebugLoggingAcrossCommandTrees(t *testing.T) {
	dir := isolate(t)

	for range 2 {
		_, _, err := execute(t, "", "list", "--debug", "--backend", "memory")
		require.NoError(t, err)
	}

	data, err := os.ReadFile(filepath.Join(dir, config.DefaultLogPath))
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(string(data), "carreg starting"))
}
