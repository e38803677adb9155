package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Level   string   `json:"level"`
	Workers int      `json:"workers"`
	Labels  []string `json:"labels"`
	Nested  struct {
		Port int `json:"port"`
	} `json:"nested"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestReadConfigMergesLocalOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.json5"), `{
		// comments and trailing commas are fine
		level: "info",
		workers: 4,
		nested: {port: 8080},
	}`)
	writeFile(t, filepath.Join(dir, "app.local.json5"), `{level: "debug"}`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "app.json5"))
	require.NoError(t, err)
	require.Equal(t, "debug", config.Level)
	require.Equal(t, 4, config.Workers)
	require.Equal(t, 8080, config.Nested.Port)
}

func TestReadConfigNotFound(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "missing.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadWithDefaults(t *testing.T) {
	defaults := testConfig{Level: "warn", Workers: 8, Labels: []string{"BVV"}}
	defaults.Nested.Port = 9000

	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	writeFile(t, filepath.Join(dir, "app.json5"), `{workers: 2, nested: {port: 8080}}`)
	t.Chdir(nested)

	config, err := ReadWithDefaults("app.json5", defaults)
	require.NoError(t, err)
	require.Equal(t, "warn", config.Level)
	require.Equal(t, 2, config.Workers)
	require.Equal(t, []string{"BVV"}, config.Labels)
	require.Equal(t, 8080, config.Nested.Port)

	config, err = ReadWithDefaults("other.json5", defaults)
	require.NoError(t, err)
	require.Equal(t, defaults, config)
}
