package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.json"))
	for _, key := range []string{"PORT", "LOG_LEVEL", "OMDB_API_KEY", "DATA_SOURCE_HOST", "WORKER_MAX_POOL_SIZE"} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "www.omdbapi.com", cfg.DataSource.Host)
	assert.Equal(t, "short", cfg.DefaultPlot)
	assert.Equal(t, "json", cfg.FormatValues["docx"])
	assert.Equal(t, "—", cfg.Document.MissingValue)
	assert.True(t, cfg.IsDocumentFormat("docx"))
	assert.False(t, cfg.IsDocumentFormat("DOCX"))
	assert.False(t, cfg.IsDocumentFormat(" docx"))
}

func TestLoadJSONFileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port":"6000","data_source":{"api_key":"fromfile"}}`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("OMDB_API_KEY", "fromenv1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "6000", cfg.Port)
	assert.Equal(t, "fromenv1", cfg.DataSource.APIKey)
	// nested defaults survive a partial file
	assert.Equal(t, "t", cfg.DataSource.Params.Title)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	yml := "async:\n  core_pool_size: 2\n  max_pool_size: 3\ndocument:\n  ratings_anchor: Rotten\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Async.CorePoolSize)
	assert.Equal(t, 3, cfg.Async.MaxPoolSize)
	assert.Equal(t, "Rotten", cfg.Document.RatingsAnchor)
}

func TestFileEnumValuesReplaceDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"format_values":{"json":"json","docx":"json"}}`), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"json": "json", "docx": "json"}, cfg.FormatValues)
	assert.Contains(t, cfg.PlotValues, "full", "maps absent from the file keep their defaults")
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DATA_SOURCE_HOST=omdb.internal\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	// godotenv never overrides a variable that exists, even when empty
	require.NoError(t, os.Unsetenv("DATA_SOURCE_HOST"))
	t.Cleanup(func() { os.Unsetenv("DATA_SOURCE_HOST") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "omdb.internal", cfg.DataSource.Host)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(c *Config){
		"unknown default plot": func(c *Config) { c.DefaultPlot = "medium" },
		"max below core":       func(c *Config) { c.Async.MaxPoolSize = 1; c.Async.CorePoolSize = 2 },
		"empty host":           func(c *Config) { c.DataSource.Host = "" },
		"zero cache":           func(c *Config) { c.Cache.BodiesMaxSize = 0 },
		"missing param name":   func(c *Config) { c.DataSource.Params.APIKey = "" },
		"empty ratings anchor": func(c *Config) { c.Document.RatingsAnchor = " " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestInvalidIntegerEnv(t *testing.T) {
	isolate(t)
	t.Setenv("WORKER_MAX_POOL_SIZE", "many")

	_, err := Load()
	assert.ErrorContains(t, err, "WORKER_MAX_POOL_SIZE")
}
