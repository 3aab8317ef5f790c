package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
env: "prod"
source:
  kind: "sqlite"
  path: "storage/students.db"
store:
  strict: true
http_server:
  address: "0.0.0.0:8080"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, SourceSQLite, cfg.Source.Kind)
	assert.Equal(t, "storage/students.db", cfg.Source.Path)
	assert.True(t, cfg.Store.Strict)
	assert.False(t, cfg.Metrics.Disabled)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
}

func TestLoadDefaultsSourceKind(t *testing.T) {
	path := writeConfig(t, `
env: "dev"
source:
  path: "data/students.json"
http_server:
  address: "localhost:8082"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceJSON, cfg.Source.Kind)
	assert.False(t, cfg.Store.Strict)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
env: "dev"
source:
  path: "data/students.json"
http_server:
  address: "localhost:8082"
`)
	t.Setenv("HTTP_SERVER_ADDR", "localhost:9999")
	t.Setenv("STORE_STRICT", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9999", cfg.Addr)
	assert.True(t, cfg.Store.Strict)
}

func TestLoadRejectsUnknownSourceKind(t *testing.T) {
	path := writeConfig(t, `
env: "dev"
source:
  kind: "postgres"
  path: "x"
http_server:
  address: "localhost:8082"
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown source kind")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "does not exist")
}

func TestLoadSampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "local.yaml"))
	require.NoError(t, err)
	assert.Equal(t, SourceJSON, cfg.Source.Kind)
}
