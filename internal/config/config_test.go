package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
env: prod
storage_path: /tmp/students.db
http_server:
  address: 0.0.0.0:9000
  max_body_bytes: 4096
client:
  api_url: http://example.com/api/students
  page_size: 10
  log_file: /tmp/client.log
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EnvProd, cfg.Env)
	assert.Equal(t, "/tmp/students.db", cfg.StoragePath)
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr)
	assert.Equal(t, int64(4096), cfg.MaxBodyBytes)
	assert.Equal(t, "http://example.com/api/students", cfg.Client.APIURL)
	assert.Equal(t, 10, cfg.Client.PageSize)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "env: dev\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8082", cfg.Addr)
	assert.Equal(t, int64(2<<20), cfg.MaxBodyBytes)
	assert.Equal(t, 22, cfg.Client.PageSize)
	assert.Equal(t, "http://localhost:8082/api/students", cfg.Client.APIURL)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("STUDENTS_API_URL", "https://mock.example.com/students")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://mock.example.com/students", cfg.Client.APIURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoad_InvalidEnv(t *testing.T) {
	path := writeConfig(t, "env: moon\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestClientConfig_Validate(t *testing.T) {
	c := ClientConfig{APIURL: "not a url", PageSize: 22}
	assert.Error(t, c.Validate())

	c = ClientConfig{APIURL: "http://localhost:8082/api/students", PageSize: 0}
	assert.Error(t, c.Validate())
}
