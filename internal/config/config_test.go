package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "FastNotes API", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "notes.db", cfg.Database.Name)
	assert.Equal(t, 50, cfg.Pagination.DefaultLimit)
	assert.Equal(t, 200, cfg.Pagination.MaxLimit)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("NOTES_DATABASE_DRIVER", "postgres")
	t.Setenv("NOTES_PAGINATION_MAX_LIMIT", "500")
	t.Setenv("NOTES_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("HTTP_PORT", "7000")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 500, cfg.Pagination.MaxLimit)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr, "explicit address beats HTTP_PORT")
}

func TestLoad_LegacyVariables(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USERNAME", "notes")
	t.Setenv("DB_DATABASE", "fastnotes")
	t.Setenv("HTTP_PORT", "7000")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "notes", cfg.Database.User)
	assert.Equal(t, "fastnotes", cfg.Database.Name)
	assert.Equal(t, ":7000", cfg.HTTP.Addr)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9999"
  cors_allowed_origins: ["https://notes.example.com"]
database:
  driver: sqlite
  name: /tmp/other.db
pagination:
  default_limit: 10
  max_limit: 20
`), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, []string{"https://notes.example.com"}, cfg.HTTP.CORSAllowedOrigins)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Name)
	assert.Equal(t, 10, cfg.Pagination.DefaultLimit)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":        {"NOTES_DATABASE_DRIVER": "oracle"},
		"zero default limit":    {"NOTES_PAGINATION_DEFAULT_LIMIT": "0"},
		"max below the default": {"NOTES_PAGINATION_MAX_LIMIT": "10"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}

			_, err := Load("")

			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
}
