package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"API_BASE_URL", "API_TIMEOUT", "API_TOKEN", "API_TOKEN_SCHEME", "PORT",
		"REDIS_ADDR", "REDIS_PASS", "REDIS_DB", "DB_HOST", "DB_PORT", "DB_USER",
		"DB_PASS", "DB_NAME", "AWS_REGION", "LOG_LEVEL", "LOG_MODE", "WATCH_INTERVAL",
		"RESUMELENS_CONFIG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_YAMLThenEnvOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://api.example.com/
  timeout: 3s
redis:
  addr: localhost:6379
watch:
  interval: 10s
`), 0o600))

	t.Setenv("API_TIMEOUT", "7s")
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, 7*time.Second, cfg.API.Timeout)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Watch.Interval)
	assert.True(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Postgres.Enabled())
	assert.Equal(t, DefaultTokenScheme, cfg.API.TokenScheme)
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "http://localhost:8000")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.API.MaxBodyBytes)
	assert.Equal(t, DefaultWatchInterval, cfg.Watch.Interval)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing base url", func(t *testing.T) {
		clearEnv(t)
		_, err := Load("")
		assert.ErrorContains(t, err, "API_BASE_URL is required")
	})

	t.Run("relative base url", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("API_BASE_URL", "api/v1")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("API_BASE_URL", "http://localhost")
		t.Setenv("API_TIMEOUT", "soon")
		_, err := Load("")
		assert.ErrorContains(t, err, "API_TIMEOUT")
	})
}

func TestPostgresConfig_DSN(t *testing.T) {
	p := PostgresConfig{Host: "db", User: "u", Password: "p", Name: "resumes"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=resumes sslmode=disable", p.DSN())
}
