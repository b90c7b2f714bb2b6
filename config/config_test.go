package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoad_MergesOverlayAndEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
server:
  port: "8080"
jwt:
  secret: ${JWT_SECRET}
activity:
  default_page_size: 50
worker:
  dedup_ttl: 1h
`)
	writeFile(t, dir, "test.yaml", `
server:
  port: "9090"
`)
	writeFile(t, dir, "secrets.env", "JWT_SECRET=from-secrets\n")

	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("APP_DEV_MODE", "true")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "from-secrets", cfg.JWT.Secret)
	assert.True(t, cfg.App.DevMode)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, time.Hour, cfg.Worker.DedupTTL)
	assert.Equal(t, 3, cfg.Worker.MaxRetries)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 0, cfg.Activity.MaxPageSize)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate())

	cfg.JWT.Secret = "s"
	assert.NoError(t, cfg.Validate())

	cfg.Activity.MaxPageSize = 10
	assert.Error(t, cfg.Validate())

	cfg.Activity.MaxPageSize = 0
	assert.NoError(t, cfg.Validate())
}
