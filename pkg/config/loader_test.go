package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestDecode_MergesOverlayAndSecrets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "db:\n  host: localhost\n  port: 5432\n  password: ${DB_PASS}\nserver:\n  port: \":8080\"\n")
	writeFile(t, dir, "staging.yaml", "db:\n  host: db.staging\n")
	writeFile(t, dir, "secrets.env", "# comment\nDB_PASS=\"s3cret\"\n")

	var out struct {
		DB     DBConfig     `yaml:"db"`
		Server ServerConfig `yaml:"server"`
	}
	require.NoError(t, Decode("staging", dir, &out))

	assert.Equal(t, "db.staging", out.DB.Host)
	assert.Equal(t, 5432, out.DB.Port)
	assert.Equal(t, "s3cret", out.DB.Password)
	assert.Equal(t, ":8080", out.Server.Port)
}

func TestDecode_MissingOverlayIsIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "jwt:\n  secret: dev\n")

	var out struct {
		JWT JWTConfig `yaml:"jwt"`
	}
	require.NoError(t, Decode("production", dir, &out))
	assert.Equal(t, "dev", out.JWT.Secret)
}

func TestLoadConfig_MissingBase(t *testing.T) {
	_, err := LoadConfig("local", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base.yaml")
}
