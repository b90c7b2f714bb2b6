package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digihub/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DBConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n"})
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", dsn)

	dsn = DSN(config.DBConfig{Host: "h", Port: 1, User: "u", Password: "p", Name: "n", SSLMode: "require"})
	assert.Contains(t, dsn, "sslmode=require")
}

func TestMigrationFiles_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.up.sql", "001_a.up.sql", "001_a.down.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.up.sql"), 0o755))

	files, err := MigrationFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "001_a.up.sql", filepath.Base(files[0]))
	assert.Equal(t, "002_b.up.sql", filepath.Base(files[1]))
}

func TestMigrationFiles_RepositorySchema(t *testing.T) {
	files, err := MigrationFiles(filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	contents, err := os.ReadFile(files[0])
	require.NoError(t, err)
	for _, table := range []string{"users", "activity_logs", "comments", "outbox_events", "notifications"} {
		assert.Contains(t, string(contents), "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, string(contents), "REFERENCES comments(id) ON DELETE CASCADE")
}

func TestTruncateSQL(t *testing.T) {
	assert.Equal(t, "abc", truncateSQL("abc", 5))
	assert.Equal(t, "ab...", truncateSQL("abcdef", 2))
}
