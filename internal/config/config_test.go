package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/urban-match.db", cfg.DataSource())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Match.AgeSpread)
	assert.Equal(t, 120, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 15*time.Minute, cfg.Storage.URLExpiry)
	assert.Empty(t, cfg.Storage.Bucket)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("URBANMATCH_DATABASE_DRIVER", "Postgres")
	t.Setenv("URBANMATCH_DATABASE_DSN", "postgres://u:p@localhost/db")
	t.Setenv("URBANMATCH_MATCH_AGESPREAD", "7")
	t.Setenv("URBANMATCH_RATELIMIT_WINDOW", "30s")
	t.Setenv("URBANMATCH_STORAGE_BUCKET", "backups")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@localhost/db", cfg.DataSource())
	assert.Equal(t, 7, cfg.Match.AgeSpread)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "backups", cfg.Storage.Bucket)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("driver", func(t *testing.T) {
		t.Setenv("URBANMATCH_DATABASE_DRIVER", "oracle")
		_, err := Load()
		assert.ErrorContains(t, err, "unsupported database driver")
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		t.Setenv("URBANMATCH_DATABASE_DRIVER", "postgres")
		_, err := Load()
		assert.ErrorContains(t, err, "dsn is required")
	})

	t.Run("negative spread", func(t *testing.T) {
		t.Setenv("URBANMATCH_MATCH_AGESPREAD", "-1")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nURBANMATCH_TEST_A=\"quoted\"\nexport URBANMATCH_TEST_B=plain\nnot-a-pair\nURBANMATCH_TEST_C=from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("URBANMATCH_TEST_C", "from-env")
	t.Cleanup(func() {
		os.Unsetenv("URBANMATCH_TEST_A")
		os.Unsetenv("URBANMATCH_TEST_B")
	})

	loadDotEnv(path)

	assert.Equal(t, "quoted", os.Getenv("URBANMATCH_TEST_A"))
	assert.Equal(t, "plain", os.Getenv("URBANMATCH_TEST_B"))
	assert.Equal(t, "from-env", os.Getenv("URBANMATCH_TEST_C"))
}
