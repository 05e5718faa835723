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
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "leads", cfg.Firebase.LeadsCollection)
	assert.Equal(t, "users", cfg.Firebase.UsersCollection)
	assert.Equal(t, 500, cfg.Reconcile.BatchSize)
	assert.Equal(t, 100, cfg.Demo.Limit)
	assert.Equal(t, []string{"test"}, cfg.Demo.Prefixes)
	assert.Contains(t, cfg.Demo.Tokens, "asdf")
	assert.Equal(t, "super_admin", cfg.Admin.Provision.Role)
	assert.Equal(t, "admin", cfg.Admin.Verify.Role)
	assert.Equal(t, 24*time.Hour, cfg.Plans.TTL)
	assert.False(t, cfg.Archive.Enabled)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Plans.Backend)
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
demo:
  tokens: [fake]
  limit: 25
archive:
  enabled: true
`), 0o600))
	t.Setenv("BCH_MYSQL_DSN", "user:pw@tcp(db:3306)/bch")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"fake"}, cfg.Demo.Tokens)
	assert.Equal(t, 25, cfg.Demo.Limit)
	assert.True(t, cfg.Archive.Enabled)
	assert.Equal(t, "user:pw@tcp(db:3306)/bch", cfg.MySQL.DSN)
	// untouched keys keep their defaults
	assert.Equal(t, []string{"test"}, cfg.Demo.Prefixes)
}
