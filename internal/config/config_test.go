package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("N8N_MGR_DB_PATH", filepath.Join(dir, "data", "manager.db"))
	t.Setenv("N8N_MGR_NGINX_CONF_DIR", filepath.Join(dir, "nginx"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "docker", cfg.NginxReloadMode)
	assert.Equal(t, "nginx", cfg.NginxContainer)
	assert.Equal(t, "@every 5m", cfg.ReconcileSchedule)

	// Data directories are created so the server can boot cold.
	assert.DirExists(t, filepath.Join(dir, "data"))
	assert.DirExists(t, filepath.Join(dir, "nginx"))
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("N8N_MGR_DB_PATH", filepath.Join(dir, "manager.db"))
	t.Setenv("N8N_MGR_NGINX_CONF_DIR", filepath.Join(dir, "conf.d"))
	t.Setenv("N8N_MGR_ENV", "production")
	t.Setenv("N8N_MGR_HTTP_PORT", "9090")
	t.Setenv("N8N_MGR_NGINX_RELOAD_MODE", "command")
	t.Setenv("N8N_MGR_RECONCILE_SCHEDULE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "command", cfg.NginxReloadMode)
	// Empty value falls through to the default: env vars unset and empty
	// are treated the same.
	assert.Equal(t, "@every 5m", cfg.ReconcileSchedule)
}
