package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment  string
	HTTPPort     string
	DatabasePath string
	FrontendDir  string

	// JWTSecret signs API session tokens. Auto-generated at first boot when
	// empty (see auth service).
	JWTSecret string

	// Nginx collaborator settings.
	NginxConfDir    string // directory the ACL include files are written to
	NginxReloadMode string // "docker" or "command"
	NginxContainer  string // container name for docker reload mode
	NginxBinary     string // nginx binary for command reload mode

	// ReconcileSchedule is a cron spec for the periodic drift check that
	// re-applies the ACL config. Empty disables the job.
	ReconcileSchedule string
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:       getEnv("N8N_MGR_ENV", "development"),
		HTTPPort:          getEnv("N8N_MGR_HTTP_PORT", "8080"),
		DatabasePath:      getEnv("N8N_MGR_DB_PATH", filepath.Join("data", "manager.db")),
		FrontendDir:       getEnv("N8N_MGR_FRONTEND_DIR", filepath.Clean(filepath.Join("..", "frontend", "dist"))),
		JWTSecret:         getEnv("N8N_MGR_JWT_SECRET", ""),
		NginxConfDir:      getEnv("N8N_MGR_NGINX_CONF_DIR", filepath.Join("data", "nginx")),
		NginxReloadMode:   getEnv("N8N_MGR_NGINX_RELOAD_MODE", "docker"),
		NginxContainer:    getEnv("N8N_MGR_NGINX_CONTAINER", "nginx"),
		NginxBinary:       getEnv("N8N_MGR_NGINX_BINARY", "nginx"),
		ReconcileSchedule: getEnv("N8N_MGR_RECONCILE_SCHEDULE", "@every 5m"),
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.NginxConfDir, 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure nginx conf directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}
