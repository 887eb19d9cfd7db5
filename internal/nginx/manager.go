package nginx

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/rjsears/n8n-nginx/backend/internal/logger"
	"github.com/rjsears/n8n-nginx/backend/internal/metrics"
	"github.com/rjsears/n8n-nginx/backend/internal/models"
)

// ErrReload wraps the collaborator's diagnostic when nginx rejects the
// generated config or the reload signal cannot be delivered.
var ErrReload = errors.New("nginx reload failed")

// Test hooks to allow overriding OS functions
var (
	writeFileFunc  = os.WriteFile
	readFileFunc   = os.ReadFile
	removeFileFunc = os.Remove
	readDirFunc    = os.ReadDir
	statFunc       = os.Stat
)

// Manager orchestrates the nginx ACL configuration lifecycle: generate,
// write, validate, reload, rollback on failure.
type Manager struct {
	reloader Reloader
	db       *gorm.DB
	confDir  string
}

// NewManager creates a configuration manager writing into confDir.
func NewManager(reloader Reloader, db *gorm.DB, confDir string) *Manager {
	return &Manager{reloader: reloader, db: db, confDir: confDir}
}

// ACLPath returns the path of the generated include file.
func (m *Manager) ACLPath() string {
	return filepath.Join(m.confDir, ACLFileName)
}

// Apply regenerates the geo block from the persisted ranges, writes it,
// validates it and signals a reload. On failure the previous file is
// restored so the running proxy never keeps a broken config. Applying twice
// with no intervening mutation produces an identical file both times.
func (m *Manager) Apply(ctx context.Context) error {
	var ranges []models.IPRange
	if err := m.db.Order("id asc").Find(&ranges).Error; err != nil {
		return fmt.Errorf("fetch ip ranges: %w", err)
	}

	content := Generate(ranges)
	configHash := fmt.Sprintf("%x", sha256.Sum256([]byte(content)))

	// Keep the previous file for rollback. Absent means first write.
	previous, prevErr := readFileFunc(m.ACLPath())
	hadPrevious := prevErr == nil

	if err := writeFileFunc(m.ACLPath(), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write acl config: %w", err)
	}

	if err := m.validateAndReload(ctx); err != nil {
		m.restore(previous, hadPrevious)
		m.recordEvent(configHash, false, err.Error())
		metrics.IncReloadFailure()
		return fmt.Errorf("%w: %v", ErrReload, err)
	}

	m.recordEvent(configHash, true, "")
	metrics.IncReload()
	metrics.SetConfiguredRanges(len(ranges))

	if err := m.saveSnapshot(content); err != nil {
		logger.Log().WithError(err).Warn("snapshot save failed")
	}
	if err := m.rotateSnapshots(10); err != nil {
		logger.Log().WithError(err).Warn("snapshot rotation failed")
	}

	return nil
}

// Ping checks whether the nginx collaborator accepts its current config.
func (m *Manager) Ping(ctx context.Context) error {
	return m.reloader.Test(ctx)
}

func (m *Manager) validateAndReload(ctx context.Context) error {
	if err := m.reloader.Test(ctx); err != nil {
		return err
	}
	return m.reloader.Reload(ctx)
}

// restore puts the pre-apply file state back after a failed reload.
func (m *Manager) restore(previous []byte, hadPrevious bool) {
	if hadPrevious {
		if err := writeFileFunc(m.ACLPath(), previous, 0o644); err != nil {
			logger.Log().WithError(err).Error("rollback write failed")
		}
		return
	}
	if err := removeFileFunc(m.ACLPath()); err != nil && !os.IsNotExist(err) {
		logger.Log().WithError(err).Error("rollback remove failed")
	}
}

// saveSnapshot stores the applied config to disk with timestamp.
func (m *Manager) saveSnapshot(content string) error {
	dir := filepath.Join(m.confDir, "snapshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure snapshot dir: %w", err)
	}

	filename := fmt.Sprintf("acl-%d.conf", time.Now().UnixNano())
	if err := writeFileFunc(filepath.Join(dir, filename), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// listSnapshots returns all snapshot file paths sorted by modification time.
func (m *Manager) listSnapshots() ([]string, error) {
	dir := filepath.Join(m.confDir, "snapshots")
	entries, err := readDirFunc(dir)
	if err != nil {
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}

	type snapshot struct {
		path    string
		modTime time.Time
	}
	var snapshots []snapshot
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".conf" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		// A snapshot can disappear between ReadDir and Stat; skip it.
		info, err := statFunc(path)
		if err != nil {
			continue
		}
		snapshots = append(snapshots, snapshot{path: path, modTime: info.ModTime()})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].modTime.Before(snapshots[j].modTime)
	})

	paths := make([]string, len(snapshots))
	for i, s := range snapshots {
		paths[i] = s.path
	}
	return paths, nil
}

// rotateSnapshots keeps only the N most recent snapshots.
func (m *Manager) rotateSnapshots(keep int) error {
	snapshots, err := m.listSnapshots()
	if err != nil {
		return err
	}

	if len(snapshots) <= keep {
		return nil
	}

	toDelete := snapshots[:len(snapshots)-keep]
	for _, path := range toDelete {
		if err := removeFileFunc(path); err != nil {
			return fmt.Errorf("delete snapshot %s: %w", path, err)
		}
	}

	return nil
}

// recordEvent stores an audit record in the database.
func (m *Manager) recordEvent(configHash string, success bool, errorMsg string) {
	record := models.NginxEvent{
		ConfigHash: configHash,
		AppliedAt:  time.Now(),
		Success:    success,
		ErrorMsg:   errorMsg,
	}

	// Best effort - don't fail the apply if audit logging fails
	m.db.Create(&record)
}
