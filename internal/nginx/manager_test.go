package nginx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rjsears/n8n-nginx/backend/internal/models"
)

type fakeReloader struct {
	testErr   error
	reloadErr error
	tests     int
	reloads   int
}

func (f *fakeReloader) Test(ctx context.Context) error {
	f.tests++
	return f.testErr
}

func (f *fakeReloader) Reload(ctx context.Context) error {
	f.reloads++
	return f.reloadErr
}

func setupManager(t *testing.T, reloader Reloader) (*Manager, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.IPRange{}, &models.NginxEvent{}))

	return NewManager(reloader, db, t.TempDir()), db
}

func TestManager_Apply_Success(t *testing.T) {
	reloader := &fakeReloader{}
	m, db := setupManager(t, reloader)

	require.NoError(t, db.Create(&models.IPRange{CIDR: "192.168.1.0/24", Description: "Home", AccessLevel: "internal"}).Error)

	require.NoError(t, m.Apply(context.Background()))

	content, err := os.ReadFile(m.ACLPath())
	require.NoError(t, err)
	assert.Contains(t, string(content), "192.168.1.0/24 1; # Home")

	assert.Equal(t, 1, reloader.tests)
	assert.Equal(t, 1, reloader.reloads)

	var events []models.NginxEvent
	require.NoError(t, db.Find(&events).Error)
	require.Len(t, events, 1)
	assert.True(t, events[0].Success)
	assert.NotEmpty(t, events[0].ConfigHash)
}

func TestManager_Apply_Idempotent(t *testing.T) {
	reloader := &fakeReloader{}
	m, db := setupManager(t, reloader)

	require.NoError(t, db.Create(&models.IPRange{CIDR: "10.0.0.0/8"}).Error)

	require.NoError(t, m.Apply(context.Background()))
	first, err := os.ReadFile(m.ACLPath())
	require.NoError(t, err)

	require.NoError(t, m.Apply(context.Background()))
	second, err := os.ReadFile(m.ACLPath())
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))

	// Both attempts recorded the same hash.
	var events []models.NginxEvent
	require.NoError(t, db.Find(&events).Error)
	require.Len(t, events, 2)
	assert.Equal(t, events[0].ConfigHash, events[1].ConfigHash)
}

func TestManager_Apply_ValidationFailureRollsBack(t *testing.T) {
	reloader := &fakeReloader{}
	m, db := setupManager(t, reloader)

	require.NoError(t, db.Create(&models.IPRange{CIDR: "10.0.0.0/8"}).Error)
	require.NoError(t, m.Apply(context.Background()))

	previous, err := os.ReadFile(m.ACLPath())
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.IPRange{CIDR: "192.168.0.0/16"}).Error)
	reloader.testErr = errors.New("unexpected end of file, expecting \"}\"")

	err = m.Apply(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReload)
	assert.Contains(t, err.Error(), "unexpected end of file")

	// Previous file restored.
	current, readErr := os.ReadFile(m.ACLPath())
	require.NoError(t, readErr)
	assert.Equal(t, string(previous), string(current))

	// Failure recorded with the diagnostic.
	var event models.NginxEvent
	require.NoError(t, db.Order("id desc").First(&event).Error)
	assert.False(t, event.Success)
	assert.Contains(t, event.ErrorMsg, "unexpected end of file")
}

func TestManager_Apply_FirstReloadFailureRemovesFile(t *testing.T) {
	reloader := &fakeReloader{reloadErr: errors.New("container not running")}
	m, db := setupManager(t, reloader)

	require.NoError(t, db.Create(&models.IPRange{CIDR: "10.0.0.0/8"}).Error)

	err := m.Apply(context.Background())
	assert.ErrorIs(t, err, ErrReload)

	_, statErr := os.Stat(m.ACLPath())
	assert.True(t, os.IsNotExist(statErr), "failed first apply must not leave a half-applied file")
}

func TestManager_RotateSnapshots(t *testing.T) {
	m, _ := setupManager(t, &fakeReloader{})

	dir := filepath.Join(m.confDir, "snapshots")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 13; i++ {
		path := filepath.Join(dir, fmt.Sprintf("acl-%d.conf", i))
		require.NoError(t, os.WriteFile(path, []byte("geo $n8n_access {}\n"), 0o644))
		ts := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, ts, ts))
	}

	require.NoError(t, m.rotateSnapshots(10))

	remaining, err := m.listSnapshots()
	require.NoError(t, err)
	require.Len(t, remaining, 10)

	// Oldest deleted, newest kept.
	assert.NotContains(t, remaining, filepath.Join(dir, "acl-0.conf"))
	assert.Contains(t, remaining, filepath.Join(dir, "acl-12.conf"))
}

func TestManager_ListSnapshots_SkipsVanishedFiles(t *testing.T) {
	m, _ := setupManager(t, &fakeReloader{})

	dir := filepath.Join(m.confDir, "snapshots")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, fmt.Sprintf("acl-%d.conf", i))
		require.NoError(t, os.WriteFile(path, []byte("geo $n8n_access {}\n"), 0o644))
	}

	// Simulate a snapshot removed between ReadDir and Stat.
	vanished := filepath.Join(dir, "acl-1.conf")
	origStat := statFunc
	statFunc = func(name string) (os.FileInfo, error) {
		if name == vanished {
			return nil, os.ErrNotExist
		}
		return origStat(name)
	}
	defer func() { statFunc = origStat }()

	snapshots, err := m.listSnapshots()
	require.NoError(t, err)
	assert.NotContains(t, snapshots, vanished)
	assert.Len(t, snapshots, 2)
}
