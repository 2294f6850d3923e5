package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/waypointsim/internal/config"
	"github.com/OCAP2/waypointsim/internal/model"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.PostgresConfig{
		Host:     "db.local",
		Port:     "5433",
		Username: "sim",
		Password: "secret",
		Database: "motion",
	})
	assert.Equal(t, "host=db.local port=5433 user=sim password=secret dbname=motion sslmode=disable", dsn)
}

func TestOpenSQLite_FileAndSetup(t *testing.T) {
	m := NewManager(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "sim.db")

	require.NoError(t, m.OpenSQLite(path))
	t.Cleanup(func() { _ = m.Close() })

	assert.True(t, m.IsValid)
	assert.False(t, m.InMemory)

	require.NoError(t, m.Setup())
	for _, mdl := range model.DatabaseModels {
		assert.True(t, m.DB.Migrator().HasTable(mdl))
	}
}

func TestSetup_NotOpened(t *testing.T) {
	m := NewManager(zerolog.Nop())
	assert.Error(t, m.Setup())
}

func TestDumpToDisk(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(zerolog.Nop())
	require.NoError(t, m.OpenSQLite(filepath.Join(dir, "live.db")))
	t.Cleanup(func() { _ = m.Close() })
	require.NoError(t, m.Setup())

	require.NoError(t, m.DB.Create(&model.Run{VehicleID: "car-1"}).Error)

	dump := filepath.Join(dir, "dump.db")
	require.NoError(t, os.WriteFile(dump, []byte("stale"), 0o644))
	require.NoError(t, m.DumpToDisk(dump))

	other := NewManager(zerolog.Nop())
	require.NoError(t, other.OpenSQLite(dump))
	t.Cleanup(func() { _ = other.Close() })

	var count int64
	require.NoError(t, other.DB.Model(&model.Run{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDumpToDisk_NoPath(t *testing.T) {
	m := NewManager(zerolog.Nop())
	assert.Error(t, m.DumpToDisk(""))
}

func TestClose_NotOpened(t *testing.T) {
	m := NewManager(zerolog.Nop())
	assert.NoError(t, m.Close())
}
