package storage

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/OCAP2/waypointsim/internal/config"
	"github.com/OCAP2/waypointsim/internal/influx"
	"github.com/OCAP2/waypointsim/internal/logging"
	influxstorage "github.com/OCAP2/waypointsim/internal/storage/influx"
	"github.com/OCAP2/waypointsim/internal/storage/memory"
	"github.com/OCAP2/waypointsim/internal/storage/postgres"
	sqlitestorage "github.com/OCAP2/waypointsim/internal/storage/sqlite"
)

// Dependencies are shared by the backends NewBackend can build.
type Dependencies struct {
	LogManager *logging.SlogManager
	// DBLogger is used by the database and InfluxDB managers.
	DBLogger zerolog.Logger
	// BackupDir receives the InfluxDB backup file when the server is down.
	BackupDir string
}

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, deps Dependencies) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(cfg.Postgres, deps.LogManager, deps.DBLogger), nil
	case "sqlite":
		return sqlitestorage.New(cfg.SQLite, deps.LogManager, deps.DBLogger), nil
	case "influx":
		backup := ""
		if deps.BackupDir != "" {
			backup = filepath.Join(deps.BackupDir, "influx_backup.lp.gz")
		}
		return influxstorage.New(influx.NewManager(deps.DBLogger, cfg.Influx, backup)), nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
