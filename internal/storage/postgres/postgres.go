// Package postgres implements the storage.Backend interface on PostgreSQL
// through the GORM backend.
package postgres

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/OCAP2/waypointsim/internal/config"
	"github.com/OCAP2/waypointsim/internal/database"
	"github.com/OCAP2/waypointsim/internal/logging"
	gormstorage "github.com/OCAP2/waypointsim/internal/storage/gorm"
)

// Backend wraps the GORM backend with a Postgres connection.
type Backend struct {
	*gormstorage.Backend
	db  *database.Manager
	cfg config.PostgresConfig
	log *logging.SlogManager
}

// New creates a new Postgres storage backend. The connection is made by Init.
func New(cfg config.PostgresConfig, logManager *logging.SlogManager, dbLog zerolog.Logger) *Backend {
	if logManager == nil {
		logManager = logging.NewSlogManager()
	}
	return &Backend{
		db:  database.NewManager(dbLog),
		cfg: cfg,
		log: logManager,
	}
}

// Init connects, prepares the schema and starts the GORM backend.
func (b *Backend) Init() error {
	if err := b.db.OpenPostgres(b.cfg); err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	b.db.SqlDB.SetMaxOpenConns(10)

	if err := b.db.Setup(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:         b.db.DB,
		LogManager: b.log,
		BatchSize:  2000,
	})
	return b.Backend.Init()
}

// Close stops the GORM backend and closes the connection.
func (b *Backend) Close() error {
	if b.Backend != nil {
		if err := b.Backend.Close(); err != nil {
			return err
		}
	}
	return b.db.Close()
}
