// Package sqlitestorage implements the storage.Backend interface using a
// SQLite database, in memory or on disk, with periodic dumps via VACUUM INTO.
// It wraps the GORM backend via composition; the only SQLite-specific
// concerns are opening the database and the dump loop.
package sqlitestorage

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/OCAP2/waypointsim/internal/config"
	"github.com/OCAP2/waypointsim/internal/database"
	"github.com/OCAP2/waypointsim/internal/logging"
	gormstorage "github.com/OCAP2/waypointsim/internal/storage/gorm"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *database.Manager
	cfg      config.SQLiteConfig
	log      *logging.SlogManager
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new SQLite storage backend. The database is opened by Init.
func New(cfg config.SQLiteConfig, logManager *logging.SlogManager, dbLog zerolog.Logger) *Backend {
	if logManager == nil {
		logManager = logging.NewSlogManager()
	}
	return &Backend{
		db:  database.NewManager(dbLog),
		cfg: cfg,
		log: logManager,
	}
}

// Init opens the database, initializes the embedded GORM backend and starts
// the dump goroutine.
func (b *Backend) Init() error {
	if err := b.db.OpenSQLite(b.cfg.Path); err != nil {
		return fmt.Errorf("failed to open SQLite DB: %w", err)
	}

	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:         b.db.DB,
		LogManager: b.log,
	})
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.stopChan = make(chan struct{})
		b.done = make(chan struct{})
		go b.dumpLoop()
	}

	return nil
}

// EndRun closes the run and dumps the database when a dump path is set.
func (b *Backend) EndRun() error {
	if err := b.Backend.EndRun(); err != nil {
		return err
	}
	return b.dump()
}

// Close stops the dump goroutine, closes the embedded GORM backend and the
// connection.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		<-b.done
		b.stopChan = nil
	}
	if b.Backend != nil {
		if err := b.Backend.Close(); err != nil {
			return err
		}
	}
	return b.db.Close()
}

// ExportedFilePath returns the dump file, if any.
func (b *Backend) ExportedFilePath() string {
	return b.cfg.DumpPath
}

func (b *Backend) dump() error {
	if b.cfg.DumpPath == "" {
		return nil
	}
	if err := b.Flush(); err != nil {
		return err
	}
	return b.db.DumpToDisk(b.cfg.DumpPath)
}

// dumpLoop periodically dumps the SQLite database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := b.dump(); err != nil {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Error dumping to disk: %v", err), "ERROR")
			} else {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Dumped to disk in %s", time.Since(start)), "DEBUG")
			}
		}
	}
}
