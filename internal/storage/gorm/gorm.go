// Package gormstorage implements the storage.Backend interface on top of GORM
// with a batched vehicle state queue and a background flush goroutine.
// The sqlite and postgres backends wrap it and only add connection handling.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/OCAP2/waypointsim/internal/logging"
	"github.com/OCAP2/waypointsim/internal/model"
	"github.com/OCAP2/waypointsim/internal/queue"
	"github.com/OCAP2/waypointsim/pkg/core"
)

const (
	// DefaultBatchSize is the number of vehicle states written per insert.
	DefaultBatchSize = 500
	// DefaultFlushInterval is how often the background writer drains the queue.
	DefaultFlushInterval = 2 * time.Second
)

// ErrNoRun is returned when recording before StartRun.
var ErrNoRun = errors.New("no run started")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	LogManager    *logging.SlogManager
	BatchSize     int
	FlushInterval time.Duration
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps   Dependencies
	states *queue.Batch[model.VehicleState]

	runID     atomic.Uint64
	startTime time.Time
	written   atomic.Uint64

	flushMu  sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.BatchSize <= 0 {
		deps.BatchSize = DefaultBatchSize
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	return &Backend{
		deps:   deps,
		states: queue.New[model.VehicleState](deps.BatchSize),
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init migrates the schema and starts the background writer.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("no database connection")
	}
	if err := b.deps.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.wg.Add(1)
	go b.writeLoop()
	return nil
}

// Close stops the background writer and writes anything still queued.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		b.wg.Wait()
		b.stopChan = nil
	}
	if b.deps.DB == nil {
		return nil
	}
	return b.Flush()
}

func (b *Backend) writeLoop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.deps.LogManager.Component("gorm").Error("Failed to write vehicle states", "error", err)
			}
		}
	}
}

// StartRun inserts the run row and assigns its ID back to run.
func (b *Backend) StartRun(run *core.Run) error {
	row, err := model.RunFromCore(run)
	if err != nil {
		return err
	}
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert new run: %w", err)
	}

	run.ID = row.ID
	b.startTime = run.StartTime
	b.written.Store(0)
	b.runID.Store(uint64(row.ID))

	b.deps.LogManager.Logger().Info("Run started", "runId", row.ID, "vehicle", run.VehicleID)
	return nil
}

// AddWaypoints stores the route of the current run.
func (b *Backend) AddWaypoints(waypoints []core.Waypoint) error {
	runID := uint(b.runID.Load())
	if runID == 0 {
		return ErrNoRun
	}
	if len(waypoints) == 0 {
		return nil
	}

	rows := make([]model.Waypoint, len(waypoints))
	for i, w := range waypoints {
		rows[i] = model.WaypointFromCore(runID, w)
	}
	if err := b.deps.DB.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert waypoints: %w", err)
	}
	return nil
}

// RecordSample queues a vehicle state. A full batch is written immediately.
func (b *Backend) RecordSample(s *core.Sample) error {
	runID := uint(b.runID.Load())
	if runID == 0 {
		return ErrNoRun
	}
	if b.states.Push(model.VehicleStateFromSample(runID, b.startTime, s)) {
		return b.Flush()
	}
	return nil
}

// Flush writes all queued vehicle states. On failure the states are put back.
func (b *Backend) Flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	items := b.states.Drain()
	if len(items) == 0 {
		return nil
	}

	start := time.Now()
	if err := b.deps.DB.CreateInBatches(&items, b.deps.BatchSize).Error; err != nil {
		b.states.Requeue(items)
		return fmt.Errorf("failed to insert vehicle states: %w", err)
	}
	b.written.Add(uint64(len(items)))

	b.deps.LogManager.Logger().Debug("Wrote vehicle states",
		"count", len(items),
		"duration", time.Since(start))
	return nil
}

// EndRun writes queued states and closes the run row.
func (b *Backend) EndRun() error {
	runID := uint(b.runID.Load())
	if runID == 0 {
		return ErrNoRun
	}
	if err := b.Flush(); err != nil {
		return err
	}

	err := b.deps.DB.Model(&model.Run{}).Where("id = ?", runID).Updates(map[string]any{
		"end_time": time.Now(),
		"samples":  b.written.Load(),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to close run: %w", err)
	}

	b.runID.Store(0)
	b.deps.LogManager.Logger().Info("Run ended", "runId", runID, "samples", b.written.Load())
	return nil
}
