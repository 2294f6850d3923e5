// Package memory implements a storage.Backend that keeps the run in memory
// and exports it to a JSON file when the run ends.
package memory

import (
	"errors"
	"sync"

	"github.com/OCAP2/waypointsim/internal/config"
	"github.com/OCAP2/waypointsim/pkg/core"
)

// ErrNoRun is returned when recording before StartRun.
var ErrNoRun = errors.New("no run started")

// Backend stores run data in memory and exports to JSON
type Backend struct {
	cfg config.MemoryConfig
	run *core.Run

	waypoints []core.Waypoint
	samples   []core.Sample

	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg: cfg,
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartRun begins recording a new run
func (b *Backend) StartRun(run *core.Run) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	run.ID = b.idCounter
	b.run = run

	// Reset all collections
	b.waypoints = nil
	b.samples = nil

	return nil
}

// EndRun finalizes and exports the run data
func (b *Backend) EndRun() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run == nil {
		return ErrNoRun
	}
	if err := b.exportJSON(); err != nil {
		return err
	}
	b.run = nil
	return nil
}

// AddWaypoints stores the route of the current run
func (b *Backend) AddWaypoints(waypoints []core.Waypoint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run == nil {
		return ErrNoRun
	}
	b.waypoints = append(b.waypoints, waypoints...)
	return nil
}

// RecordSample appends a vehicle state to the current run
func (b *Backend) RecordSample(s *core.Sample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run == nil {
		return ErrNoRun
	}
	b.samples = append(b.samples, *s)
	return nil
}

// Samples returns a copy of the samples recorded for the current or last run.
func (b *Backend) Samples() []core.Sample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.Sample, len(b.samples))
	copy(out, b.samples)
	return out
}

// Waypoints returns a copy of the route recorded for the current or last run.
func (b *Backend) Waypoints() []core.Waypoint {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.Waypoint, len(b.waypoints))
	copy(out, b.waypoints)
	return out
}

// ExportedFilePath returns the path of the last exported file.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
