package storage

import "github.com/OCAP2/waypointsim/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Run management (StartRun assigns ID to the passed pointer)
	StartRun(run *core.Run) error
	EndRun() error

	// Route registration
	AddWaypoints(waypoints []core.Waypoint) error

	// State recording
	RecordSample(s *core.Sample) error
}

// Exporter is an optional interface for storage backends that produce a
// file per run.
type Exporter interface {
	ExportedFilePath() string
}
