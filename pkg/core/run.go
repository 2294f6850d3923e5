// pkg/core/run.go
package core

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Run describes one recorded simulation run of a single vehicle.
type Run struct {
	ID        uint
	VehicleID string
	MoverKind string
	Config    MoverConfig
	TimeStep  float64
	StartTime time.Time
}

// Waypoint is a named node of the route, as stored alongside a run.
type Waypoint struct {
	Index    int
	Name     string
	Position mgl64.Vec3
}

// Sample is the vehicle state captured after one tick.
type Sample struct {
	VehicleID   string
	Tick        uint
	SimTime     float64 // seconds since reset
	Position    mgl64.Vec3
	Heading     float64
	Speed       float64
	CurrentNode int
	Advanced    bool // a node advancement happened during this tick
}
