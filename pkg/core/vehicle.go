// pkg/core/vehicle.go
package core

import "github.com/go-gl/mathgl/mgl64"

// DefaultArrivalThreshold is the planar distance under which a node counts as reached.
const DefaultArrivalThreshold = 0.1

// MotionState is the mutable per-vehicle simulation state.
// CurrentNode is the node just departed; the target is CurrentNode+1 (wrapped by
// the waypoint provider). CurrentNode itself is never wrapped, it counts
// advancements since the last reset.
type MotionState struct {
	Position             mgl64.Vec3
	Heading              float64    // degrees, not normalized
	Direction            mgl64.Vec3 // planar unit vector, zero when the target is degenerate
	Speed                float64
	CurrentNode          int
	PrevDistanceToTarget float64 // +Inf right after an advancement
}

// TargetNode returns the index of the node being driven to.
func (s MotionState) TargetNode() int {
	return s.CurrentNode + 1
}

// MoverConfig holds the immutable driving parameters of a vehicle.
type MoverConfig struct {
	MaxSpeed         float64 `json:"maxSpeed" mapstructure:"maxSpeed"`
	Acceleration     float64 `json:"acceleration" mapstructure:"acceleration"`
	SteeringRate     float64 `json:"steeringRate" mapstructure:"steeringRate"` // degrees per second
	ArrivalThreshold float64 `json:"arrivalThreshold" mapstructure:"arrivalThreshold"`
}

// Threshold returns the arrival threshold, falling back to DefaultArrivalThreshold
// when unset.
func (c MoverConfig) Threshold() float64 {
	if c.ArrivalThreshold <= 0 {
		return DefaultArrivalThreshold
	}
	return c.ArrivalThreshold
}

// Sample captures s as the result of tick number tick.
func (s MotionState) Sample(vehicleID string, tick uint, simTime float64, advanced bool) Sample {
	return Sample{
		VehicleID:   vehicleID,
		Tick:        tick,
		SimTime:     simTime,
		Position:    s.Position,
		Heading:     s.Heading,
		Speed:       s.Speed,
		CurrentNode: s.CurrentNode,
		Advanced:    advanced,
	}
}
