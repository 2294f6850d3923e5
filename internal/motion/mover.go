// Package motion implements the per-tick waypoint-following algorithms.
//
// A Mover turns a MotionState into the next one for a time step. Both movers
// share the node-advancement policy and the speed ramp and only differ in how
// they orient the vehicle: DirectMover snaps to face each new target,
// SteeringMover turns toward it at a bounded rate.
package motion

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/OCAP2/waypointsim/internal/waypoint"
	"github.com/OCAP2/waypointsim/pkg/core"
)

// Mover kinds accepted by New.
const (
	DirectKind   = "direct"
	SteeringKind = "steering"
)

// Mover advances a vehicle's motion state by one tick.
// Update never panics: an empty provider yields a *ConfigurationError and a
// non-positive dt returns the state unchanged.
type Mover interface {
	Name() string
	Update(s core.MotionState, dt float64) (core.MotionState, error)
}

// New builds the mover of the given kind over provider p.
func New(kind string, p waypoint.Provider, cfg core.MoverConfig) (Mover, error) {
	switch kind {
	case DirectKind:
		return NewDirectMover(p, cfg), nil
	case SteeringKind:
		return NewSteeringMover(p, cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMover, kind)
	}
}

// ResetToStart places a vehicle on node 0 facing node 1 at rest.
func ResetToStart(p waypoint.Provider) (core.MotionState, error) {
	if err := checkProvider(p); err != nil {
		return core.MotionState{}, err
	}

	s := core.MotionState{
		Position:             p.Position(0),
		PrevDistanceToTarget: math.Inf(1),
	}
	face(&s, p.Position(1))
	return s, nil
}

// face points s directly at target. Heading is kept when target sits on the
// vehicle's planar position.
func face(s *core.MotionState, target mgl64.Vec3) {
	dir, ok := PlanarDirection(s.Position, target)
	s.Direction = dir
	if !ok {
		return
	}
	s.Heading, _ = Bearing(s.Position, target)
}
