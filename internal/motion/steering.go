package motion

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/OCAP2/waypointsim/internal/waypoint"
	"github.com/OCAP2/waypointsim/pkg/core"
)

// SteeringMover turns its heading toward the bearing of the target node by at
// most SteeringRate degrees per second, so node transitions become curves.
//
// The heading is never reduced back into [0, 360): it only moves toward an
// angle picked by ClosestAngle, which may itself lie outside that range, and
// so drifts by ±360 per lap. Use NormalizeHeading for display.
type SteeringMover struct {
	provider waypoint.Provider
	cfg      core.MoverConfig
}

// NewSteeringMover creates a SteeringMover over p.
func NewSteeringMover(p waypoint.Provider, cfg core.MoverConfig) *SteeringMover {
	return &SteeringMover{provider: p, cfg: cfg}
}

func (m *SteeringMover) Name() string { return SteeringKind }

// Update advances s by dt.
func (m *SteeringMover) Update(s core.MotionState, dt float64) (core.MotionState, error) {
	if err := checkProvider(m.provider); err != nil {
		return s, err
	}
	if !validStep(dt) {
		return s, nil
	}

	s, _ = Advance(s, m.provider, m.cfg.Threshold())
	s.Speed = Ramp(s.Speed, m.cfg, dt)

	bearing, ok := Bearing(s.Position, m.provider.Position(s.TargetNode()))
	if !ok {
		// Degenerate target on top of the vehicle: hold position and heading.
		s.Direction = mgl64.Vec3{}
		return s, nil
	}

	goal := ClosestAngle(s.Heading, bearing)
	s.Heading = StepAngle(s.Heading, goal, m.cfg.SteeringRate*dt)
	s.Direction = HeadingVector(s.Heading)
	s.Position = planarStep(s.Position, s.Direction, s.Speed*dt)
	return s, nil
}
