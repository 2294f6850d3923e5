package motion

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/OCAP2/waypointsim/internal/waypoint"
	"github.com/OCAP2/waypointsim/pkg/core"
)

// DirectMover drives in a straight line toward the target node and turns
// instantly whenever it moves on to the next one.
type DirectMover struct {
	provider waypoint.Provider
	cfg      core.MoverConfig
}

// NewDirectMover creates a DirectMover over p.
func NewDirectMover(p waypoint.Provider, cfg core.MoverConfig) *DirectMover {
	return &DirectMover{provider: p, cfg: cfg}
}

func (m *DirectMover) Name() string { return DirectKind }

// Update advances s by dt. Direction is only recomputed on a node advancement,
// so between nodes the vehicle moves exactly Speed*dt along a fixed vector.
func (m *DirectMover) Update(s core.MotionState, dt float64) (core.MotionState, error) {
	if err := checkProvider(m.provider); err != nil {
		return s, err
	}
	if !validStep(dt) {
		return s, nil
	}

	var advanced bool
	s, advanced = Advance(s, m.provider, m.cfg.Threshold())
	if advanced {
		face(&s, m.provider.Position(s.TargetNode()))
	}

	s.Speed = Ramp(s.Speed, m.cfg, dt)
	s.Position = planarStep(s.Position, s.Direction, s.Speed*dt)
	return s, nil
}

// planarStep moves pos along dir by dist on the x/z plane, keeping its height.
func planarStep(pos, dir mgl64.Vec3, dist float64) mgl64.Vec3 {
	return mgl64.Vec3{
		pos.X() + dir.X()*dist,
		pos.Y(),
		pos.Z() + dir.Z()*dist,
	}
}
