package motion

import (
	"math"

	"github.com/OCAP2/waypointsim/internal/waypoint"
	"github.com/OCAP2/waypointsim/pkg/core"
)

// Advance applies the node-advancement policy for one tick.
// The vehicle moves on to the next node when it is within threshold of the
// target, or when the distance to the target grew since the last tick (it
// drove past). After an advancement PrevDistanceToTarget is +Inf so the next
// tick only records a fresh baseline.
func Advance(s core.MotionState, p waypoint.Provider, threshold float64) (core.MotionState, bool) {
	d := PlanarDistance(s.Position, p.Position(s.TargetNode()))

	if d < threshold || d > s.PrevDistanceToTarget {
		s.CurrentNode++
		s.PrevDistanceToTarget = math.Inf(1)
		return s, true
	}

	s.PrevDistanceToTarget = d
	return s, false
}

// Ramp returns the speed after accelerating for dt, clamped to [0, MaxSpeed].
func Ramp(speed float64, cfg core.MoverConfig, dt float64) float64 {
	return math.Max(0, math.Min(speed+cfg.Acceleration*dt, cfg.MaxSpeed))
}

// validStep reports whether dt advances the simulation at all.
func validStep(dt float64) bool {
	return dt > 0 && !math.IsInf(dt, 1)
}
