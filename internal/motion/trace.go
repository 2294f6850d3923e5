package motion

import (
	"iter"

	"github.com/OCAP2/waypointsim/internal/waypoint"
	"github.com/OCAP2/waypointsim/pkg/core"
)

// Trace samples the path m drives over p from the start position with a fixed
// step. The first sample is the reset state; each later one follows an Update.
// The sequence ends after one full lap, after maxIterations updates, or when
// the consumer stops. Ranging over it again starts over from the reset state.
// An empty provider or a non-positive step yields nothing.
func Trace(m Mover, p waypoint.Provider, step float64, maxIterations int) iter.Seq[core.Sample] {
	return func(yield func(core.Sample) bool) {
		s, err := ResetToStart(p)
		if err != nil || !validStep(step) {
			return
		}
		if !yield(s.Sample("", 0, 0, false)) {
			return
		}

		count := p.Count()
		for i := 1; i <= maxIterations && s.CurrentNode < count; i++ {
			prev := s.CurrentNode
			s, err = m.Update(s, step)
			if err != nil {
				return
			}
			if !yield(s.Sample("", uint(i), float64(i)*step, s.CurrentNode != prev)) {
				return
			}
		}
	}
}
