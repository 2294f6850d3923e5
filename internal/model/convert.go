package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/OCAP2/waypointsim/internal/geo"
	"github.com/OCAP2/waypointsim/pkg/core"
)

// RunFromCore converts a core.Run to its database row.
func RunFromCore(r *core.Run) (Run, error) {
	cfg, err := json.Marshal(r.Config)
	if err != nil {
		return Run{}, fmt.Errorf("failed to marshal mover config: %w", err)
	}
	return Run{
		VehicleID: r.VehicleID,
		MoverKind: r.MoverKind,
		Config:    cfg,
		TimeStep:  r.TimeStep,
		StartTime: r.StartTime,
	}, nil
}

// WaypointFromCore converts a core.Waypoint to its database row.
func WaypointFromCore(runID uint, w core.Waypoint) Waypoint {
	return Waypoint{
		RunID:    runID,
		Index:    w.Index,
		Name:     w.Name,
		Position: geo.ScenePoint(w.Position),
	}
}

// VehicleStateFromSample converts a core.Sample to its database row.
// start is the wall-clock start of the run; the row time is offset by the
// simulated time of the sample.
func VehicleStateFromSample(runID uint, start time.Time, s *core.Sample) VehicleState {
	return VehicleState{
		Time:        start.Add(time.Duration(s.SimTime * float64(time.Second))),
		RunID:       runID,
		Tick:        s.Tick,
		SimTime:     s.SimTime,
		VehicleID:   s.VehicleID,
		Position:    geo.ScenePoint(s.Position),
		Elevation:   s.Position.Y(),
		Heading:     s.Heading,
		Speed:       s.Speed,
		CurrentNode: s.CurrentNode,
		Advanced:    s.Advanced,
	}
}

// ToSample converts a stored row back into a core.Sample.
func (v *VehicleState) ToSample() core.Sample {
	pos, _ := geo.SceneVec(v.Position)
	return core.Sample{
		VehicleID:   v.VehicleID,
		Tick:        v.Tick,
		SimTime:     v.SimTime,
		Position:    pos,
		Heading:     v.Heading,
		Speed:       v.Speed,
		CurrentNode: v.CurrentNode,
		Advanced:    v.Advanced,
	}
}
