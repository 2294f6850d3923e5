package main

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/OCAP2/waypointsim/internal/config"
	"github.com/OCAP2/waypointsim/internal/geo"
	"github.com/OCAP2/waypointsim/internal/motion"
	"github.com/OCAP2/waypointsim/pkg/core"
)

func cmdTrace(a *app) error {
	route, err := loadRoute()
	if err != nil {
		return err
	}
	mover, err := motion.New(config.GetMoverKind(), route, config.GetMoverConfig())
	if err != nil {
		return err
	}

	simCfg := config.GetSimConfig()
	var samples []core.Sample
	for s := range motion.Trace(mover, route, simCfg.TimeStep, simCfg.MaxIterations) {
		samples = append(samples, s)
	}
	if len(samples) < 2 {
		return fmt.Errorf("trace produced %d samples, need at least 2 waypoints and a positive time step", len(samples))
	}
	a.log.Info("Trace computed", "samples", len(samples), "mover", mover.Name())

	local := geo.TraceLineString(samples)
	fmt.Fprintf(a.stdout, "samples: %d\nlength: %.3f\n", len(samples), local.Length())
	fmt.Fprintf(a.stdout, "wkt: %s\n", local.AsText())

	origin := config.GetGeoOrigin()
	projector := geo.NewProjector(origin.Lon, origin.Lat)
	points := make([]mgl64.Vec3, len(samples))
	for i, s := range samples {
		points[i] = s.Position
	}
	ls, err := projector.LineString(points)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(ls)
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	fmt.Fprintf(a.stdout, "geojson: %s\n", raw)
	return nil
}
