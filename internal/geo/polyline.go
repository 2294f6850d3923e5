package geo

import (
	"fmt"

	"github.com/OCAP2/waypointsim/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
	geom "github.com/peterstace/simplefeatures/geom"
)

// RouteLineString builds a LineString through the waypoints in order.
// With closed set the first waypoint is repeated at the end to form the lap.
func RouteLineString(points []mgl64.Vec3, closed bool) (geom.LineString, error) {
	if len(points) < 2 {
		return geom.LineString{}, fmt.Errorf("route must have at least 2 points, got %d", len(points))
	}

	route := points
	if closed {
		route = append(append(make([]mgl64.Vec3, 0, len(points)+1), points...), points[0])
	}
	return sceneLineString(route), nil
}

// TraceLineString builds the path driven by a sequence of samples.
// Fewer than two samples give an empty LineString.
func TraceLineString(samples []core.Sample) geom.LineString {
	if len(samples) < 2 {
		return geom.LineString{}
	}
	points := make([]mgl64.Vec3, len(samples))
	for i, s := range samples {
		points[i] = s.Position
	}
	return sceneLineString(points)
}

// LineString projects scene positions to an EPSG:4326 LineString.
func (p Projector) LineString(points []mgl64.Vec3) (geom.LineString, error) {
	if len(points) < 2 {
		return geom.LineString{}, fmt.Errorf("line must have at least 2 points, got %d", len(points))
	}
	flatCoords := make([]float64, 0, len(points)*3)
	for _, v := range points {
		lon, lat := p.LonLat(v)
		flatCoords = append(flatCoords, lon, lat, v.Y())
	}
	return geom.NewLineString(geom.NewSequence(flatCoords, geom.DimXYZ)), nil
}

func sceneLineString(points []mgl64.Vec3) geom.LineString {
	flatCoords := make([]float64, 0, len(points)*3)
	for _, v := range points {
		flatCoords = append(flatCoords, v.X(), v.Z(), v.Y())
	}
	return geom.NewLineString(geom.NewSequence(flatCoords, geom.DimXYZ))
}
