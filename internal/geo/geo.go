package geo

import (
	"github.com/go-gl/mathgl/mgl64"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Scene points are stored with the ground plane in XY (scene x, scene z) and
// height in Z (scene y), so planar lengths computed by simplefeatures match
// the distances the movers travel.

// ScenePoint converts a scene position into an XYZ point.
func ScenePoint(v mgl64.Vec3) geom.Point {
	return geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: v.X(), Y: v.Z()},
			Z:    v.Y(),
			Type: geom.DimXYZ,
		},
	)
}

// SceneVec is the inverse of ScenePoint. ok is false for an empty point.
func SceneVec(p geom.Point) (v mgl64.Vec3, ok bool) {
	c, ok := p.Coordinates()
	if !ok {
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{c.X, c.Z, c.Y}, true
}

// Projector places scene coordinates on the globe. Scene x runs east and
// scene z runs north, in metres of EPSG:3857 from the origin.
type Projector struct {
	OriginLon float64
	OriginLat float64

	ox, oy float64
}

// NewProjector creates a projector anchored at the given WGS84 origin.
func NewProjector(originLon, originLat float64) Projector {
	f := wgs84.EPSG().Transform(4326, 3857)
	ox, oy, _ := f(originLon, originLat, 0)
	return Projector{
		OriginLon: originLon,
		OriginLat: originLat,
		ox:        ox,
		oy:        oy,
	}
}

// LonLat returns the WGS84 longitude and latitude of a scene position.
func (p Projector) LonLat(v mgl64.Vec3) (lon, lat float64) {
	f := wgs84.EPSG().Transform(3857, 4326)
	lon, lat, _ = f(p.ox+v.X(), p.oy+v.Z(), 0)
	return lon, lat
}

// Point returns an EPSG:4326 point for a scene position, keeping height in Z.
func (p Projector) Point(v mgl64.Vec3) geom.Point {
	lon, lat := p.LonLat(v)
	return geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: lon, Y: lat},
			Z:    v.Y(),
			Type: geom.DimXYZ,
		},
	)
}
