package motion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Angles are in degrees. 0 points along +Z and angles grow toward +X, so a
// heading h faces (sin h, 0, cos h). Bearings computed by Bearing fall in
// (-90, 270]; headings produced by steering are not normalized.

// PlanarDistance returns the distance between a and b ignoring the y axis.
func PlanarDistance(a, b mgl64.Vec3) float64 {
	return math.Hypot(b.X()-a.X(), b.Z()-a.Z())
}

// PlanarDirection returns the unit vector from 'from' to 'to' on the x/z plane.
// ok is false when the two points coincide on the plane, in which case the zero
// vector is returned.
func PlanarDirection(from, to mgl64.Vec3) (mgl64.Vec3, bool) {
	dx, dz := to.X()-from.X(), to.Z()-from.Z()
	l := math.Hypot(dx, dz)
	if l == 0 {
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{dx / l, 0, dz / l}, true
}

// Bearing returns the heading that faces from 'from' toward 'to'.
// ok is false for coincident points, where no bearing exists.
func Bearing(from, to mgl64.Vec3) (float64, bool) {
	dx, dz := to.X()-from.X(), to.Z()-from.Z()
	if dx == 0 && dz == 0 {
		return 0, false
	}
	return -mgl64.RadToDeg(math.Atan2(dz, dx)) + 90, true
}

// HeadingVector returns the planar unit vector a heading faces.
func HeadingVector(heading float64) mgl64.Vec3 {
	rad := mgl64.DegToRad(heading)
	return mgl64.Vec3{math.Sin(rad), 0, math.Cos(rad)}
}

// ClosestAngle returns whichever of to, to+360 and to-360 is nearest to from,
// so that turning from 'from' toward the result always takes the short way.
// Comparisons are strict: a tie with to+360 picks to+360 and a tie with
// to-360 picks to-360.
func ClosestAngle(from, to float64) float64 {
	d1 := math.Abs(from - to)
	d2 := math.Abs(from - (to + 360))
	d3 := math.Abs(from - (to - 360))

	if d1 < d2 {
		if d1 < d3 {
			return to
		}
		return to - 360
	}
	if d2 < d3 {
		return to + 360
	}
	return to - 360
}

// StepAngle moves current toward target by at most maxStep without passing it.
func StepAngle(current, target, maxStep float64) float64 {
	if maxStep < 0 {
		maxStep = 0
	}
	if current < target {
		return math.Min(current+maxStep, target)
	}
	return math.Max(current-maxStep, target)
}

// NormalizeHeading reduces a heading into [0, 360).
func NormalizeHeading(heading float64) float64 {
	h := math.Mod(heading, 360)
	if h < 0 {
		h += 360
	}
	return h
}
