package waypoint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidWaypoint is returned when a waypoint cannot be parsed.
var ErrInvalidWaypoint = errors.New("invalid waypoint provided")

// ParsePoint parses "x,z" or "x,y,z" into a position. A missing y is 0.
func ParsePoint(s string) (mgl64.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return mgl64.Vec3{}, ErrInvalidWaypoint
	}

	values := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return mgl64.Vec3{}, ErrInvalidWaypoint
		}
		values[i] = v
	}

	if len(values) == 2 {
		return mgl64.Vec3{values[0], 0, values[1]}, nil
	}
	return mgl64.Vec3{values[0], values[1], values[2]}, nil
}

// ParsePoints converts [[x,y,z],...] (or [[x,z],...]) coordinate arrays into positions.
func ParsePoints(coords [][]float64) ([]mgl64.Vec3, error) {
	points := make([]mgl64.Vec3, 0, len(coords))
	for i, c := range coords {
		switch len(c) {
		case 2:
			points = append(points, mgl64.Vec3{c[0], 0, c[1]})
		case 3:
			points = append(points, mgl64.Vec3{c[0], c[1], c[2]})
		default:
			return nil, fmt.Errorf("waypoint %d has %d values: %w", i, len(c), ErrInvalidWaypoint)
		}
	}
	return points, nil
}
