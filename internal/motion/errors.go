package motion

import (
	"errors"

	"github.com/OCAP2/waypointsim/internal/waypoint"
)

// ErrNoWaypoints is wrapped by the ConfigurationError returned for an empty provider.
var ErrNoWaypoints = errors.New("no waypoints configured")

// ErrUnknownMover is returned by New for an unrecognised mover kind.
var ErrUnknownMover = errors.New("unknown mover kind")

// ConfigurationError reports that motion cannot be defined for the given setup.
// It is returned instead of panicking so callers can surface it at their boundary.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func checkProvider(p waypoint.Provider) error {
	if p == nil || p.Count() == 0 {
		return &ConfigurationError{Reason: "waypoint provider has no nodes", Err: ErrNoWaypoints}
	}
	return nil
}
