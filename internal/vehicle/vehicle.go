// Package vehicle drives a single vehicle along its waypoints tick by tick.
package vehicle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/OCAP2/waypointsim/internal/motion"
	"github.com/OCAP2/waypointsim/internal/waypoint"
	"github.com/OCAP2/waypointsim/pkg/core"
)

// Status is the driving state of a vehicle.
type Status uint8

const (
	StatusIdle Status = iota
	StatusDriving
)

func (s Status) String() string {
	if s == StatusDriving {
		return "driving"
	}
	return "idle"
}

// Recorder receives a sample after every effective tick.
type Recorder func(core.Sample)

// Option configures a Vehicle.
type Option func(*Vehicle)

// WithLogger sets the logger used for node advancements and configuration errors.
func WithLogger(l *slog.Logger) Option {
	return func(v *Vehicle) {
		v.log = l
	}
}

// WithRecorder registers a callback for every sample produced by Update.
func WithRecorder(r Recorder) Option {
	return func(v *Vehicle) {
		v.recorder = r
	}
}

// Vehicle owns one MotionState and advances it with its mover while driving.
// It is not safe for concurrent use.
type Vehicle struct {
	id       string
	provider waypoint.Provider
	mover    motion.Mover
	state    core.MotionState
	status   Status
	tick     uint
	simTime  float64

	log      *slog.Logger
	recorder Recorder

	attrs    metric.MeasurementOption
	ticks    metric.Int64Counter
	advances metric.Int64Counter
	speed    metric.Float64Histogram
}

// New creates an idle vehicle. Call ResetToStart before driving it.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(id string, p waypoint.Provider, m motion.Mover, opts ...Option) (*Vehicle, error) {
	v := &Vehicle{
		id:       id,
		provider: p,
		mover:    m,
		log:      slog.Default(),
		attrs:    metric.WithAttributes(attribute.String("vehicle.id", id)),
	}
	for _, opt := range opts {
		opt(v)
	}

	mt := meter()
	var err error

	v.ticks, err = mt.Int64Counter(
		"vehicle.ticks",
		metric.WithDescription("Ticks that advanced the vehicle"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	v.advances, err = mt.Int64Counter(
		"vehicle.node.advances",
		metric.WithDescription("Waypoint nodes reached or passed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating advances counter: %w", err)
	}

	v.speed, err = mt.Float64Histogram(
		"vehicle.speed",
		metric.WithDescription("Vehicle speed after each tick"),
		metric.WithUnit("m/s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating speed histogram: %w", err)
	}

	return v, nil
}

// ID returns the vehicle identifier.
func (v *Vehicle) ID() string { return v.id }

// Start makes Update effective. Starting a driving vehicle does nothing.
func (v *Vehicle) Start() {
	v.status = StatusDriving
}

// Stop makes Update a no-op until the next Start. State is kept.
func (v *Vehicle) Stop() {
	v.status = StatusIdle
}

// Driving reports whether Update currently has an effect.
func (v *Vehicle) Driving() bool {
	return v.status == StatusDriving
}

// Status returns the current driving status.
func (v *Vehicle) Status() Status {
	return v.status
}

// ResetToStart places the vehicle on node 0 facing node 1 at rest. The driving
// status is left untouched.
func (v *Vehicle) ResetToStart() error {
	s, err := motion.ResetToStart(v.provider)
	if err != nil {
		v.log.Error("cannot place vehicle", "vehicle", v.id, "error", err)
		return err
	}
	v.state = s
	v.tick = 0
	v.simTime = 0
	return nil
}

// Update advances the vehicle by dt seconds. It does nothing while idle or
// for dt <= 0, and returns a *motion.ConfigurationError when the waypoints
// cannot define motion.
func (v *Vehicle) Update(dt float64) error {
	if v.status != StatusDriving || !(dt > 0) {
		return nil
	}

	prev := v.state
	next, err := v.mover.Update(v.state, dt)
	if err != nil {
		v.log.Error("motion update failed", "vehicle", v.id, "error", err)
		return err
	}
	if next == prev {
		return nil
	}

	v.state = next
	v.tick++
	v.simTime += dt

	ctx := context.Background()
	v.ticks.Add(ctx, 1, v.attrs)
	v.speed.Record(ctx, next.Speed, v.attrs)

	advanced := next.CurrentNode != prev.CurrentNode
	if advanced {
		v.advances.Add(ctx, 1, v.attrs)
		v.log.Debug("node reached",
			"vehicle", v.id,
			"node", next.CurrentNode,
			"target", next.TargetNode()%v.provider.Count(),
			"speed", next.Speed,
		)
	}

	if v.recorder != nil {
		v.recorder(next.Sample(v.id, v.tick, v.simTime, advanced))
	}
	return nil
}

// State returns a copy of the current motion state.
func (v *Vehicle) State() core.MotionState {
	return v.state
}

// Position returns the current position.
func (v *Vehicle) Position() mgl64.Vec3 {
	return v.state.Position
}

// Heading returns the current heading in degrees. It is not normalized; use
// motion.NormalizeHeading when a value in [0,360) is needed.
func (v *Vehicle) Heading() float64 {
	return v.state.Heading
}

// Tick returns the number of effective updates since the last reset.
func (v *Vehicle) Tick() uint {
	return v.tick
}
