// Package sim drives one vehicle over a waypoint route at a fixed time step
// and records every tick into a storage backend.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/OCAP2/waypointsim/internal/config"
	"github.com/OCAP2/waypointsim/internal/motion"
	"github.com/OCAP2/waypointsim/internal/storage"
	"github.com/OCAP2/waypointsim/internal/vehicle"
	"github.com/OCAP2/waypointsim/internal/waypoint"
	"github.com/OCAP2/waypointsim/pkg/core"
)

// ErrInvalidTimeStep is returned for a time step that is not a positive number.
var ErrInvalidTimeStep = errors.New("time step must be positive")

// Config holds everything a run needs besides the route and the backend.
type Config struct {
	Sim       config.SimConfig
	MoverKind string
	Mover     core.MoverConfig
}

// Result describes a finished run.
type Result struct {
	Run       core.Run
	Ticks     uint
	Recorded  int
	Final     core.MotionState
	Cancelled bool
}

// Runner executes runs. It is safe to reuse for several sequential runs.
type Runner struct {
	cfg     Config
	route   *waypoint.List
	backend storage.Backend
	log     *slog.Logger
	now     func() time.Time

	runs     metric.Int64Counter
	recorded metric.Int64Counter
}

// New creates a runner. Uses the global OTel meter for metrics.
func New(cfg Config, route *waypoint.List, backend storage.Backend, log *slog.Logger) (*Runner, error) {
	if log == nil {
		log = slog.Default()
	}
	r := &Runner{
		cfg:     cfg,
		route:   route,
		backend: backend,
		log:     log,
		now:     time.Now,
	}

	mt := meter()
	var err error

	r.runs, err = mt.Int64Counter(
		"sim.runs",
		metric.WithDescription("Completed simulation runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating runs counter: %w", err)
	}

	r.recorded, err = mt.Int64Counter(
		"sim.samples.recorded",
		metric.WithDescription("Samples handed to the storage backend"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating samples counter: %w", err)
	}

	return r, nil
}

// Steps returns how many ticks a run of the configured duration takes,
// capped by MaxIterations when it is positive.
func (c Config) Steps() int {
	n := int(math.Ceil(c.Sim.Duration/c.Sim.TimeStep - 1e-9))
	if n < 0 {
		n = 0
	}
	if c.Sim.MaxIterations > 0 && n > c.Sim.MaxIterations {
		n = c.Sim.MaxIterations
	}
	return n
}

// Run resets the vehicle, drives it for the configured number of steps and
// records the reset state plus every effective tick. Cancelling ctx ends the
// run early; the run is still closed in the backend.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	step := r.cfg.Sim.TimeStep
	if !(step > 0) || math.IsInf(step, 1) {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidTimeStep, step)
	}

	mover, err := motion.New(r.cfg.MoverKind, r.route, r.cfg.Mover)
	if err != nil {
		return Result{}, err
	}

	run := core.Run{
		VehicleID: r.cfg.Sim.VehicleID,
		MoverKind: mover.Name(),
		Config:    r.cfg.Mover,
		TimeStep:  step,
		StartTime: r.now(),
	}

	attrs := metric.WithAttributes(attribute.String("mover", run.MoverKind))
	res := Result{}
	var recordErr error
	record := func(s core.Sample) {
		if recordErr != nil {
			return
		}
		if err := r.backend.RecordSample(&s); err != nil {
			recordErr = fmt.Errorf("recording tick %d: %w", s.Tick, err)
			return
		}
		res.Recorded++
		r.recorded.Add(context.Background(), 1, attrs)
	}

	v, err := vehicle.New(run.VehicleID, r.route, mover,
		vehicle.WithLogger(r.log),
		vehicle.WithRecorder(record),
	)
	if err != nil {
		return Result{}, err
	}
	if err := v.ResetToStart(); err != nil {
		return Result{}, err
	}

	if err := r.backend.StartRun(&run); err != nil {
		return Result{}, fmt.Errorf("starting run: %w", err)
	}
	res.Run = run
	log := r.log.With("runId", run.ID, "vehicle", run.VehicleID)

	if err := r.backend.AddWaypoints(r.waypoints()); err != nil {
		return res, r.abort(fmt.Errorf("storing waypoints: %w", err))
	}

	record(v.State().Sample(run.VehicleID, 0, 0, false))

	steps := r.cfg.Steps()
	log.Info("Run started", "mover", run.MoverKind, "steps", steps, "timeStep", step)

	var ticker *time.Ticker
	if r.cfg.Sim.Realtime && r.cfg.Sim.TickInterval > 0 {
		ticker = time.NewTicker(r.cfg.Sim.TickInterval)
		defer ticker.Stop()
	}

	v.Start()
loop:
	for i := 0; i < steps; i++ {
		if ticker != nil {
			select {
			case <-ctx.Done():
				res.Cancelled = true
				break loop
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			res.Cancelled = true
			break
		}

		if err := v.Update(step); err != nil {
			return res, r.abort(err)
		}
		if recordErr != nil {
			return res, r.abort(recordErr)
		}
	}
	v.Stop()

	res.Ticks = v.Tick()
	res.Final = v.State()

	if err := r.backend.EndRun(); err != nil {
		return res, fmt.Errorf("ending run: %w", err)
	}
	r.runs.Add(context.Background(), 1, attrs)

	log.Info("Run finished",
		"ticks", res.Ticks,
		"recorded", res.Recorded,
		"node", res.Final.CurrentNode,
		"cancelled", res.Cancelled,
	)
	return res, nil
}

// abort closes the run after a failure and returns the original error.
func (r *Runner) abort(err error) error {
	if endErr := r.backend.EndRun(); endErr != nil {
		r.log.Warn("Failed to close run after error", "error", endErr)
	}
	return err
}

func (r *Runner) waypoints() []core.Waypoint {
	names := r.route.Names()
	points := r.route.Points()
	out := make([]core.Waypoint, len(points))
	for i, p := range points {
		out[i] = core.Waypoint{Index: i, Name: names[i], Position: p}
	}
	return out
}
