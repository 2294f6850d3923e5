// Package influxstorage implements the storage.Backend interface by writing
// one InfluxDB point per recorded sample.
package influxstorage

import (
	"context"
	"errors"
	"strconv"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/OCAP2/waypointsim/internal/influx"
	"github.com/OCAP2/waypointsim/pkg/core"
)

// Measurement is the name of the points written per sample.
const Measurement = "motion_sample"

// ErrNoRun is returned when recording before StartRun.
var ErrNoRun = errors.New("no run started")

// Backend writes samples to InfluxDB through the non-blocking write API.
type Backend struct {
	manager *influx.Manager
	run     *core.Run
	counter uint
}

// New creates a new InfluxDB storage backend around a manager.
// The connection is made by Init.
func New(manager *influx.Manager) *Backend {
	return &Backend{manager: manager}
}

// Init connects to the server or opens the backup file.
func (b *Backend) Init() error {
	return b.manager.Connect(context.Background())
}

// Close flushes and releases the connection.
func (b *Backend) Close() error {
	return b.manager.Close()
}

// StartRun assigns a local run ID; InfluxDB has no run table.
func (b *Backend) StartRun(run *core.Run) error {
	b.counter++
	run.ID = b.counter
	b.run = run
	return nil
}

// EndRun flushes pending points.
func (b *Backend) EndRun() error {
	if b.run == nil {
		return ErrNoRun
	}
	b.run = nil
	return b.manager.Flush()
}

// AddWaypoints writes one route_node point per waypoint at the run start.
func (b *Backend) AddWaypoints(waypoints []core.Waypoint) error {
	if b.run == nil {
		return ErrNoRun
	}
	for _, w := range waypoints {
		p := influxdb2_write.NewPoint("route_node",
			map[string]string{
				"run":     strconv.FormatUint(uint64(b.run.ID), 10),
				"vehicle": b.run.VehicleID,
				"name":    w.Name,
			},
			map[string]interface{}{
				"index": w.Index,
				"x":     w.Position.X(),
				"y":     w.Position.Y(),
				"z":     w.Position.Z(),
			},
			b.run.StartTime)
		if err := b.manager.WritePoint(p); err != nil {
			return err
		}
	}
	return nil
}

// RecordSample writes the sample as a point.
func (b *Backend) RecordSample(s *core.Sample) error {
	if b.run == nil {
		return ErrNoRun
	}
	return b.manager.WritePoint(SamplePoint(b.run, s))
}

// SamplePoint converts a sample to a point tagged with run and vehicle. The
// point time is the run start plus the simulated time of the sample.
func SamplePoint(run *core.Run, s *core.Sample) *influxdb2_write.Point {
	return influxdb2_write.NewPoint(Measurement,
		map[string]string{
			"run":     strconv.FormatUint(uint64(run.ID), 10),
			"vehicle": s.VehicleID,
			"mover":   run.MoverKind,
		},
		map[string]interface{}{
			"tick":        int64(s.Tick),
			"x":           s.Position.X(),
			"y":           s.Position.Y(),
			"z":           s.Position.Z(),
			"heading":     s.Heading,
			"speed":       s.Speed,
			"currentNode": s.CurrentNode,
			"advanced":    s.Advanced,
		},
		run.StartTime.Add(time.Duration(s.SimTime*float64(time.Second))))
}
