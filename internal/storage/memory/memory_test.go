package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/waypointsim/internal/config"
	"github.com/OCAP2/waypointsim/pkg/core"
)

var startTime = time.Date(2026, 10, 1, 12, 30, 45, 0, time.UTC)

func newRun() *core.Run {
	return &core.Run{
		VehicleID: "car-1",
		MoverKind: "direct",
		Config:    core.MoverConfig{MaxSpeed: 10, Acceleration: 10},
		TimeStep:  1,
		StartTime: startTime,
	}
}

var route = []core.Waypoint{
	{Index: 0, Name: "Node-0", Position: mgl64.Vec3{0, 0, 0}},
	{Index: 1, Name: "Node-1", Position: mgl64.Vec3{10, 0, 0}},
	{Index: 2, Name: "Node-2", Position: mgl64.Vec3{10, 0, 10}},
	{Index: 3, Name: "Node-3", Position: mgl64.Vec3{0, 0, 10}},
}

func recordSquare(t *testing.T, b *Backend) {
	t.Helper()
	require.NoError(t, b.StartRun(newRun()))
	require.NoError(t, b.AddWaypoints(route))

	positions := []mgl64.Vec3{{10, 0, 0}, {10, 0, 10}, {0, 0, 10}, {0, 0, 0}, {10, 0, 0}}
	for i, p := range positions {
		require.NoError(t, b.RecordSample(&core.Sample{
			VehicleID:   "car-1",
			Tick:        uint(i + 1),
			SimTime:     float64(i + 1),
			Position:    p,
			Speed:       10,
			CurrentNode: i,
			Advanced:    i > 0,
		}))
	}
}

func TestNew(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: "/tmp/test", CompressOutput: true})
	require.NotNil(t, b)
	assert.Equal(t, "/tmp/test", b.cfg.OutputDir)
	assert.True(t, b.cfg.CompressOutput)
	assert.NoError(t, b.Init())
	assert.NoError(t, b.Close())
}

func TestRecordBeforeStartRun(t *testing.T) {
	b := New(config.MemoryConfig{})
	assert.ErrorIs(t, b.RecordSample(&core.Sample{}), ErrNoRun)
	assert.ErrorIs(t, b.AddWaypoints(route), ErrNoRun)
	assert.ErrorIs(t, b.EndRun(), ErrNoRun)
}

func TestStartRun_AssignsIDAndResets(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})

	first := newRun()
	require.NoError(t, b.StartRun(first))
	require.NoError(t, b.RecordSample(&core.Sample{Tick: 1}))
	assert.Equal(t, uint(1), first.ID)

	second := newRun()
	require.NoError(t, b.StartRun(second))
	assert.Equal(t, uint(2), second.ID)
	assert.Empty(t, b.Samples(), "samples are reset per run")
}

func TestSamplesReturnsCopy(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.StartRun(newRun()))
	require.NoError(t, b.RecordSample(&core.Sample{Tick: 1}))

	s := b.Samples()
	s[0].Tick = 99
	assert.Equal(t, uint(1), b.Samples()[0].Tick)

	w := b.Waypoints()
	assert.Empty(t, w)
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: false})
	recordSquare(t, b)
	require.NoError(t, b.EndRun())

	path := b.ExportedFilePath()
	assert.Equal(t, filepath.Join(dir, "car-1_20261001_123045.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var export RunExport
	require.NoError(t, json.Unmarshal(raw, &export))
	assert.Equal(t, "car-1", export.VehicleID)
	assert.Equal(t, "direct", export.MoverKind)
	assert.Equal(t, 10.0, export.Config.MaxSpeed)
	require.Len(t, export.Waypoints, 4)
	assert.Equal(t, [3]float64{10, 0, 10}, export.Waypoints[2].Position)
	require.Len(t, export.Samples, 5)

	// [tick, simTime, [x, y, z], heading, speed, currentNode, advanced]
	s := export.Samples[1]
	assert.Equal(t, 2.0, s[0])
	assert.Equal(t, []any{10.0, 0.0, 10.0}, s[2])
	assert.Equal(t, 1.0, s[5])
	assert.Equal(t, 1.0, s[6])
}

func TestExportGzipJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true})
	recordSquare(t, b)
	require.NoError(t, b.EndRun())

	path := b.ExportedFilePath()
	assert.True(t, strings.HasSuffix(path, ".json.gz"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	var export RunExport
	require.NoError(t, json.NewDecoder(gz).Decode(&export))
	assert.Len(t, export.Samples, 5)
}

func TestExportCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "recordings")
	b := New(config.MemoryConfig{OutputDir: dir})
	recordSquare(t, b)
	require.NoError(t, b.EndRun())

	_, err := os.Stat(b.ExportedFilePath())
	require.NoError(t, err)
}

func TestFilenameSanitized(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir})
	run := newRun()
	run.VehicleID = "blue car:2"
	require.NoError(t, b.StartRun(run))
	require.NoError(t, b.EndRun())

	assert.Equal(t, "blue_car_2_20261001_123045.json", filepath.Base(b.ExportedFilePath()))
}

func TestSummary(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	recordSquare(t, b)

	sum := summarize(b.Samples(), len(b.Waypoints()))
	assert.Equal(t, 5, sum.Samples)
	assert.Equal(t, 5.0, sum.Duration)
	assert.Equal(t, 4, sum.Advances)
	assert.Equal(t, 1, sum.Laps)
	assert.InDelta(t, 40.0, sum.Distance, 1e-9)
	assert.Equal(t, 10.0, sum.MaxSpeed)
}

func TestSummary_Empty(t *testing.T) {
	sum := summarize(nil, 4)
	assert.Equal(t, Summary{}, sum)
}

func TestBoolToInt(t *testing.T) {
	assert.Equal(t, 1, boolToInt(true))
	assert.Equal(t, 0, boolToInt(false))
}
