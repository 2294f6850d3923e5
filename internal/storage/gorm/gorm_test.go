package gormstorage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/waypointsim/internal/database"
	"github.com/OCAP2/waypointsim/internal/model"
	"github.com/OCAP2/waypointsim/pkg/core"
)

func newTestBackend(t *testing.T, batchSize int) *Backend {
	t.Helper()

	m := database.NewManager(zerolog.Nop())
	require.NoError(t, m.OpenSQLite(filepath.Join(t.TempDir(), "gorm.db")))
	t.Cleanup(func() { _ = m.Close() })

	b := New(Dependencies{DB: m.DB, BatchSize: batchSize, FlushInterval: time.Hour})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func testRun() *core.Run {
	return &core.Run{
		VehicleID: "car-1",
		MoverKind: "direct",
		Config:    core.MoverConfig{MaxSpeed: 10, Acceleration: 10},
		TimeStep:  1,
		StartTime: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func sample(tick uint) *core.Sample {
	return &core.Sample{
		VehicleID:   "car-1",
		Tick:        tick,
		SimTime:     float64(tick),
		Position:    mgl64.Vec3{float64(tick), 0, 0},
		Speed:       10,
		CurrentNode: int(tick / 2),
	}
}

func countStates(t *testing.T, b *Backend) int64 {
	t.Helper()
	var n int64
	require.NoError(t, b.DB().Model(&model.VehicleState{}).Count(&n).Error)
	return n
}

func TestInit_NoDB(t *testing.T) {
	b := New(Dependencies{})
	assert.Error(t, b.Init())
}

func TestNew_Defaults(t *testing.T) {
	b := New(Dependencies{})
	assert.Equal(t, DefaultBatchSize, b.deps.BatchSize)
	assert.Equal(t, DefaultFlushInterval, b.deps.FlushInterval)
	assert.NotNil(t, b.deps.LogManager)
}

func TestRecordBeforeStartRun(t *testing.T) {
	b := newTestBackend(t, 10)

	assert.ErrorIs(t, b.RecordSample(sample(1)), ErrNoRun)
	assert.ErrorIs(t, b.AddWaypoints([]core.Waypoint{{}}), ErrNoRun)
	assert.ErrorIs(t, b.EndRun(), ErrNoRun)
}

func TestStartRun_AssignsID(t *testing.T) {
	b := newTestBackend(t, 10)

	run := testRun()
	require.NoError(t, b.StartRun(run))
	assert.NotZero(t, run.ID)

	var mover string
	require.NoError(t, b.DB().Model(&model.Run{}).Where("id = ?", run.ID).Pluck("mover_kind", &mover).Error)
	assert.Equal(t, "direct", mover)
}

func TestAddWaypoints(t *testing.T) {
	b := newTestBackend(t, 10)
	run := testRun()
	require.NoError(t, b.StartRun(run))

	require.NoError(t, b.AddWaypoints([]core.Waypoint{
		{Index: 0, Name: "Node-0", Position: mgl64.Vec3{0, 0, 0}},
		{Index: 1, Name: "Node-1", Position: mgl64.Vec3{10, 0, 0}},
	}))
	require.NoError(t, b.AddWaypoints(nil))

	var names []string
	require.NoError(t, b.DB().Model(&model.Waypoint{}).Where("run_id = ?", run.ID).Order("\"index\"").Pluck("name", &names).Error)
	assert.Equal(t, []string{"Node-0", "Node-1"}, names)
}

func TestRecordSample_QueuesUntilBatchFull(t *testing.T) {
	b := newTestBackend(t, 3)
	require.NoError(t, b.StartRun(testRun()))

	require.NoError(t, b.RecordSample(sample(1)))
	require.NoError(t, b.RecordSample(sample(2)))
	assert.Equal(t, int64(0), countStates(t, b), "states stay queued below batch size")

	require.NoError(t, b.RecordSample(sample(3)))
	assert.Equal(t, int64(3), countStates(t, b), "full batch is written")
}

func TestEndRun_FlushesAndClosesRun(t *testing.T) {
	b := newTestBackend(t, 100)
	run := testRun()
	require.NoError(t, b.StartRun(run))

	for i := uint(1); i <= 5; i++ {
		require.NoError(t, b.RecordSample(sample(i)))
	}
	require.NoError(t, b.EndRun())

	assert.Equal(t, int64(5), countStates(t, b))

	var samples []uint
	require.NoError(t, b.DB().Model(&model.Run{}).Where("id = ?", run.ID).Pluck("samples", &samples).Error)
	require.Len(t, samples, 1)
	assert.Equal(t, uint(5), samples[0])

	var ended int64
	require.NoError(t, b.DB().Model(&model.Run{}).Where("id = ? AND end_time IS NOT NULL", run.ID).Count(&ended).Error)
	assert.Equal(t, int64(1), ended)

	assert.ErrorIs(t, b.RecordSample(sample(6)), ErrNoRun, "recording after EndRun needs a new run")
}

func TestStoredStateRoundTrip(t *testing.T) {
	b := newTestBackend(t, 100)
	run := testRun()
	require.NoError(t, b.StartRun(run))

	s := sample(4)
	s.Heading = -450
	s.Advanced = true
	require.NoError(t, b.RecordSample(s))
	require.NoError(t, b.Flush())

	var rows []model.VehicleState
	require.NoError(t, b.DB().Select("id", "run_id", "tick", "sim_time", "vehicle_id", "position",
		"elevation", "heading", "speed", "current_node", "advanced").
		Where("run_id = ?", run.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, *s, rows[0].ToSample())
}

func TestClose_FlushesQueue(t *testing.T) {
	m := database.NewManager(zerolog.Nop())
	require.NoError(t, m.OpenSQLite(filepath.Join(t.TempDir(), "close.db")))
	t.Cleanup(func() { _ = m.Close() })

	b := New(Dependencies{DB: m.DB, BatchSize: 100, FlushInterval: time.Hour})
	require.NoError(t, b.Init())
	require.NoError(t, b.StartRun(testRun()))
	require.NoError(t, b.RecordSample(sample(1)))

	require.NoError(t, b.Close())
	assert.Equal(t, int64(1), countStates(t, b))
	assert.NoError(t, b.Close(), "second close is a no-op")
}

func TestBackgroundWriter(t *testing.T) {
	m := database.NewManager(zerolog.Nop())
	require.NoError(t, m.OpenSQLite(filepath.Join(t.TempDir(), "bg.db")))
	t.Cleanup(func() { _ = m.Close() })

	b := New(Dependencies{DB: m.DB, BatchSize: 100, FlushInterval: 20 * time.Millisecond})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	require.NoError(t, b.StartRun(testRun()))
	require.NoError(t, b.RecordSample(sample(1)))

	assert.Eventually(t, func() bool {
		var n int64
		if err := b.DB().Model(&model.VehicleState{}).Count(&n).Error; err != nil {
			return false
		}
		return n == 1
	}, 2*time.Second, 10*time.Millisecond)
}
