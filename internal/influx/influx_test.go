package influx

import (
	"bufio"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/waypointsim/internal/config"
)

var unreachable = config.InfluxConfig{
	Protocol: "http",
	Host:     "127.0.0.1",
	Port:     "1",
	Org:      "waypointsim",
	Bucket:   "motion",
}

func TestURL(t *testing.T) {
	m := NewManager(zerolog.Nop(), config.InfluxConfig{Protocol: "https", Host: "influx.local", Port: "8086"}, "")
	assert.Equal(t, "https://influx.local:8086", m.URL())
}

func TestConnect_UnreachableWithoutBackup(t *testing.T) {
	m := NewManager(zerolog.Nop(), unreachable, "")
	err := m.Connect(context.Background())
	assert.Error(t, err)
	assert.False(t, m.IsValid)
	assert.NoError(t, m.Close())
}

func TestConnect_FallsBackToBackupFile(t *testing.T) {
	backup := filepath.Join(t.TempDir(), "influx_backup.lp.gz")
	m := NewManager(zerolog.Nop(), unreachable, backup)
	require.NoError(t, m.Connect(context.Background()))
	assert.False(t, m.IsValid)

	point := influxdb2_write.NewPoint("motion_sample",
		map[string]string{"vehicle": "car-1"},
		map[string]interface{}{"speed": 12.5},
		time.Unix(0, 42))
	require.NoError(t, m.WritePoint(point))
	require.NoError(t, m.Flush())
	require.NoError(t, m.Close())

	f, err := os.Open(backup)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	scanner := bufio.NewScanner(gz)
	require.True(t, scanner.Scan())
	assert.Equal(t, "motion_sample,vehicle=car-1 speed=12.5 42", scanner.Text())
}

func TestWritePoint_NotConnected(t *testing.T) {
	m := NewManager(zerolog.Nop(), unreachable, "")
	err := m.WritePoint(influxdb2_write.NewPointWithMeasurement("x"))
	assert.Error(t, err)
}
