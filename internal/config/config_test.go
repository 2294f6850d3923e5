package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/waypointsim/internal/waypoint"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"mover": { "kind": "direct", "maxSpeed": 12.5 },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "direct", GetMoverKind())
	assert.Equal(t, 12.5, viper.GetFloat64("mover.maxSpeed"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./simlogs", viper.GetString("logsDir"))
	assert.Equal(t, "steering", viper.GetString("mover.kind"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "waypointsim", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetMoverConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetMoverConfig()
	assert.Equal(t, 25.0, cfg.MaxSpeed)
	assert.Equal(t, 10.0, cfg.Acceleration)
	assert.Equal(t, 90.0, cfg.SteeringRate)
	assert.Equal(t, 0.1, cfg.ArrivalThreshold)
}

func TestGetSimConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{ "sim": { "timeStep": 0.5, "vehicleId": "bus-7" } }`)))

	cfg := GetSimConfig()
	assert.Equal(t, "bus-7", cfg.VehicleID)
	assert.Equal(t, 0.5, cfg.TimeStep)
	assert.Equal(t, 60.0, cfg.Duration)
	assert.Equal(t, 5000, cfg.MaxIterations)
	assert.Equal(t, false, cfg.Realtime)
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
}

func TestGetWaypoints(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{ "waypoints": [[0,0,0],[10,0,0],[10,2,10],[0,10]] }`)))

	points, err := GetWaypoints()
	require.NoError(t, err)
	assert.Equal(t, []mgl64.Vec3{{0, 0, 0}, {10, 0, 0}, {10, 2, 10}, {0, 0, 10}}, points)
}

func TestGetWaypoints_Invalid(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{ "waypoints": [[1,2,3,4]] }`)))

	_, err := GetWaypoints()
	assert.ErrorIs(t, err, waypoint.ErrInvalidWaypoint)
}

func TestGetWaypoints_EmptyByDefault(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	points, err := GetWaypoints()
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, "./recordings", cfg.Memory.OutputDir)
	assert.Equal(t, true, cfg.Memory.CompressOutput)
	assert.Equal(t, "", cfg.SQLite.Path)
	assert.Equal(t, 3*time.Minute, cfg.SQLite.DumpInterval)
	assert.Equal(t, "postgres", cfg.Postgres.Username)
	assert.Equal(t, "motion", cfg.Influx.Bucket)
	assert.Equal(t, "8086", cfg.Influx.Port)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"storage": {
			"type": "sqlite",
			"memory": { "outputDir": "/tmp/out", "compressOutput": false },
			"sqlite": { "path": "/tmp/sim.db", "dumpInterval": "10m" }
		},
		"influx": { "org": "fleet", "token": "abc" }
	}`)
	require.NoError(t, Load(dir))

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "/tmp/out", sc.Memory.OutputDir)
	assert.Equal(t, false, sc.Memory.CompressOutput)
	assert.Equal(t, "/tmp/sim.db", sc.SQLite.Path)
	assert.Equal(t, 10*time.Minute, sc.SQLite.DumpInterval)
	assert.Equal(t, "fleet", sc.Influx.Org)
	assert.Equal(t, "abc", sc.Influx.Token)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetOTelConfig()
	assert.Equal(t, false, cfg.Enabled)
	assert.Equal(t, "waypointsim", cfg.ServiceName)
	assert.Equal(t, 10*time.Second, cfg.ExportInterval)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{ "otel": { "enabled": true, "serviceName": "svc", "exportInterval": "1m" } }`)))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "svc", oc.ServiceName)
	assert.Equal(t, time.Minute, oc.ExportInterval)
}

func TestGetGeoOrigin(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{ "geo": { "originLon": 13.4, "originLat": 52.5 } }`)))

	assert.Equal(t, GeoOrigin{Lon: 13.4, Lat: 52.5}, GetGeoOrigin())
}
