package config

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/viper"

	"github.com/OCAP2/waypointsim/internal/waypoint"
	"github.com/OCAP2/waypointsim/pkg/core"
)

// FileName is the config file looked up in the config directory.
const FileName = "waypointsim.cfg.json"

// SimConfig holds run loop settings
type SimConfig struct {
	VehicleID     string        `json:"vehicleId" mapstructure:"vehicleId"`
	TimeStep      float64       `json:"timeStep" mapstructure:"timeStep"` // seconds
	Duration      float64       `json:"duration" mapstructure:"duration"` // seconds
	MaxIterations int           `json:"maxIterations" mapstructure:"maxIterations"`
	Realtime      bool          `json:"realtime" mapstructure:"realtime"`
	TickInterval  time.Duration `json:"-" mapstructure:"-"` // wall-clock pacing when Realtime is set
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"` // empty for an in-memory DB
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// PostgresConfig holds Postgres connection settings
type PostgresConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// InfluxConfig holds InfluxDB connection settings
type InfluxConfig struct {
	Protocol string
	Host     string
	Port     string
	Token    string
	Org      string
	Bucket   string
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type     string
	Memory   MemoryConfig
	SQLite   SQLiteConfig
	Postgres PostgresConfig
	Influx   InfluxConfig
}

// OTelConfig holds metrics export settings
type OTelConfig struct {
	Enabled        bool
	ServiceName    string
	ExportInterval time.Duration
}

// GeoOrigin is the longitude/latitude the local x/z plane is anchored to.
type GeoOrigin struct {
	Lon float64
	Lat float64
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./simlogs")

	viper.SetDefault("mover.kind", "steering")
	viper.SetDefault("mover.maxSpeed", 25.0)
	viper.SetDefault("mover.acceleration", 10.0)
	viper.SetDefault("mover.steeringRate", 90.0)
	viper.SetDefault("mover.arrivalThreshold", core.DefaultArrivalThreshold)

	viper.SetDefault("sim.vehicleId", "car-1")
	viper.SetDefault("sim.timeStep", 0.2)
	viper.SetDefault("sim.duration", 60.0)
	viper.SetDefault("sim.maxIterations", 5000)
	viper.SetDefault("sim.realtime", false)

	viper.SetDefault("waypoints", [][]float64{})

	viper.SetDefault("geo.originLon", 0.0)
	viper.SetDefault("geo.originLat", 0.0)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpPath", "")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "waypointsim")

	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "waypointsim")
	viper.SetDefault("influx.bucket", "motion")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "waypointsim")
	viper.SetDefault("otel.exportInterval", "10s")
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetMoverKind returns the configured mover kind ("direct" or "steering").
func GetMoverKind() string {
	return viper.GetString("mover.kind")
}

// GetMoverConfig returns the driving parameters of the vehicle.
func GetMoverConfig() core.MoverConfig {
	return core.MoverConfig{
		MaxSpeed:         viper.GetFloat64("mover.maxSpeed"),
		Acceleration:     viper.GetFloat64("mover.acceleration"),
		SteeringRate:     viper.GetFloat64("mover.steeringRate"),
		ArrivalThreshold: viper.GetFloat64("mover.arrivalThreshold"),
	}
}

// GetSimConfig returns the run loop settings.
func GetSimConfig() SimConfig {
	step := viper.GetFloat64("sim.timeStep")
	return SimConfig{
		VehicleID:     viper.GetString("sim.vehicleId"),
		TimeStep:      step,
		Duration:      viper.GetFloat64("sim.duration"),
		MaxIterations: viper.GetInt("sim.maxIterations"),
		Realtime:      viper.GetBool("sim.realtime"),
		TickInterval:  time.Duration(step * float64(time.Second)),
	}
}

// GetWaypoints returns the configured route as positions.
func GetWaypoints() ([]mgl64.Vec3, error) {
	var coords [][]float64
	if err := viper.UnmarshalKey("waypoints", &coords); err != nil {
		return nil, fmt.Errorf("reading waypoints: %w", err)
	}
	return waypoint.ParsePoints(coords)
}

// GetGeoOrigin returns the anchor used when exporting geographic coordinates.
func GetGeoOrigin() GeoOrigin {
	return GeoOrigin{
		Lon: viper.GetFloat64("geo.originLon"),
		Lat: viper.GetFloat64("geo.originLat"),
	}
}

// GetStorageConfig returns the storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
		Influx: InfluxConfig{
			Protocol: viper.GetString("influx.protocol"),
			Host:     viper.GetString("influx.host"),
			Port:     viper.GetString("influx.port"),
			Token:    viper.GetString("influx.token"),
			Org:      viper.GetString("influx.org"),
			Bucket:   viper.GetString("influx.bucket"),
		},
	}
}

// GetOTelConfig returns the metrics export configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:        viper.GetBool("otel.enabled"),
		ServiceName:    viper.GetString("otel.serviceName"),
		ExportInterval: viper.GetDuration("otel.exportInterval"),
	}
}
