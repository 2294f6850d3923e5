package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Run{},
	&Waypoint{},
	&VehicleState{},
}

// Run is one simulation run of a single vehicle
type Run struct {
	gorm.Model
	VehicleID string         `json:"vehicleId" gorm:"size:64;index:idx_run_vehicle_id"`
	MoverKind string         `json:"moverKind" gorm:"size:16"`
	Config    datatypes.JSON `json:"config"`   // MoverConfig as JSON
	TimeStep  float64        `json:"timeStep"` // seconds per tick
	StartTime time.Time      `json:"startTime"`
	EndTime   sql.NullTime   `json:"endTime"`
	Samples   uint           `json:"samples"` // number of recorded vehicle states, set when the run ends
}

func (*Run) TableName() string {
	return "runs"
}

// Waypoint is a route node as it was when the run started
type Waypoint struct {
	ID       uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID    uint       `json:"runId" gorm:"index:idx_waypoint_run_id"`
	Run      Run        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	Index    int        `json:"index"`
	Name     string     `json:"name" gorm:"size:64"`
	Position geom.Point `json:"position"` // scene x/z as XY, height as Z
}

func (*Waypoint) TableName() string {
	return "waypoints"
}

// VehicleState is the vehicle state recorded after one tick
type VehicleState struct {
	ID          uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time        time.Time `json:"time"` // run start plus simulated time
	RunID       uint      `json:"runId" gorm:"index:idx_vehiclestate_run_id"`
	Run         Run       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	Tick        uint      `json:"tick" gorm:"index:idx_vehiclestate_tick"`
	SimTime     float64   `json:"simTime"` // seconds since reset
	VehicleID   string    `json:"vehicleId" gorm:"size:64"`

	Position    geom.Point `json:"position"` // scene x/z as XY, height as Z
	Elevation   float64    `json:"elevation"`
	Heading     float64    `json:"heading"` // degrees, not normalized
	Speed       float64    `json:"speed"`
	CurrentNode int        `json:"currentNode"`
	Advanced    bool       `json:"advanced"` // node advancement happened during this tick
}

func (*VehicleState) TableName() string {
	return "vehicle_states"
}
