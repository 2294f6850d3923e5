package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/OCAP2/waypointsim/internal/geo"
	"github.com/OCAP2/waypointsim/pkg/core"
)

// RunExport is the root JSON structure
type RunExport struct {
	VehicleID string           `json:"vehicleId"`
	MoverKind string           `json:"moverKind"`
	Config    core.MoverConfig `json:"config"`
	TimeStep  float64          `json:"timeStep"`
	StartTime time.Time        `json:"startTime"`
	Waypoints []WaypointJSON   `json:"waypoints"`
	// Samples are [tick, simTime, [x, y, z], heading, speed, currentNode, advanced]
	Samples [][]any `json:"samples"`
	Summary Summary `json:"summary"`
}

// WaypointJSON represents one route node
type WaypointJSON struct {
	Index    int        `json:"index"`
	Name     string     `json:"name"`
	Position [3]float64 `json:"position"`
}

// Summary holds aggregate figures for a run
type Summary struct {
	Samples  int     `json:"samples"`
	Duration float64 `json:"duration"` // simulated seconds
	Advances int     `json:"advances"` // node advancements
	Laps     int     `json:"laps"`     // completed laps over the route
	Distance float64 `json:"distance"` // planar distance travelled
	MaxSpeed float64 `json:"maxSpeed"`
}

// exportJSON writes the run data to a JSON file, gzipped when configured
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	// Build filename
	vehicle := strings.ReplaceAll(b.run.VehicleID, " ", "_")
	vehicle = strings.ReplaceAll(vehicle, ":", "_")
	vehicle = strings.ReplaceAll(vehicle, string(filepath.Separator), "_")
	timestamp := b.run.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", vehicle, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", vehicle, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write file
	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() RunExport {
	export := RunExport{
		VehicleID: b.run.VehicleID,
		MoverKind: b.run.MoverKind,
		Config:    b.run.Config,
		TimeStep:  b.run.TimeStep,
		StartTime: b.run.StartTime,
		Waypoints: make([]WaypointJSON, 0, len(b.waypoints)),
		Samples:   make([][]any, 0, len(b.samples)),
		Summary:   summarize(b.samples, len(b.waypoints)),
	}

	for _, w := range b.waypoints {
		export.Waypoints = append(export.Waypoints, WaypointJSON{
			Index:    w.Index,
			Name:     w.Name,
			Position: [3]float64(w.Position),
		})
	}

	for _, s := range b.samples {
		export.Samples = append(export.Samples, []any{
			s.Tick,
			s.SimTime,
			[3]float64(s.Position),
			s.Heading,
			s.Speed,
			s.CurrentNode,
			boolToInt(s.Advanced),
		})
	}

	return export
}

// summarize aggregates samples. CurrentNode counts advancements since reset,
// so completed laps follow from the route size; zero when it is unknown.
func summarize(samples []core.Sample, nodes int) Summary {
	sum := Summary{Samples: len(samples)}
	if len(samples) == 0 {
		return sum
	}

	last := samples[len(samples)-1]
	sum.Duration = last.SimTime
	for _, s := range samples {
		if s.Advanced {
			sum.Advances++
		}
		if s.Speed > sum.MaxSpeed {
			sum.MaxSpeed = s.Speed
		}
	}
	if nodes > 0 {
		sum.Laps = last.CurrentNode / nodes
	}
	sum.Distance = geo.TraceLineString(samples).Length()
	return sum
}

func writeJSON(path string, data RunExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data RunExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
