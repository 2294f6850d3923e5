package vehicle

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/waypointsim/internal/vehicle"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
