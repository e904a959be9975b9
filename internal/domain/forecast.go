package domain

import "time"

// Model identifiers for persisted forecasts and metrics.
const (
	ModelGBT      = "gbt"
	ModelBaseline = "naive_lag1"
)

// ForecastResult is one dated point forecast, optionally with a confidence
// band attached by the inference layer. Immutable once computed for a given
// scenario.
type ForecastResult struct {
	Date            time.Time
	Point           float64
	Lower           *float64 // nil when no interval was computed
	Upper           *float64
	ConfidenceLevel float64 // 0 when no interval was computed
	Actual          *float64 // nil when the actual is not yet known
	ModelID         string
	ScenarioID      string
}
