package reporting

import (
	"time"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/model"
)

// Report is the full analysis report: data summary, model comparison,
// statistical findings, forecasts and scenario impacts.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	ModelCount  int

	// Data Summary
	DataSummary DataSummary

	// Model Comparison (latest metrics per model, sorted by model_id)
	ModelComparison []ModelMetricRow

	// Statistical analysis from the most recent pipeline run. Nil sections
	// are omitted from rendering; a report regenerated purely from storage
	// carries only persisted data.
	Analysis *Analysis

	// Forecasts (champion model, baseline scenario, sorted by date)
	Forecasts []ForecastRow

	// Scenario impacts (sorted by created_at)
	Scenarios []ScenarioRow
}

// DataSummary describes the canonical daily series.
type DataSummary struct {
	Days             int
	DateRangeStart   time.Time
	DateRangeEnd     time.Time
	TotalRevenue     float64
	MeanDailyRevenue float64
	PromoDays        int
	HolidayDays      int
}

// ModelMetricRow is one model's latest accuracy snapshot.
type ModelMetricRow struct {
	ModelID string
	MAPE    float64
	MAE     float64
	RMSE    float64
	R2      float64
	BiasPct float64
}

// Analysis holds the in-memory statistical outputs of a pipeline run.
type Analysis struct {
	FeatureImportance []model.Importance
	PromotionTest     *domain.HypothesisTestResult
	HolidayTest       *domain.HypothesisTestResult
	Correlations      []*domain.CorrelationResult
	Stationarity      *domain.StationarityResult
}

// ForecastRow is one forecast line: point estimate with optional band and
// realized actual.
type ForecastRow struct {
	Date   time.Time
	Point  float64
	Lower  *float64
	Upper  *float64
	Actual *float64
}

// ScenarioRow is one what-if run and its revenue impact.
type ScenarioRow struct {
	ScenarioID     string
	PromoChangePct float64
	OilChangePct   float64
	HorizonDays    int
	RevenueImpact  float64
}
