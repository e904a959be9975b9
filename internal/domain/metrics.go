package domain

import "time"

// MetricSet holds point-accuracy metrics for one (actual, predicted) pair of
// series.
type MetricSet struct {
	MAPE          float64 // mean absolute percentage error, percent
	MAE           float64
	RMSE          float64
	R2            float64
	MeanActual    float64
	MeanPredicted float64
	BiasPct       float64 // |mean_predicted - mean_actual| / mean_actual * 100
}

// AccuracyReport extends MetricSet with error-distribution diagnostics and a
// confidence interval on the error distribution itself.
type AccuracyReport struct {
	MAPE           float64 // additive-constant variant: |err| / (actual+1) * 100
	MAE            float64
	RMSE           float64
	MeanError      float64
	StdError       float64 // population std of the error distribution
	MaxAbsError    float64
	MinAbsError    float64
	MedianAbsError float64
	ErrorCILower   float64 // 95% t-interval on the mean error
	ErrorCIUpper   float64
}

// ModelMetricsRecord is a persisted evaluation of one model run.
type ModelMetricsRecord struct {
	ModelID   string
	Metrics   MetricSet
	TestDate  time.Time // cutoff date of the chronological split
	CreatedAt time.Time
}
