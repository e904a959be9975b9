package domain

// EffectSize buckets Cohen's d by the conventional |d| thresholds.
type EffectSize string

const (
	EffectSmall  EffectSize = "small"  // |d| < 0.5
	EffectMedium EffectSize = "medium" // 0.5 <= |d| < 0.8
	EffectLarge  EffectSize = "large"  // |d| >= 0.8
)

// HypothesisTestResult is the outcome of a two-sample comparison of a target
// series partitioned by a boolean driver (promotion, holiday).
type HypothesisTestResult struct {
	GroupAMean  float64 // indicator true (promo / holiday days)
	GroupBMean  float64 // indicator false
	GroupAN     int
	GroupBN     int
	TStatistic  float64
	PValue      float64
	Significant bool // p < 0.05
	LiftPct     float64
	CohensD     float64
	Effect      EffectSize
}

// CorrelationResult is one feature's Pearson correlation against the target.
// Defined is false when the feature had too few observations; undefined
// entries sort last in any ranking.
type CorrelationResult struct {
	Feature     string
	Correlation float64
	PValue      float64
	Significant bool // p < 0.05
	N           int  // observations used
	Defined     bool
}

// StationarityResult is the outcome of an Augmented Dickey-Fuller test.
type StationarityResult struct {
	Statistic      float64
	PValue         float64
	UsedLag        int
	NObs           int
	CriticalValues map[string]float64 // keys "1%", "5%", "10%"
	Stationary     bool
}

// SampleInterval is a confidence interval for the mean of a sample, built on
// the Student-t distribution.
type SampleInterval struct {
	Lower      float64
	Upper      float64
	Mean       float64
	StdError   float64
	Confidence float64
}
