package inference

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"revenue-lab/internal/domain"
)

// ConfidenceInterval computes a two-sided confidence interval for the mean of
// a sample using the Student-t distribution with n-1 degrees of freedom.
// The t distribution, not the normal approximation, because sample sizes here
// may be small. Requires at least two values.
func ConfidenceInterval(values []float64, confidence float64) (*domain.SampleInterval, error) {
	if confidence <= 0 || confidence >= 1 {
		return nil, fmt.Errorf("%w: confidence must be in (0, 1), got %v", domain.ErrData, confidence)
	}
	n := len(values)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 values for a confidence interval, got %d", domain.ErrStatUndefined, n)
	}

	mean := stat.Mean(values, nil)
	stdErr := stat.StdDev(values, nil) / math.Sqrt(float64(n))

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	h := stdErr * tDist.Quantile((1+confidence)/2)

	return &domain.SampleInterval{
		Lower:      mean - h,
		Upper:      mean + h,
		Mean:       mean,
		StdError:   stdErr,
		Confidence: confidence,
	}, nil
}

// Band is one forecast point with its symmetric confidence band.
type Band struct {
	Forecast float64
	Lower    float64
	Upper    float64
}

// ForecastBands builds per-point confidence bands around a forecast array
// from the historical error distribution: margin = z(confidence) * std(errors).
//
// The normal quantile (not t) is deliberate: the band is meant to reflect a
// large historical-error sample. With a small error sample this is a known
// approximation, not a bug.
func ForecastBands(forecasts, historicalErrors []float64, confidence float64) ([]Band, error) {
	if confidence <= 0 || confidence >= 1 {
		return nil, fmt.Errorf("%w: confidence must be in (0, 1), got %v", domain.ErrData, confidence)
	}
	if len(forecasts) == 0 {
		return nil, fmt.Errorf("%w: empty forecast array", domain.ErrData)
	}
	if len(historicalErrors) == 0 {
		return nil, fmt.Errorf("%w: empty historical error sample", domain.ErrData)
	}

	errStd := populationStd(historicalErrors)
	z := distuv.UnitNormal.Quantile((1 + confidence) / 2)
	margin := z * errStd

	bands := make([]Band, len(forecasts))
	for i, f := range forecasts {
		bands[i] = Band{Forecast: f, Lower: f - margin, Upper: f + margin}
	}
	return bands, nil
}

// populationStd is the n-denominator standard deviation: the error
// distribution is treated as the full population of observed errors.
func populationStd(values []float64) float64 {
	mean := stat.Mean(values, nil)
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
