package evaluation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/inference"
)

// zeroActualEps bounds the MAPE denominator: rows with |actual| below this
// are excluded from the MAPE mean rather than allowed to blow up the metric.
const zeroActualEps = 1e-9

// Evaluate computes the point-accuracy metric set for an (actual, predicted)
// pair. MAPE excludes zero-valued actuals; an all-zero actual series makes
// MAPE and bias undefined and is returned as a statistical-undefined error.
func Evaluate(actual, predicted []float64) (*domain.MetricSet, error) {
	n := len(actual)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty series", domain.ErrData)
	}
	if len(predicted) != n {
		return nil, fmt.Errorf("%w: %d actuals vs %d predictions", domain.ErrData, n, len(predicted))
	}

	meanActual := stat.Mean(actual, nil)
	meanPredicted := stat.Mean(predicted, nil)

	sumAbs := 0.0
	sumSq := 0.0
	mapeSum := 0.0
	mapeN := 0
	ssTot := 0.0
	for i := range actual {
		err := actual[i] - predicted[i]
		sumAbs += math.Abs(err)
		sumSq += err * err
		dev := actual[i] - meanActual
		ssTot += dev * dev
		if math.Abs(actual[i]) > zeroActualEps {
			mapeSum += math.Abs(err) / math.Abs(actual[i])
			mapeN++
		}
	}
	if mapeN == 0 {
		return nil, fmt.Errorf("%w: all actuals are zero; MAPE undefined", domain.ErrStatUndefined)
	}
	if math.Abs(meanActual) <= zeroActualEps {
		return nil, fmt.Errorf("%w: mean actual is zero; bias undefined", domain.ErrStatUndefined)
	}

	m := &domain.MetricSet{
		MAPE:          mapeSum / float64(mapeN) * 100,
		MAE:           sumAbs / float64(n),
		RMSE:          math.Sqrt(sumSq / float64(n)),
		MeanActual:    meanActual,
		MeanPredicted: meanPredicted,
		BiasPct:       math.Abs(meanPredicted-meanActual) / math.Abs(meanActual) * 100,
	}

	// R2: a zero-variance actual series yields 1 for a perfect fit, 0 for
	// anything else.
	switch {
	case ssTot > 0:
		m.R2 = 1 - sumSq/ssTot
	case sumSq == 0:
		m.R2 = 1
	default:
		m.R2 = 0
	}

	return m, nil
}

// ComprehensiveAccuracy extends the point metrics with error-distribution
// diagnostics and a 95% t-interval on the error mean. Its MAPE variant guards
// the denominator with the additive constant (actual + 1) instead of
// excluding rows, matching the persisted historical metric.
func ComprehensiveAccuracy(actual, predicted []float64) (*domain.AccuracyReport, error) {
	n := len(actual)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty series", domain.ErrData)
	}
	if len(predicted) != n {
		return nil, fmt.Errorf("%w: %d actuals vs %d predictions", domain.ErrData, n, len(predicted))
	}

	errs := make([]float64, n)
	absErrs := make([]float64, n)
	sumSq := 0.0
	pctSum := 0.0
	for i := range actual {
		e := actual[i] - predicted[i]
		errs[i] = e
		absErrs[i] = math.Abs(e)
		sumSq += e * e
		pctSum += math.Abs(e) / (actual[i] + 1) * 100
	}

	sortedAbs := append([]float64(nil), absErrs...)
	sort.Float64s(sortedAbs)

	report := &domain.AccuracyReport{
		MAPE:           pctSum / float64(n),
		MAE:            stat.Mean(absErrs, nil),
		RMSE:           math.Sqrt(sumSq / float64(n)),
		MeanError:      stat.Mean(errs, nil),
		StdError:       populationStd(errs),
		MaxAbsError:    sortedAbs[n-1],
		MinAbsError:    sortedAbs[0],
		MedianAbsError: median(sortedAbs),
	}

	ci, err := inference.ConfidenceInterval(errs, 0.95)
	if err == nil {
		report.ErrorCILower = ci.Lower
		report.ErrorCIUpper = ci.Upper
	} else if !isStatUndefined(err) {
		return nil, err
	}

	return report, nil
}

func isStatUndefined(err error) bool {
	return errors.Is(err, domain.ErrStatUndefined)
}

// median of a pre-sorted slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func populationStd(values []float64) float64 {
	mean := stat.Mean(values, nil)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
