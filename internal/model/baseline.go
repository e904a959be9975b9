package model

import (
	"fmt"

	"revenue-lab/internal/domain"
)

// BaselinePredict is the naive lag-1 predictor: yesterday's actual sales as
// today's forecast. It exists purely as an improvement yardstick for the
// boosted ensemble.
//
// When horizon exceeds the available lag history the output is right-padded
// by repeating the edge value, so baseline and model forecasts always have
// equal length for comparison.
func BaselinePredict(lag1 []float64, horizon int) ([]float64, error) {
	if len(lag1) == 0 {
		return nil, fmt.Errorf("%w: empty lag history", domain.ErrData)
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("%w: non-positive horizon %d", domain.ErrData, horizon)
	}

	out := make([]float64, horizon)
	n := copy(out, lag1)
	for i := n; i < horizon; i++ {
		out[i] = lag1[len(lag1)-1]
	}
	return out, nil
}

// BaselinePredictTable runs the naive predictor over a feature table's lag_1
// column for the table's full length.
func BaselinePredictTable(t *domain.FeatureTable) ([]float64, error) {
	lag1, err := t.Column(domain.ColLag1)
	if err != nil {
		return nil, err
	}
	return BaselinePredict(lag1, t.Len())
}
