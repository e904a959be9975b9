package features

import (
	"math"

	"revenue-lab/internal/domain"
)

// Impute resolves NaN cells in every column of the table, in place, using
// backward-fill, then forward-fill, then zero-fill, in that exact order.
// Applied once after all derived columns are computed so early-history rows
// (which cannot have full lookback) still receive a defined value rather than
// being dropped.
func Impute(t *domain.FeatureTable) {
	for _, col := range t.Columns {
		imputeColumn(col)
	}
}

func imputeColumn(col []float64) {
	// Backward fill: each NaN takes the next valid value below it.
	next := math.NaN()
	for i := len(col) - 1; i >= 0; i-- {
		if math.IsNaN(col[i]) {
			col[i] = next
		} else {
			next = col[i]
		}
	}
	// Forward fill: each remaining NaN takes the last valid value above it.
	last := math.NaN()
	for i := range col {
		if math.IsNaN(col[i]) {
			col[i] = last
		} else {
			last = col[i]
		}
	}
	// Zero fill: all-NaN columns become zeros.
	for i := range col {
		if math.IsNaN(col[i]) {
			col[i] = 0
		}
	}
}
