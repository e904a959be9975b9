package domain

import "errors"

// Error taxonomy for the forecasting engine.
//
// Statistical functions that can legitimately have "no answer" (insufficient
// data, zero denominator) return an error wrapping ErrStatUndefined so batch
// callers can render partial results. Structurally invalid inputs (wrong
// shapes, unknown columns) wrap ErrData or ErrModel and abort the call.
var (
	// ErrData indicates malformed or missing input data: empty series,
	// missing required columns, empty comparison groups.
	ErrData = errors.New("invalid input data")

	// ErrStatUndefined indicates a degenerate input to a statistical
	// function: fewer than two samples for a CI, zero pooled variance,
	// a correlation with too few observations.
	ErrStatUndefined = errors.New("statistic undefined for input")

	// ErrModel indicates a training or prediction shape mismatch between
	// features and target.
	ErrModel = errors.New("model input mismatch")
)
