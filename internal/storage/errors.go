package storage

import "errors"

// Storage errors.
//
// Forecast, scenario and daily-series stores are upsert stores: rewriting a
// key overwrites the previous row. Model metrics are append-only history and
// never conflict because each run inserts a fresh row.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
