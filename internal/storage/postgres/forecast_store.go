package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/storage"
)

// ForecastStore implements storage.ForecastStore using PostgreSQL.
type ForecastStore struct {
	pool *Pool
}

// NewForecastStore creates a new ForecastStore.
func NewForecastStore(pool *Pool) *ForecastStore {
	return &ForecastStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ForecastStore = (*ForecastStore)(nil)

const forecastColumns = `
	date, model_id, scenario_id, point, lower_bound, upper_bound,
	confidence_level, actual
`

// UpsertBulk writes forecasts, overwriting existing (date, model, scenario) rows.
func (s *ForecastStore) UpsertBulk(ctx context.Context, forecasts []*domain.ForecastResult) error {
	if len(forecasts) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO forecasts (
			date, model_id, scenario_id, point, lower_bound, upper_bound,
			confidence_level, actual
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (date, model_id, scenario_id) DO UPDATE SET
			point = EXCLUDED.point,
			lower_bound = EXCLUDED.lower_bound,
			upper_bound = EXCLUDED.upper_bound,
			confidence_level = EXCLUDED.confidence_level,
			actual = EXCLUDED.actual
	`

	for _, f := range forecasts {
		if f == nil || f.ModelID == "" || f.ScenarioID == "" || f.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			f.Date, f.ModelID, f.ScenarioID, f.Point, f.Lower, f.Upper,
			f.ConfidenceLevel, f.Actual,
		)
		if err != nil {
			return fmt.Errorf("upsert forecast: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByModel retrieves all baseline-scenario forecasts for a model, ordered by date ASC.
func (s *ForecastStore) GetByModel(ctx context.Context, modelID string) ([]*domain.ForecastResult, error) {
	query := `
		SELECT ` + forecastColumns + `
		FROM forecasts
		WHERE model_id = $1 AND scenario_id = $2
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, modelID, domain.ScenarioBaseline)
	if err != nil {
		return nil, fmt.Errorf("get forecasts by model: %w", err)
	}
	defer rows.Close()

	return scanForecasts(rows)
}

// GetByScenario retrieves all forecasts for a scenario, ordered by date ASC.
func (s *ForecastStore) GetByScenario(ctx context.Context, scenarioID string) ([]*domain.ForecastResult, error) {
	query := `
		SELECT ` + forecastColumns + `
		FROM forecasts
		WHERE scenario_id = $1
		ORDER BY date ASC, model_id ASC
	`

	rows, err := s.pool.Query(ctx, query, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("get forecasts by scenario: %w", err)
	}
	defer rows.Close()

	return scanForecasts(rows)
}

// GetByDateRange retrieves forecasts for a model/scenario pair within [start, end] (inclusive).
func (s *ForecastStore) GetByDateRange(ctx context.Context, modelID, scenarioID string, start, end time.Time) ([]*domain.ForecastResult, error) {
	query := `
		SELECT ` + forecastColumns + `
		FROM forecasts
		WHERE model_id = $1 AND scenario_id = $2 AND date >= $3 AND date <= $4
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, modelID, scenarioID, start, end)
	if err != nil {
		return nil, fmt.Errorf("get forecasts by date range: %w", err)
	}
	defer rows.Close()

	return scanForecasts(rows)
}

// scanForecasts scans multiple rows into a slice of ForecastResult.
func scanForecasts(rows pgx.Rows) ([]*domain.ForecastResult, error) {
	var forecasts []*domain.ForecastResult

	for rows.Next() {
		var f domain.ForecastResult

		err := rows.Scan(
			&f.Date, &f.ModelID, &f.ScenarioID, &f.Point, &f.Lower, &f.Upper,
			&f.ConfidenceLevel, &f.Actual,
		)
		if err != nil {
			return nil, fmt.Errorf("scan forecast row: %w", err)
		}

		f.Date = f.Date.UTC()
		forecasts = append(forecasts, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forecast rows: %w", err)
	}

	return forecasts, nil
}
