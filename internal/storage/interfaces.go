package storage

import (
	"context"
	"time"

	"revenue-lab/internal/domain"
)

// DailySalesStore provides access to the canonical aggregated daily series.
type DailySalesStore interface {
	// UpsertBulk writes daily records keyed by date. Re-ingesting a date
	// overwrites the previous row, so repeated ingest runs are idempotent.
	UpsertBulk(ctx context.Context, records []*domain.DailyRecord) error

	// GetAll retrieves the full series ordered by date ASC.
	GetAll(ctx context.Context) ([]*domain.DailyRecord, error)

	// GetByDateRange retrieves records within [start, end] (inclusive),
	// ordered by date ASC.
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.DailyRecord, error)
}

// ForecastStore provides access to forecast storage.
type ForecastStore interface {
	// UpsertBulk writes forecasts keyed by (date, model_id, scenario_id).
	// Re-running a pipeline for the same key overwrites the previous row.
	UpsertBulk(ctx context.Context, forecasts []*domain.ForecastResult) error

	// GetByModel retrieves all forecasts for a model under the baseline
	// scenario, ordered by date ASC.
	GetByModel(ctx context.Context, modelID string) ([]*domain.ForecastResult, error)

	// GetByScenario retrieves all forecasts for a scenario, ordered by
	// date ASC.
	GetByScenario(ctx context.Context, scenarioID string) ([]*domain.ForecastResult, error)

	// GetByDateRange retrieves forecasts for a model/scenario pair within
	// [start, end] (inclusive), ordered by date ASC.
	GetByDateRange(ctx context.Context, modelID, scenarioID string, start, end time.Time) ([]*domain.ForecastResult, error)
}

// ScenarioStore provides access to scenario run storage.
type ScenarioStore interface {
	// Upsert writes a scenario result keyed by scenario_id. Re-running the
	// same scenario overwrites the previous result.
	Upsert(ctx context.Context, s *domain.ScenarioRecord) error

	// GetByID retrieves a scenario by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, scenarioID string) (*domain.ScenarioRecord, error)

	// GetAll retrieves all scenarios, ordered by created_at ASC.
	GetAll(ctx context.Context) ([]*domain.ScenarioRecord, error)
}

// ModelMetricsStore provides access to model accuracy history.
type ModelMetricsStore interface {
	// Insert appends a metrics row. History is append-only so accuracy
	// drift across runs stays observable.
	Insert(ctx context.Context, m *domain.ModelMetricsRecord) error

	// GetByModel retrieves all metric rows for a model, ordered by
	// created_at ASC.
	GetByModel(ctx context.Context, modelID string) ([]*domain.ModelMetricsRecord, error)

	// GetLatest retrieves the most recent metrics row per model.
	GetLatest(ctx context.Context) ([]*domain.ModelMetricsRecord, error)
}
