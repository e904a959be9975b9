package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/storage"
)

// ModelMetricsStore implements storage.ModelMetricsStore using PostgreSQL.
type ModelMetricsStore struct {
	pool *Pool
}

// NewModelMetricsStore creates a new ModelMetricsStore.
func NewModelMetricsStore(pool *Pool) *ModelMetricsStore {
	return &ModelMetricsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ModelMetricsStore = (*ModelMetricsStore)(nil)

const modelMetricsColumns = `
	model_id, mape, mae, rmse, r2, mean_actual, mean_predicted, bias_pct,
	test_date, created_at
`

// Insert appends a metrics row.
func (s *ModelMetricsStore) Insert(ctx context.Context, m *domain.ModelMetricsRecord) error {
	if m == nil || m.ModelID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO model_metrics (
			model_id, mape, mae, rmse, r2, mean_actual, mean_predicted, bias_pct,
			test_date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		m.ModelID, m.Metrics.MAPE, m.Metrics.MAE, m.Metrics.RMSE, m.Metrics.R2,
		m.Metrics.MeanActual, m.Metrics.MeanPredicted, m.Metrics.BiasPct,
		m.TestDate, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert model metrics: %w", err)
	}
	return nil
}

// GetByModel retrieves all metric rows for a model, ordered by created_at ASC.
func (s *ModelMetricsStore) GetByModel(ctx context.Context, modelID string) ([]*domain.ModelMetricsRecord, error) {
	query := `
		SELECT ` + modelMetricsColumns + `
		FROM model_metrics
		WHERE model_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, modelID)
	if err != nil {
		return nil, fmt.Errorf("get model metrics by model: %w", err)
	}
	defer rows.Close()

	return scanModelMetrics(rows)
}

// GetLatest retrieves the most recent metrics row per model.
func (s *ModelMetricsStore) GetLatest(ctx context.Context) ([]*domain.ModelMetricsRecord, error) {
	query := `
		SELECT DISTINCT ON (model_id) ` + modelMetricsColumns + `
		FROM model_metrics
		ORDER BY model_id ASC, created_at DESC, id DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get latest model metrics: %w", err)
	}
	defer rows.Close()

	return scanModelMetrics(rows)
}

// scanModelMetrics scans multiple rows into a slice of ModelMetricsRecord.
func scanModelMetrics(rows pgx.Rows) ([]*domain.ModelMetricsRecord, error) {
	var records []*domain.ModelMetricsRecord

	for rows.Next() {
		var m domain.ModelMetricsRecord

		err := rows.Scan(
			&m.ModelID, &m.Metrics.MAPE, &m.Metrics.MAE, &m.Metrics.RMSE, &m.Metrics.R2,
			&m.Metrics.MeanActual, &m.Metrics.MeanPredicted, &m.Metrics.BiasPct,
			&m.TestDate, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan model metrics row: %w", err)
		}

		m.TestDate = m.TestDate.UTC()
		m.CreatedAt = m.CreatedAt.UTC()
		records = append(records, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate model metrics rows: %w", err)
	}

	return records, nil
}
