package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/storage"
)

// ScenarioStore implements storage.ScenarioStore using PostgreSQL.
type ScenarioStore struct {
	pool *Pool
}

// NewScenarioStore creates a new ScenarioStore.
func NewScenarioStore(pool *Pool) *ScenarioStore {
	return &ScenarioStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ScenarioStore = (*ScenarioStore)(nil)

// Upsert writes a scenario result, overwriting an existing scenario_id.
func (s *ScenarioStore) Upsert(ctx context.Context, rec *domain.ScenarioRecord) error {
	if rec == nil || rec.ScenarioID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO scenarios (
			scenario_id, promo_change_pct, oil_change_pct, horizon_days,
			revenue_impact, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (scenario_id) DO UPDATE SET
			promo_change_pct = EXCLUDED.promo_change_pct,
			oil_change_pct = EXCLUDED.oil_change_pct,
			horizon_days = EXCLUDED.horizon_days,
			revenue_impact = EXCLUDED.revenue_impact,
			created_at = EXCLUDED.created_at
	`

	_, err := s.pool.Exec(ctx, query,
		rec.ScenarioID, rec.Spec.PromoChangePct, rec.Spec.OilChangePct, rec.Spec.HorizonDays,
		rec.RevenueImpact, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert scenario: %w", err)
	}
	return nil
}

// GetByID retrieves a scenario by its ID. Returns ErrNotFound if not exists.
func (s *ScenarioStore) GetByID(ctx context.Context, scenarioID string) (*domain.ScenarioRecord, error) {
	query := `
		SELECT scenario_id, promo_change_pct, oil_change_pct, horizon_days,
			revenue_impact, created_at
		FROM scenarios
		WHERE scenario_id = $1
	`

	row := s.pool.QueryRow(ctx, query, scenarioID)
	rec, err := scanScenario(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get scenario by id: %w", err)
	}
	return rec, nil
}

// GetAll retrieves all scenarios, ordered by created_at ASC.
func (s *ScenarioStore) GetAll(ctx context.Context) ([]*domain.ScenarioRecord, error) {
	query := `
		SELECT scenario_id, promo_change_pct, oil_change_pct, horizon_days,
			revenue_impact, created_at
		FROM scenarios
		ORDER BY created_at ASC, scenario_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []*domain.ScenarioRecord
	for rows.Next() {
		rec, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scenario row: %w", err)
		}
		scenarios = append(scenarios, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenario rows: %w", err)
	}

	return scenarios, nil
}

// scanScenario scans a single row into a ScenarioRecord.
func scanScenario(row pgx.Row) (*domain.ScenarioRecord, error) {
	var rec domain.ScenarioRecord

	err := row.Scan(
		&rec.ScenarioID, &rec.Spec.PromoChangePct, &rec.Spec.OilChangePct, &rec.Spec.HorizonDays,
		&rec.RevenueImpact, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}
