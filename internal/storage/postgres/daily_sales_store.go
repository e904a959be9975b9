package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/storage"
)

// DailySalesStore implements storage.DailySalesStore using PostgreSQL.
type DailySalesStore struct {
	pool *Pool
}

// NewDailySalesStore creates a new DailySalesStore.
func NewDailySalesStore(pool *Pool) *DailySalesStore {
	return &DailySalesStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DailySalesStore = (*DailySalesStore)(nil)

// UpsertBulk writes daily records keyed by date, overwriting existing rows.
func (s *DailySalesStore) UpsertBulk(ctx context.Context, records []*domain.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO daily_sales (date, sales, promo_count, oil_price, is_holiday)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (date) DO UPDATE SET
			sales = EXCLUDED.sales,
			promo_count = EXCLUDED.promo_count,
			oil_price = EXCLUDED.oil_price,
			is_holiday = EXCLUDED.is_holiday
	`

	for _, r := range records {
		if r == nil || r.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			r.Date, r.Sales, r.PromoCount, r.OilPrice, r.IsHoliday,
		)
		if err != nil {
			return fmt.Errorf("upsert daily record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetAll retrieves the full series ordered by date ASC.
func (s *DailySalesStore) GetAll(ctx context.Context) ([]*domain.DailyRecord, error) {
	query := `
		SELECT date, sales, promo_count, oil_price, is_holiday
		FROM daily_sales
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all daily records: %w", err)
	}
	defer rows.Close()

	return scanDailyRecords(rows)
}

// GetByDateRange retrieves records within [start, end] (inclusive).
func (s *DailySalesStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.DailyRecord, error) {
	query := `
		SELECT date, sales, promo_count, oil_price, is_holiday
		FROM daily_sales
		WHERE date >= $1 AND date <= $2
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get daily records by date range: %w", err)
	}
	defer rows.Close()

	return scanDailyRecords(rows)
}

// scanDailyRecords scans multiple rows into a slice of DailyRecord.
func scanDailyRecords(rows pgx.Rows) ([]*domain.DailyRecord, error) {
	var records []*domain.DailyRecord

	for rows.Next() {
		var r domain.DailyRecord

		err := rows.Scan(&r.Date, &r.Sales, &r.PromoCount, &r.OilPrice, &r.IsHoliday)
		if err != nil {
			return nil, fmt.Errorf("scan daily record row: %w", err)
		}

		r.Date = r.Date.UTC()
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily record rows: %w", err)
	}

	return records, nil
}
