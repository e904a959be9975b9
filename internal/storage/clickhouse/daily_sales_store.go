package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/storage"
)

// DailySalesStore implements storage.DailySalesStore using ClickHouse.
//
// The table is a ReplacingMergeTree keyed by date: upserting a date inserts a
// new version and reads collapse to the latest with FINAL.
type DailySalesStore struct {
	conn *Conn
}

// NewDailySalesStore creates a new DailySalesStore.
func NewDailySalesStore(conn *Conn) *DailySalesStore {
	return &DailySalesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DailySalesStore = (*DailySalesStore)(nil)

// UpsertBulk writes daily records keyed by date, overwriting existing rows.
func (s *DailySalesStore) UpsertBulk(ctx context.Context, records []*domain.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, r := range records {
		if r == nil || r.Date.IsZero() {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO daily_sales (date, sales, promo_count, oil_price, is_holiday)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err = batch.Append(r.Date, r.Sales, int64(r.PromoCount), r.OilPrice, r.IsHoliday)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetAll retrieves the full series ordered by date ASC.
func (s *DailySalesStore) GetAll(ctx context.Context) ([]*domain.DailyRecord, error) {
	query := `
		SELECT date, sales, promo_count, oil_price, is_holiday
		FROM daily_sales FINAL
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all daily records: %w", err)
	}
	defer rows.Close()

	return scanDailyRecords(rows)
}

// GetByDateRange retrieves records within [start, end] (inclusive).
func (s *DailySalesStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.DailyRecord, error) {
	query := `
		SELECT date, sales, promo_count, oil_price, is_holiday
		FROM daily_sales FINAL
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query daily records by date range: %w", err)
	}
	defer rows.Close()

	return scanDailyRecords(rows)
}

// scanDailyRecords scans multiple rows.
func scanDailyRecords(rows driver.Rows) ([]*domain.DailyRecord, error) {
	var records []*domain.DailyRecord

	for rows.Next() {
		var r domain.DailyRecord
		var promoCount int64

		err := rows.Scan(&r.Date, &r.Sales, &promoCount, &r.OilPrice, &r.IsHoliday)
		if err != nil {
			return nil, fmt.Errorf("scan daily record row: %w", err)
		}

		r.PromoCount = int(promoCount)
		r.Date = r.Date.UTC()
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily record rows: %w", err)
	}

	return records, nil
}
