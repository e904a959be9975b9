package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/storage"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d.UTC()
}

func TestDailySalesStore_UpsertAndGetAll(t *testing.T) {
	store := NewDailySalesStore()
	ctx := context.Background()

	records := []*domain.DailyRecord{
		{Date: day("2017-01-02"), Sales: 200, PromoCount: 3},
		{Date: day("2017-01-01"), Sales: 100, PromoCount: 1},
	}

	if err := store.UpsertBulk(ctx, records); err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}

	result, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(result))
	}
	if !result[0].Date.Equal(day("2017-01-01")) {
		t.Errorf("Expected date-ascending order, got %v first", result[0].Date)
	}
}

func TestDailySalesStore_UpsertOverwrites(t *testing.T) {
	store := NewDailySalesStore()
	ctx := context.Background()

	if err := store.UpsertBulk(ctx, []*domain.DailyRecord{{Date: day("2017-01-01"), Sales: 100}}); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	if err := store.UpsertBulk(ctx, []*domain.DailyRecord{{Date: day("2017-01-01"), Sales: 250}}); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	result, _ := store.GetAll(ctx)
	if len(result) != 1 {
		t.Fatalf("Expected 1 record after overwrite, got %d", len(result))
	}
	if result[0].Sales != 250 {
		t.Errorf("Expected overwritten sales 250, got %v", result[0].Sales)
	}
}

func TestDailySalesStore_GetByDateRange(t *testing.T) {
	store := NewDailySalesStore()
	ctx := context.Background()

	records := []*domain.DailyRecord{
		{Date: day("2017-01-01"), Sales: 100},
		{Date: day("2017-01-02"), Sales: 200},
		{Date: day("2017-01-03"), Sales: 300},
	}
	if err := store.UpsertBulk(ctx, records); err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}

	result, err := store.GetByDateRange(ctx, day("2017-01-02"), day("2017-01-03"))
	if err != nil {
		t.Fatalf("GetByDateRange failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 records in inclusive range, got %d", len(result))
	}
	if result[0].Sales != 200 || result[1].Sales != 300 {
		t.Errorf("Unexpected range contents: %v, %v", result[0].Sales, result[1].Sales)
	}
}

func TestDailySalesStore_InvalidInput(t *testing.T) {
	store := NewDailySalesStore()
	ctx := context.Background()

	err := store.UpsertBulk(ctx, []*domain.DailyRecord{nil})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil record, got %v", err)
	}

	err = store.UpsertBulk(ctx, []*domain.DailyRecord{{}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for zero date, got %v", err)
	}
}

func TestDailySalesStore_CopyIsolation(t *testing.T) {
	store := NewDailySalesStore()
	ctx := context.Background()

	rec := &domain.DailyRecord{Date: day("2017-01-01"), Sales: 100}
	if err := store.UpsertBulk(ctx, []*domain.DailyRecord{rec}); err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}

	rec.Sales = 999
	result, _ := store.GetAll(ctx)
	if result[0].Sales != 100 {
		t.Errorf("Store must copy inputs; got mutated sales %v", result[0].Sales)
	}
}
