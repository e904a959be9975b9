package memory

import (
	"context"
	"errors"
	"testing"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/storage"
)

func TestForecastStore_UpsertAndGetByModel(t *testing.T) {
	store := NewForecastStore()
	ctx := context.Background()

	forecasts := []*domain.ForecastResult{
		{Date: day("2017-08-02"), Point: 210, ModelID: domain.ModelGBT, ScenarioID: domain.ScenarioBaseline},
		{Date: day("2017-08-01"), Point: 200, ModelID: domain.ModelGBT, ScenarioID: domain.ScenarioBaseline},
		{Date: day("2017-08-01"), Point: 190, ModelID: domain.ModelBaseline, ScenarioID: domain.ScenarioBaseline},
	}

	if err := store.UpsertBulk(ctx, forecasts); err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}

	result, err := store.GetByModel(ctx, domain.ModelGBT)
	if err != nil {
		t.Fatalf("GetByModel failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 forecasts, got %d", len(result))
	}
	if !result[0].Date.Equal(day("2017-08-01")) {
		t.Errorf("Expected date-ascending order, got %v first", result[0].Date)
	}
}

func TestForecastStore_UpsertOverwrites(t *testing.T) {
	store := NewForecastStore()
	ctx := context.Background()

	f := &domain.ForecastResult{Date: day("2017-08-01"), Point: 200, ModelID: domain.ModelGBT, ScenarioID: domain.ScenarioBaseline}
	if err := store.UpsertBulk(ctx, []*domain.ForecastResult{f}); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}

	f2 := *f
	f2.Point = 215
	if err := store.UpsertBulk(ctx, []*domain.ForecastResult{&f2}); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	result, _ := store.GetByModel(ctx, domain.ModelGBT)
	if len(result) != 1 {
		t.Fatalf("Expected 1 forecast after overwrite, got %d", len(result))
	}
	if result[0].Point != 215 {
		t.Errorf("Expected overwritten point 215, got %v", result[0].Point)
	}
}

func TestForecastStore_GetByScenario(t *testing.T) {
	store := NewForecastStore()
	ctx := context.Background()

	forecasts := []*domain.ForecastResult{
		{Date: day("2017-08-01"), Point: 200, ModelID: domain.ModelGBT, ScenarioID: domain.ScenarioBaseline},
		{Date: day("2017-08-01"), Point: 230, ModelID: domain.ModelGBT, ScenarioID: "promo+20"},
		{Date: day("2017-08-02"), Point: 235, ModelID: domain.ModelGBT, ScenarioID: "promo+20"},
	}
	if err := store.UpsertBulk(ctx, forecasts); err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}

	result, err := store.GetByScenario(ctx, "promo+20")
	if err != nil {
		t.Fatalf("GetByScenario failed: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("Expected 2 scenario forecasts, got %d", len(result))
	}
}

func TestForecastStore_GetByDateRange(t *testing.T) {
	store := NewForecastStore()
	ctx := context.Background()

	forecasts := []*domain.ForecastResult{
		{Date: day("2017-08-01"), Point: 200, ModelID: domain.ModelGBT, ScenarioID: domain.ScenarioBaseline},
		{Date: day("2017-08-02"), Point: 210, ModelID: domain.ModelGBT, ScenarioID: domain.ScenarioBaseline},
		{Date: day("2017-08-03"), Point: 220, ModelID: domain.ModelGBT, ScenarioID: domain.ScenarioBaseline},
	}
	if err := store.UpsertBulk(ctx, forecasts); err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}

	result, err := store.GetByDateRange(ctx, domain.ModelGBT, domain.ScenarioBaseline, day("2017-08-01"), day("2017-08-02"))
	if err != nil {
		t.Fatalf("GetByDateRange failed: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("Expected 2 forecasts in inclusive range, got %d", len(result))
	}
}

func TestForecastStore_InvalidInput(t *testing.T) {
	store := NewForecastStore()
	ctx := context.Background()

	err := store.UpsertBulk(ctx, []*domain.ForecastResult{nil})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil forecast, got %v", err)
	}

	err = store.UpsertBulk(ctx, []*domain.ForecastResult{{Date: day("2017-08-01"), ModelID: "", ScenarioID: domain.ScenarioBaseline}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty model ID, got %v", err)
	}
}
