package scenario

import (
	"errors"
	"math"
	"testing"
	"time"

	"revenue-lab/internal/domain"
)

func scenarioTable(n int) *domain.FeatureTable {
	t := domain.NewFeatureTable(n)
	promo := t.Columns[domain.ColPromoCount]
	oil := t.Columns[domain.ColOilPrice]
	base := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		t.Dates[i] = base.AddDate(0, 0, i)
		t.Sales[i] = float64(100 + i)
		promo[i] = 10
		oil[i] = 50
	}
	return t
}

func TestApply_ScalesDrivers(t *testing.T) {
	table := scenarioTable(5)
	spec := domain.ScenarioSpec{PromoChangePct: 20, OilChangePct: -10, HorizonDays: 5}

	out, err := Apply(table, spec)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	promo, _ := out.Column(domain.ColPromoCount)
	oil, _ := out.Column(domain.ColOilPrice)
	for i := 0; i < 5; i++ {
		if math.Abs(promo[i]-12) > 1e-9 {
			t.Errorf("row %d: expected promo 12, got %f", i, promo[i])
		}
		if math.Abs(oil[i]-45) > 1e-9 {
			t.Errorf("row %d: expected oil 45, got %f", i, oil[i])
		}
		if out.Sales[i] != table.Sales[i] {
			t.Errorf("row %d: sales must not change under a scenario", i)
		}
	}

	// The source table is untouched.
	srcPromo, _ := table.Column(domain.ColPromoCount)
	if srcPromo[0] != 10 {
		t.Errorf("Apply mutated the source table: promo[0]=%f", srcPromo[0])
	}
}

func TestApply_ZeroChangeIsIdentity(t *testing.T) {
	table := scenarioTable(5)

	out, err := Apply(table, domain.ScenarioSpec{HorizonDays: 5})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	promo, _ := out.Column(domain.ColPromoCount)
	oil, _ := out.Column(domain.ColOilPrice)
	for i := 0; i < 5; i++ {
		if promo[i] != 10 || oil[i] != 50 {
			t.Errorf("row %d: identity scenario changed drivers: promo=%f oil=%f", i, promo[i], oil[i])
		}
	}
}

func TestHorizon_TrimsToTail(t *testing.T) {
	table := scenarioTable(10)

	out, err := Horizon(table, domain.ScenarioSpec{HorizonDays: 3})
	if err != nil {
		t.Fatalf("Horizon returned error: %v", err)
	}
	if out.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", out.Len())
	}
	if !out.Dates[0].Equal(table.Dates[7]) {
		t.Errorf("expected window to start at row 7, got %v", out.Dates[0])
	}
	if !out.Dates[2].Equal(table.Dates[9]) {
		t.Errorf("expected window to end at the last row, got %v", out.Dates[2])
	}
}

func TestHorizon_Validation(t *testing.T) {
	table := scenarioTable(10)

	if _, err := Horizon(table, domain.ScenarioSpec{HorizonDays: 0}); !errors.Is(err, domain.ErrData) {
		t.Errorf("expected ErrData for zero horizon, got %v", err)
	}
	if _, err := Horizon(table, domain.ScenarioSpec{HorizonDays: 11}); !errors.Is(err, domain.ErrData) {
		t.Errorf("expected ErrData for horizon past table length, got %v", err)
	}
}
