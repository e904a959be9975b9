package reporting

import (
	"context"
	"strings"
	"testing"
	"time"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/model"
	"revenue-lab/internal/storage/memory"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d.UTC()
}

func ptr[T any](v T) *T {
	return &v
}

func seedStores(t *testing.T) (*memory.DailySalesStore, *memory.ForecastStore, *memory.ScenarioStore, *memory.ModelMetricsStore) {
	t.Helper()
	ctx := context.Background()

	daily := memory.NewDailySalesStore()
	err := daily.UpsertBulk(ctx, []*domain.DailyRecord{
		{Date: day(t, "2017-01-01"), Sales: 100, PromoCount: 0, IsHoliday: true},
		{Date: day(t, "2017-01-02"), Sales: 200, PromoCount: 3},
		{Date: day(t, "2017-01-03"), Sales: 300, PromoCount: 0},
	})
	if err != nil {
		t.Fatalf("seed daily sales: %v", err)
	}

	forecasts := memory.NewForecastStore()
	err = forecasts.UpsertBulk(ctx, []*domain.ForecastResult{
		{
			Date: day(t, "2017-01-04"), Point: 310,
			Lower: ptr(290.0), Upper: ptr(330.0), ConfidenceLevel: 0.95,
			Actual: ptr(305.0), ModelID: domain.ModelGBT, ScenarioID: domain.ScenarioBaseline,
		},
		{
			Date: day(t, "2017-01-05"), Point: 315, ConfidenceLevel: 0.95,
			ModelID: domain.ModelGBT, ScenarioID: domain.ScenarioBaseline,
		},
	})
	if err != nil {
		t.Fatalf("seed forecasts: %v", err)
	}

	scenarios := memory.NewScenarioStore()
	err = scenarios.Upsert(ctx, &domain.ScenarioRecord{
		ScenarioID: "promo+20",
		Spec: domain.ScenarioSpec{
			PromoChangePct: 20,
			HorizonDays:    30,
		},
		RevenueImpact: 4.5,
		CreatedAt:     day(t, "2017-01-04"),
	})
	if err != nil {
		t.Fatalf("seed scenarios: %v", err)
	}

	metrics := memory.NewModelMetricsStore()
	for _, m := range []*domain.ModelMetricsRecord{
		{ModelID: domain.ModelGBT, Metrics: domain.MetricSet{MAPE: 8.0, R2: 0.9}, CreatedAt: day(t, "2017-01-04")},
		{ModelID: domain.ModelBaseline, Metrics: domain.MetricSet{MAPE: 14.0, R2: 0.6}, CreatedAt: day(t, "2017-01-04")},
	} {
		if err := metrics.Insert(ctx, m); err != nil {
			t.Fatalf("seed metrics: %v", err)
		}
	}

	return daily, forecasts, scenarios, metrics
}

func TestGenerator_Generate(t *testing.T) {
	daily, forecasts, scenarios, metrics := seedStores(t)

	fixed := time.Date(2017, 1, 5, 12, 0, 0, 0, time.UTC)
	gen := NewGenerator(daily, forecasts, scenarios, metrics).
		WithClock(func() time.Time { return fixed })

	report, err := gen.Generate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !report.GeneratedAt.Equal(fixed) {
		t.Errorf("Expected fixed clock %v, got %v", fixed, report.GeneratedAt)
	}

	// Data summary
	if report.DataSummary.Days != 3 {
		t.Errorf("Expected 3 days, got %d", report.DataSummary.Days)
	}
	if report.DataSummary.TotalRevenue != 600 {
		t.Errorf("Expected total revenue 600, got %v", report.DataSummary.TotalRevenue)
	}
	if report.DataSummary.MeanDailyRevenue != 200 {
		t.Errorf("Expected mean daily revenue 200, got %v", report.DataSummary.MeanDailyRevenue)
	}
	if report.DataSummary.PromoDays != 1 || report.DataSummary.HolidayDays != 1 {
		t.Errorf("Expected 1 promo day and 1 holiday day, got %d and %d",
			report.DataSummary.PromoDays, report.DataSummary.HolidayDays)
	}
	if !report.DataSummary.DateRangeStart.Equal(day(t, "2017-01-01")) {
		t.Errorf("Unexpected range start %v", report.DataSummary.DateRangeStart)
	}

	// Model comparison: sorted by model ID (gbt before naive_lag1)
	if len(report.ModelComparison) != 2 {
		t.Fatalf("Expected 2 model rows, got %d", len(report.ModelComparison))
	}
	if report.ModelComparison[0].ModelID != domain.ModelGBT {
		t.Errorf("Expected gbt first, got %s", report.ModelComparison[0].ModelID)
	}
	if report.ModelComparison[0].MAPE != 8.0 {
		t.Errorf("Expected GBT MAPE 8.0, got %v", report.ModelComparison[0].MAPE)
	}

	// Forecasts
	if len(report.Forecasts) != 2 {
		t.Fatalf("Expected 2 forecast rows, got %d", len(report.Forecasts))
	}
	if report.Forecasts[0].Lower == nil || *report.Forecasts[0].Lower != 290 {
		t.Errorf("Expected lower bound 290, got %v", report.Forecasts[0].Lower)
	}
	if report.Forecasts[1].Lower != nil {
		t.Errorf("Expected nil lower bound on second row")
	}

	// Scenarios
	if len(report.Scenarios) != 1 {
		t.Fatalf("Expected 1 scenario row, got %d", len(report.Scenarios))
	}
	if report.Scenarios[0].RevenueImpact != 4.5 {
		t.Errorf("Expected impact 4.5, got %v", report.Scenarios[0].RevenueImpact)
	}
}

func TestGenerator_GenerateEmptyStores(t *testing.T) {
	gen := NewGenerator(
		memory.NewDailySalesStore(),
		memory.NewForecastStore(),
		memory.NewScenarioStore(),
		memory.NewModelMetricsStore(),
	)

	report, err := gen.Generate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Generate on empty stores failed: %v", err)
	}
	if report.DataSummary.Days != 0 {
		t.Errorf("Expected 0 days, got %d", report.DataSummary.Days)
	}
	if len(report.Forecasts) != 0 || len(report.Scenarios) != 0 {
		t.Errorf("Expected empty sections")
	}
}

func TestRenderMarkdown_Sections(t *testing.T) {
	daily, forecasts, scenarios, metrics := seedStores(t)

	gen := NewGenerator(daily, forecasts, scenarios, metrics)
	analysis := &Analysis{
		FeatureImportance: []model.Importance{
			{Feature: domain.ColLag1, Score: 0.42},
			{Feature: domain.ColPromoCount, Score: 0.18},
		},
		PromotionTest: &domain.HypothesisTestResult{
			GroupAMean: 250, GroupBMean: 180, GroupAN: 10, GroupBN: 20,
			TStatistic: 2.4, PValue: 0.021, Significant: true,
			LiftPct: 38.9, CohensD: 0.9, Effect: domain.EffectLarge,
		},
		Correlations: []*domain.CorrelationResult{
			{Feature: domain.ColLag1, Correlation: 0.85, PValue: 0.001, Significant: true, N: 100, Defined: true},
			{Feature: domain.ColIsHoliday, N: 5, Defined: false},
		},
		Stationarity: &domain.StationarityResult{
			Statistic: -3.5, PValue: 0.008, UsedLag: 2, NObs: 97,
			CriticalValues: map[string]float64{"1%": -3.5, "5%": -2.89, "10%": -2.58},
			Stationary:     true,
		},
	}

	report, err := gen.Generate(context.Background(), analysis)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)

	for _, want := range []string{
		"# Revenue Forecast Report",
		"## Data Summary",
		"## Model Comparison",
		"## Feature Importance",
		"## Hypothesis Tests",
		"## Revenue Correlations",
		"## Stationarity (ADF)",
		"## Forecasts",
		"## Scenario Impacts",
		"Promotion vs none",
		"undefined", // undefined correlation rendered without a value
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q", want)
		}
	}
}

func TestRenderMarkdown_NoAnalysis(t *testing.T) {
	daily, forecasts, scenarios, metrics := seedStores(t)

	report, err := NewGenerator(daily, forecasts, scenarios, metrics).Generate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)
	if strings.Contains(md, "## Feature Importance") {
		t.Errorf("Analysis sections must be omitted without analysis data")
	}
}

func TestRenderForecastCSV(t *testing.T) {
	rows := []ForecastRow{
		{Date: day(t, "2017-01-04"), Point: 310, Lower: ptr(290.0), Upper: ptr(330.0), Actual: ptr(305.0)},
		{Date: day(t, "2017-01-05"), Point: 315},
	}

	csv := RenderForecastCSV(rows)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "date,point,lower,upper,actual" {
		t.Errorf("Unexpected header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2017-01-04,310.000000,290.000000") {
		t.Errorf("Unexpected first row: %s", lines[1])
	}
	if !strings.Contains(lines[2], ",,,") {
		t.Errorf("Missing bounds should render empty: %s", lines[2])
	}
}

func TestRenderMetricsCSV(t *testing.T) {
	rows := []ModelMetricRow{
		{ModelID: domain.ModelGBT, MAPE: 8.0, MAE: 12.0, RMSE: 18.0, R2: 0.9, BiasPct: 0.5},
	}

	csv := RenderMetricsCSV(rows)
	if !strings.HasPrefix(csv, "model_id,mape,mae,rmse,r2,bias_pct\n") {
		t.Errorf("Unexpected header in %q", csv)
	}
	if !strings.Contains(csv, "gbt,8.000000") {
		t.Errorf("Missing metrics row in %q", csv)
	}
}
