package reporting

import (
	"context"
	"sort"
	"time"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/storage"
)

// Generator produces reports from stored data.
type Generator struct {
	dailySalesStore   storage.DailySalesStore
	forecastStore     storage.ForecastStore
	scenarioStore     storage.ScenarioStore
	modelMetricsStore storage.ModelMetricsStore
	now               func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(
	dailyStore storage.DailySalesStore,
	forecastStore storage.ForecastStore,
	scenarioStore storage.ScenarioStore,
	metricsStore storage.ModelMetricsStore,
) *Generator {
	return &Generator{
		dailySalesStore:   dailyStore,
		forecastStore:     forecastStore,
		scenarioStore:     scenarioStore,
		modelMetricsStore: metricsStore,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete report. The analysis section is optional:
// a report regenerated from storage alone passes nil and gets the persisted
// sections only.
func (g *Generator) Generate(ctx context.Context, analysis *Analysis) (*Report, error) {
	dataSummary, err := g.generateDataSummary(ctx)
	if err != nil {
		return nil, err
	}

	comparison, err := g.generateModelComparison(ctx)
	if err != nil {
		return nil, err
	}

	forecasts, err := g.generateForecasts(ctx)
	if err != nil {
		return nil, err
	}

	scenarios, err := g.generateScenarios(ctx)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt:     g.now(),
		ModelCount:      len(comparison),
		DataSummary:     *dataSummary,
		ModelComparison: comparison,
		Analysis:        analysis,
		Forecasts:       forecasts,
		Scenarios:       scenarios,
	}, nil
}

// generateDataSummary describes the stored daily series.
func (g *Generator) generateDataSummary(ctx context.Context) (*DataSummary, error) {
	records, err := g.dailySalesStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &DataSummary{Days: len(records)}
	if len(records) == 0 {
		return summary, nil
	}

	// Records come back date-ascending.
	summary.DateRangeStart = records[0].Date
	summary.DateRangeEnd = records[len(records)-1].Date

	for _, r := range records {
		summary.TotalRevenue += r.Sales
		if r.PromoCount > 0 {
			summary.PromoDays++
		}
		if r.IsHoliday {
			summary.HolidayDays++
		}
	}
	summary.MeanDailyRevenue = summary.TotalRevenue / float64(len(records))

	return summary, nil
}

// generateModelComparison builds rows from the latest metrics per model.
func (g *Generator) generateModelComparison(ctx context.Context) ([]ModelMetricRow, error) {
	latest, err := g.modelMetricsStore.GetLatest(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]ModelMetricRow, len(latest))
	for i, m := range latest {
		rows[i] = ModelMetricRow{
			ModelID: m.ModelID,
			MAPE:    m.Metrics.MAPE,
			MAE:     m.Metrics.MAE,
			RMSE:    m.Metrics.RMSE,
			R2:      m.Metrics.R2,
			BiasPct: m.Metrics.BiasPct,
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].ModelID < rows[j].ModelID
	})

	return rows, nil
}

// generateForecasts loads the champion model's baseline-scenario forecasts.
func (g *Generator) generateForecasts(ctx context.Context) ([]ForecastRow, error) {
	forecasts, err := g.forecastStore.GetByModel(ctx, domain.ModelGBT)
	if err != nil {
		return nil, err
	}

	rows := make([]ForecastRow, len(forecasts))
	for i, f := range forecasts {
		rows[i] = ForecastRow{
			Date:   f.Date,
			Point:  f.Point,
			Lower:  f.Lower,
			Upper:  f.Upper,
			Actual: f.Actual,
		}
	}

	return rows, nil
}

// generateScenarios builds scenario impact rows.
func (g *Generator) generateScenarios(ctx context.Context) ([]ScenarioRow, error) {
	scenarios, err := g.scenarioStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]ScenarioRow, 0, len(scenarios))
	for _, s := range scenarios {
		if s.ScenarioID == domain.ScenarioBaseline {
			continue
		}
		rows = append(rows, ScenarioRow{
			ScenarioID:     s.ScenarioID,
			PromoChangePct: s.Spec.PromoChangePct,
			OilChangePct:   s.Spec.OilChangePct,
			HorizonDays:    s.Spec.HorizonDays,
			RevenueImpact:  s.RevenueImpact,
		})
	}

	return rows, nil
}
