package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"revenue-lab/internal/cache"
	"revenue-lab/internal/domain"
	"revenue-lab/internal/evaluation"
	"revenue-lab/internal/features"
	"revenue-lab/internal/inference"
	"revenue-lab/internal/model"
	"revenue-lab/internal/observability"
	"revenue-lab/internal/reporting"
	"revenue-lab/internal/runhash"
	"revenue-lab/internal/scenario"
	"revenue-lab/internal/storage"
)

// Defaults applied when the corresponding Config field is zero.
const (
	defaultConfidence      = 0.95
	defaultStationaryAlpha = 0.05
	defaultTopCorrelations = 10
)

// Config parameterizes one pipeline run.
type Config struct {
	// Cutoff is the chronological split date. Rows up to and including the
	// cutoff train the model; rows from the cutoff on evaluate it.
	Cutoff time.Time

	// Confidence for forecast bands, in (0, 1). Zero means 0.95.
	Confidence float64

	// Params overrides the boosting hyperparameters. Nil means defaults.
	Params *model.Params

	// Scenarios to evaluate as what-if runs against the trained model.
	Scenarios []domain.ScenarioSpec

	// OutputDir receives REPORT.md, forecasts.csv and model_metrics.csv.
	// Empty skips file output.
	OutputDir string
}

// Result summarizes one pipeline run.
type Result struct {
	DataHash  string
	TrainHash string
	TrainRows int
	TestRows  int

	GBTMetrics      *domain.MetricSet
	BaselineMetrics *domain.MetricSet
	Scenarios       []*domain.ScenarioRecord
	Sufficiency     *SufficiencyResult
	Report          *reporting.Report
}

// Pipeline orchestrates a full run: feature build, chronological split,
// training, evaluation, banded forecasts, statistical analysis, scenario
// what-ifs and report generation, persisting each stage as it goes.
type Pipeline struct {
	dailyStore    storage.DailySalesStore
	forecastStore storage.ForecastStore
	scenarioStore storage.ScenarioStore
	metricsStore  storage.ModelMetricsStore
	results       *cache.Results
	clock         func() time.Time
}

// New creates a pipeline over the given stores.
func New(
	dailyStore storage.DailySalesStore,
	forecastStore storage.ForecastStore,
	scenarioStore storage.ScenarioStore,
	metricsStore storage.ModelMetricsStore,
) *Pipeline {
	return &Pipeline{
		dailyStore:    dailyStore,
		forecastStore: forecastStore,
		scenarioStore: scenarioStore,
		metricsStore:  metricsStore,
		clock:         func() time.Time { return time.Now().UTC() },
	}
}

// WithCache attaches a result cache. Feature tables are keyed by the data
// hash, trained models by the training-run hash, so repeated runs over
// unchanged data skip the expensive stages.
func (p *Pipeline) WithCache(c *cache.Results) *Pipeline {
	p.results = c
	return p
}

// WithClock sets a custom clock function for deterministic output.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	return p
}

// Run executes the full pipeline against the stored daily series.
func (p *Pipeline) Run(ctx context.Context, cfg Config) (*Result, error) {
	start := time.Now()
	result, err := p.run(ctx, cfg)
	if err != nil {
		observability.RecordPipelineRun("error", time.Since(start).Seconds())
		return nil, err
	}
	observability.RecordPipelineRun("ok", time.Since(start).Seconds())
	observability.MarkPipelineSuccess(float64(p.clock().Unix()))
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, cfg Config) (*Result, error) {
	confidence := cfg.Confidence
	if confidence == 0 {
		confidence = defaultConfidence
	}
	params := model.DefaultParams()
	if cfg.Params != nil {
		params = *cfg.Params
	}

	records, err := p.dailyStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load daily series: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no daily history ingested", domain.ErrData)
	}

	sufficiency := CheckSufficiency(records, cfg.Cutoff)
	if !sufficiency.AllPass {
		return nil, fmt.Errorf("%w: insufficient data: %s",
			domain.ErrData, strings.Join(sufficiency.FailedNames(), ", "))
	}

	dataHash := runhash.DailySeries(records)
	table, err := p.buildTable(dataHash, records)
	if err != nil {
		return nil, err
	}

	train, test, err := features.Split(table, cfg.Cutoff)
	if err != nil {
		return nil, err
	}

	trainHash := runhash.TrainingRun(dataHash, cfg.Cutoff.Format("2006-01-02"), params)
	gbt, err := p.trainModel(trainHash, params, train)
	if err != nil {
		return nil, err
	}

	gbtPred, err := gbt.PredictTable(test)
	if err != nil {
		return nil, err
	}
	basePred, err := model.BaselinePredictTable(test)
	if err != nil {
		return nil, err
	}

	now := p.clock()

	gbtMetrics, err := evaluation.Evaluate(test.Sales, gbtPred)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", domain.ModelGBT, err)
	}
	baseMetrics, err := evaluation.Evaluate(test.Sales, basePred)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", domain.ModelBaseline, err)
	}
	for _, rec := range []*domain.ModelMetricsRecord{
		{ModelID: domain.ModelGBT, Metrics: *gbtMetrics, TestDate: cfg.Cutoff, CreatedAt: now},
		{ModelID: domain.ModelBaseline, Metrics: *baseMetrics, TestDate: cfg.Cutoff, CreatedAt: now},
	} {
		if err := p.metricsStore.Insert(ctx, rec); err != nil {
			return nil, fmt.Errorf("persist metrics: %w", err)
		}
	}

	if err := p.persistForecasts(ctx, gbt, train, test, gbtPred, basePred, confidence); err != nil {
		return nil, err
	}

	analysis, err := p.analyze(gbt, table)
	if err != nil {
		return nil, err
	}

	scenarios, err := p.runScenarios(ctx, gbt, table, trainHash, cfg.Scenarios, now)
	if err != nil {
		return nil, err
	}

	report, err := reporting.NewGenerator(p.dailyStore, p.forecastStore, p.scenarioStore, p.metricsStore).
		WithClock(p.clock).
		Generate(ctx, analysis)
	if err != nil {
		return nil, err
	}
	observability.RecordReportGenerated()

	if cfg.OutputDir != "" {
		if err := p.writeOutputs(cfg.OutputDir, report); err != nil {
			return nil, err
		}
	}

	return &Result{
		DataHash:        dataHash,
		TrainHash:       trainHash,
		TrainRows:       train.Len(),
		TestRows:        test.Len(),
		GBTMetrics:      gbtMetrics,
		BaselineMetrics: baseMetrics,
		Scenarios:       scenarios,
		Sufficiency:     sufficiency,
		Report:          report,
	}, nil
}

// buildTable derives the feature table, consulting the cache by data hash.
func (p *Pipeline) buildTable(dataHash string, records []*domain.DailyRecord) (*domain.FeatureTable, error) {
	if p.results != nil {
		if t, ok := p.results.Table(dataHash); ok {
			observability.RecordCacheHit()
			return t, nil
		}
		observability.RecordCacheMiss()
	}
	t, err := features.BuildTable(records)
	if err != nil {
		return nil, err
	}
	if p.results != nil {
		p.results.PutTable(dataHash, t)
	}
	return t, nil
}

// trainModel fits the ensemble, consulting the cache by training-run hash.
func (p *Pipeline) trainModel(trainHash string, params model.Params, train *domain.FeatureTable) (*model.GBT, error) {
	if p.results != nil {
		if m, ok := p.results.Model(trainHash); ok {
			observability.RecordCacheHit()
			return m, nil
		}
		observability.RecordCacheMiss()
	}
	gbt := model.NewGBT(params)
	if err := gbt.FitTable(train); err != nil {
		return nil, err
	}
	if p.results != nil {
		p.results.PutModel(trainHash, gbt)
	}
	return gbt, nil
}

// persistForecasts writes the test-window forecasts for both models under
// the baseline scenario. The boosted model carries confidence bands derived
// from its training residuals; the naive baseline is persisted as bare
// points. Actuals are attached since the test window is historical.
func (p *Pipeline) persistForecasts(
	ctx context.Context,
	gbt *model.GBT,
	train, test *domain.FeatureTable,
	gbtPred, basePred []float64,
	confidence float64,
) error {
	trainPred, err := gbt.PredictTable(train)
	if err != nil {
		return err
	}
	residuals := make([]float64, train.Len())
	for i := range residuals {
		residuals[i] = train.Sales[i] - trainPred[i]
	}

	bands, err := inference.ForecastBands(gbtPred, residuals, confidence)
	if err != nil {
		return err
	}

	forecasts := make([]*domain.ForecastResult, 0, 2*test.Len())
	for i, date := range test.Dates {
		actual := test.Sales[i]
		lower, upper := bands[i].Lower, bands[i].Upper
		forecasts = append(forecasts, &domain.ForecastResult{
			Date:            date,
			Point:           gbtPred[i],
			Lower:           &lower,
			Upper:           &upper,
			ConfidenceLevel: confidence,
			Actual:          &actual,
			ModelID:         domain.ModelGBT,
			ScenarioID:      domain.ScenarioBaseline,
		})
		baseActual := actual
		forecasts = append(forecasts, &domain.ForecastResult{
			Date:       date,
			Point:      basePred[i],
			Actual:     &baseActual,
			ModelID:    domain.ModelBaseline,
			ScenarioID: domain.ScenarioBaseline,
		})
	}
	if err := p.forecastStore.UpsertBulk(ctx, forecasts); err != nil {
		return fmt.Errorf("persist forecasts: %w", err)
	}
	observability.RecordForecastsPersisted(len(forecasts))
	return nil
}

// analyze runs the statistical battery over the full feature table.
// Undefined statistics (a series with no promo days, say) are omitted from
// the analysis rather than failing the run.
func (p *Pipeline) analyze(gbt *model.GBT, table *domain.FeatureTable) (*reporting.Analysis, error) {
	analysis := &reporting.Analysis{}

	importance, err := gbt.FeatureImportance()
	if err != nil {
		return nil, err
	}
	analysis.FeatureImportance = importance

	promo, err := inference.PromotionImpact(table)
	if err != nil && !errors.Is(err, domain.ErrStatUndefined) {
		return nil, err
	}
	analysis.PromotionTest = promo

	holiday, err := inference.HolidayImpact(table)
	if err != nil && !errors.Is(err, domain.ErrStatUndefined) {
		return nil, err
	}
	analysis.HolidayTest = holiday

	analysis.Correlations = inference.ScreenCorrelations(table, defaultTopCorrelations)

	stationarity, err := inference.StationarityTest(table.Sales, defaultStationaryAlpha)
	if err != nil && !errors.Is(err, domain.ErrStatUndefined) {
		return nil, err
	}
	analysis.Stationarity = stationarity

	return analysis, nil
}

// runScenarios evaluates each what-if spec over the tail of the series and
// persists the scenario record plus its per-day forecasts. The revenue
// impact is the percent change of summed forecasts against the unperturbed
// forecast over the same window.
func (p *Pipeline) runScenarios(
	ctx context.Context,
	gbt *model.GBT,
	table *domain.FeatureTable,
	trainHash string,
	specs []domain.ScenarioSpec,
	now time.Time,
) ([]*domain.ScenarioRecord, error) {
	records := make([]*domain.ScenarioRecord, 0, len(specs))
	for _, spec := range specs {
		window, err := scenario.Horizon(table, spec)
		if err != nil {
			return nil, err
		}

		basePred, err := gbt.PredictTable(window)
		if err != nil {
			return nil, err
		}

		perturbed, err := p.scenarioTable(window, trainHash, spec)
		if err != nil {
			return nil, err
		}
		scenPred, err := gbt.PredictTable(perturbed)
		if err != nil {
			return nil, err
		}

		var baseSum, scenSum float64
		for i := range basePred {
			baseSum += basePred[i]
			scenSum += scenPred[i]
		}
		if baseSum == 0 {
			return nil, fmt.Errorf("%w: zero baseline forecast sum, scenario impact undefined", domain.ErrStatUndefined)
		}
		impact := (scenSum - baseSum) / baseSum * 100

		rec := &domain.ScenarioRecord{
			ScenarioID:    ScenarioID(spec),
			Spec:          spec,
			RevenueImpact: impact,
			CreatedAt:     now,
		}
		if err := p.scenarioStore.Upsert(ctx, rec); err != nil {
			return nil, fmt.Errorf("persist scenario %s: %w", rec.ScenarioID, err)
		}

		forecasts := make([]*domain.ForecastResult, len(scenPred))
		for i, date := range perturbed.Dates {
			forecasts[i] = &domain.ForecastResult{
				Date:       date,
				Point:      scenPred[i],
				ModelID:    domain.ModelGBT,
				ScenarioID: rec.ScenarioID,
			}
		}
		if err := p.forecastStore.UpsertBulk(ctx, forecasts); err != nil {
			return nil, fmt.Errorf("persist scenario forecasts %s: %w", rec.ScenarioID, err)
		}
		observability.RecordForecastsPersisted(len(forecasts))
		observability.RecordScenarioEvaluated()

		records = append(records, rec)
	}
	return records, nil
}

// scenarioTable applies the what-if transform, consulting the cache by the
// scenario hash so repeated runs reuse the perturbed table.
func (p *Pipeline) scenarioTable(window *domain.FeatureTable, trainHash string, spec domain.ScenarioSpec) (*domain.FeatureTable, error) {
	key := runhash.Scenario(trainHash, spec)
	if p.results != nil {
		if t, ok := p.results.Table(key); ok {
			return t, nil
		}
	}
	perturbed, err := scenario.Apply(window, spec)
	if err != nil {
		return nil, err
	}
	if p.results != nil {
		p.results.PutTable(key, perturbed)
	}
	return perturbed, nil
}

// ScenarioID derives a readable, stable identifier from a scenario spec.
func ScenarioID(spec domain.ScenarioSpec) string {
	return fmt.Sprintf("promo%+g_oil%+g_h%d", spec.PromoChangePct, spec.OilChangePct, spec.HorizonDays)
}

// writeOutputs renders the report files into the output directory:
// REPORT.md, forecasts.csv and model_metrics.csv.
func (p *Pipeline) writeOutputs(dir string, report *reporting.Report) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	md := reporting.RenderMarkdown(report)
	if err := os.WriteFile(filepath.Join(dir, "REPORT.md"), []byte(md), 0644); err != nil {
		return err
	}

	forecastCSV := reporting.RenderForecastCSV(report.Forecasts)
	if err := os.WriteFile(filepath.Join(dir, "forecasts.csv"), []byte(forecastCSV), 0644); err != nil {
		return err
	}

	metricsCSV := reporting.RenderMetricsCSV(report.ModelComparison)
	return os.WriteFile(filepath.Join(dir, "model_metrics.csv"), []byte(metricsCSV), 0644)
}
