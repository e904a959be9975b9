package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"revenue-lab/internal/cache"
	"revenue-lab/internal/domain"
	"revenue-lab/internal/model"
	"revenue-lab/internal/pipeline"
	"revenue-lab/internal/storage"
	"revenue-lab/internal/storage/memory"
	"revenue-lab/internal/storage/migrations"
	pgstore "revenue-lab/internal/storage/postgres"
)

const cacheSize = 32

func main() {
	cutoffStr := flag.String("cutoff", "", "Chronological split date YYYY-MM-DD (default: last quarter held out)")
	confidence := flag.Float64("confidence", 0.95, "Confidence level for forecast bands")
	scenarios := flag.String("scenarios", "20,0,30;-20,0,30;0,10,30;0,-10,30",
		"Semicolon-separated what-if specs as promoPct,oilPct,horizonDays")
	outputDir := flag.String("output-dir", "docs", "Output directory for report files")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	useFixtures := flag.Bool("use-fixtures", false, "Run against in-memory synthetic fixtures")
	numTrees := flag.Int("num-trees", 0, "Override ensemble size (0 = default)")
	learningRate := flag.Float64("learning-rate", 0, "Override learning rate (0 = default)")
	maxDepth := flag.Int("max-depth", 0, "Override tree depth (0 = default)")
	seed := flag.Int64("seed", 0, "Override sampling seed (0 = default)")
	flag.Parse()

	logger := log.New(os.Stdout, "[pipeline] ", log.LstdFlags|log.Lshortfile)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger, *cutoffStr, *confidence, *scenarios, *outputDir, *postgresDSN, *useFixtures,
		*numTrees, *learningRate, *maxDepth, *seed); err != nil {
		logger.Fatalf("Error: %v", err)
	}
}

func run(
	ctx context.Context,
	logger *log.Logger,
	cutoffStr string,
	confidence float64,
	scenarioStr, outputDir, postgresDSN string,
	useFixtures bool,
	numTrees int,
	learningRate float64,
	maxDepth int,
	seed int64,
) error {
	if !useFixtures && postgresDSN == "" {
		return fmt.Errorf("--postgres-dsn is required (use --use-fixtures for demo data)")
	}

	specs, err := parseScenarios(scenarioStr)
	if err != nil {
		return err
	}

	var (
		dailyStore    storage.DailySalesStore
		forecastStore storage.ForecastStore
		scenarioStore storage.ScenarioStore
		metricsStore  storage.ModelMetricsStore
	)
	if useFixtures {
		mem := memory.NewDailySalesStore()
		if err := pipeline.LoadFixtures(ctx, mem); err != nil {
			return fmt.Errorf("load fixtures: %w", err)
		}
		logger.Println("Loaded synthetic fixtures into memory stores")
		dailyStore = mem
		forecastStore = memory.NewForecastStore()
		scenarioStore = memory.NewScenarioStore()
		metricsStore = memory.NewModelMetricsStore()
	} else {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run postgres migrations: %w", err)
		}
		dailyStore = pgstore.NewDailySalesStore(pool)
		forecastStore = pgstore.NewForecastStore(pool)
		scenarioStore = pgstore.NewScenarioStore(pool)
		metricsStore = pgstore.NewModelMetricsStore(pool)
	}

	cutoff, err := resolveCutoff(ctx, cutoffStr, dailyStore)
	if err != nil {
		return err
	}
	logger.Printf("Training cutoff: %s", cutoff.Format("2006-01-02"))

	results, err := cache.New(cacheSize)
	if err != nil {
		return fmt.Errorf("create result cache: %w", err)
	}

	params := model.DefaultParams()
	if numTrees > 0 {
		params.NumTrees = numTrees
	}
	if learningRate > 0 {
		params.LearningRate = learningRate
	}
	if maxDepth > 0 {
		params.MaxDepth = maxDepth
	}
	if seed != 0 {
		params.Seed = seed
	}

	p := pipeline.New(dailyStore, forecastStore, scenarioStore, metricsStore).WithCache(results)

	result, err := p.Run(ctx, pipeline.Config{
		Cutoff:     cutoff,
		Confidence: confidence,
		Params:     &params,
		Scenarios:  specs,
		OutputDir:  outputDir,
	})
	if err != nil {
		return err
	}

	logger.Printf("Run complete: data=%s train=%s (%d train rows, %d test rows)",
		result.DataHash[:12], result.TrainHash[:12], result.TrainRows, result.TestRows)
	logger.Printf("%s: MAPE=%.2f%% RMSE=%.2f R2=%.4f",
		domain.ModelGBT, result.GBTMetrics.MAPE, result.GBTMetrics.RMSE, result.GBTMetrics.R2)
	logger.Printf("%s: MAPE=%.2f%% RMSE=%.2f R2=%.4f",
		domain.ModelBaseline, result.BaselineMetrics.MAPE, result.BaselineMetrics.RMSE, result.BaselineMetrics.R2)
	for _, s := range result.Scenarios {
		logger.Printf("Scenario %s: revenue impact %+.2f%%", s.ScenarioID, s.RevenueImpact)
	}
	logger.Printf("Report written to %s", outputDir)

	return nil
}

// resolveCutoff parses the cutoff flag, or derives a default split that
// reserves the last quarter of the stored series for evaluation.
func resolveCutoff(ctx context.Context, cutoffStr string, store storage.DailySalesStore) (time.Time, error) {
	if cutoffStr != "" {
		cutoff, err := time.Parse("2006-01-02", cutoffStr)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse --cutoff: %w", err)
		}
		return cutoff.UTC(), nil
	}

	records, err := store.GetAll(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("load daily series for default cutoff: %w", err)
	}
	if len(records) == 0 {
		return time.Time{}, fmt.Errorf("%w: no daily history ingested", domain.ErrData)
	}
	return records[len(records)*3/4].Date, nil
}

// parseScenarios parses "promoPct,oilPct,horizonDays" triples separated by
// semicolons, e.g. "20,0,30;0,-10,14".
func parseScenarios(s string) ([]domain.ScenarioSpec, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var specs []domain.ScenarioSpec
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("parse --scenarios: %q is not promoPct,oilPct,horizonDays", part)
		}
		promo, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse --scenarios: promo pct in %q: %w", part, err)
		}
		oil, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse --scenarios: oil pct in %q: %w", part, err)
		}
		horizon, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			return nil, fmt.Errorf("parse --scenarios: horizon in %q: %w", part, err)
		}
		specs = append(specs, domain.ScenarioSpec{
			PromoChangePct: promo,
			OilChangePct:   oil,
			HorizonDays:    horizon,
		})
	}
	return specs, nil
}
