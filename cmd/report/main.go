package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"revenue-lab/internal/reporting"
	"revenue-lab/internal/storage"
	"revenue-lab/internal/storage/memory"
	"revenue-lab/internal/storage/migrations"
	pgstore "revenue-lab/internal/storage/postgres"
)

// report regenerates the markdown and CSV outputs from persisted data alone.
// Statistical sections that only exist in-memory during a pipeline run are
// omitted; run cmd/pipeline for a full report.
func main() {
	outputDir := flag.String("output-dir", "docs", "Output directory for generated files")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use empty in-memory stores (smoke test)")
	flag.Parse()

	logger := log.New(os.Stdout, "[report] ", log.LstdFlags|log.Lshortfile)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger, *outputDir, *postgresDSN, *useMemory); err != nil {
		logger.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, logger *log.Logger, outputDir, postgresDSN string, useMemory bool) error {
	if !useMemory && postgresDSN == "" {
		return fmt.Errorf("--postgres-dsn is required (use --use-memory for a smoke test)")
	}

	var (
		dailyStore    storage.DailySalesStore
		forecastStore storage.ForecastStore
		scenarioStore storage.ScenarioStore
		metricsStore  storage.ModelMetricsStore
	)
	if useMemory {
		dailyStore = memory.NewDailySalesStore()
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

	report, err := reporting.NewGenerator(dailyStore, forecastStore, scenarioStore, metricsStore).
		Generate(ctx, nil)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	md := reporting.RenderMarkdown(report)
	if err := os.WriteFile(filepath.Join(outputDir, "REPORT.md"), []byte(md), 0644); err != nil {
		return err
	}

	forecastCSV := reporting.RenderForecastCSV(report.Forecasts)
	if err := os.WriteFile(filepath.Join(outputDir, "forecasts.csv"), []byte(forecastCSV), 0644); err != nil {
		return err
	}

	metricsCSV := reporting.RenderMetricsCSV(report.ModelComparison)
	if err := os.WriteFile(filepath.Join(outputDir, "model_metrics.csv"), []byte(metricsCSV), 0644); err != nil {
		return err
	}

	logger.Printf("Report generated from storage (%d days, %d models, %d scenarios):",
		report.DataSummary.Days, report.ModelCount, len(report.Scenarios))
	logger.Printf("  - %s/REPORT.md", outputDir)
	logger.Printf("  - %s/forecasts.csv", outputDir)
	logger.Printf("  - %s/model_metrics.csv", outputDir)

	return nil
}
