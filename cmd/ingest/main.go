package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/features"
	"revenue-lab/internal/ingest"
	"revenue-lab/internal/observability"
	"revenue-lab/internal/storage"
	chstore "revenue-lab/internal/storage/clickhouse"
	"revenue-lab/internal/storage/memory"
	"revenue-lab/internal/storage/migrations"
	pgstore "revenue-lab/internal/storage/postgres"
)

func main() {
	salesPath := flag.String("sales", "", "Sales CSV path (required)")
	oilPath := flag.String("oil", "", "Oil price CSV path (optional)")
	holidaysPath := flag.String("holidays", "", "Holidays CSV path (optional)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for the analytics mirror (optional)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL (dry run)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	flag.Parse()

	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger, *salesPath, *oilPath, *holidaysPath, *postgresDSN, *clickhouseDSN, *useMemory); err != nil {
		logger.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, logger *log.Logger, salesPath, oilPath, holidaysPath, postgresDSN, clickhouseDSN string, useMemory bool) error {
	if salesPath == "" {
		return fmt.Errorf("--sales is required")
	}
	if !useMemory && postgresDSN == "" {
		return fmt.Errorf("--postgres-dsn is required (use --use-memory for a dry run)")
	}

	records, err := loadDailySeries(logger, salesPath, oilPath, holidaysPath)
	if err != nil {
		return err
	}
	logger.Printf("Aggregated %d daily records (%s to %s)",
		len(records),
		records[0].Date.Format("2006-01-02"),
		records[len(records)-1].Date.Format("2006-01-02"))

	var dailyStore storage.DailySalesStore = memory.NewDailySalesStore()
	if !useMemory {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run postgres migrations: %w", err)
		}
		dailyStore = pgstore.NewDailySalesStore(pool)
	}

	if err := dailyStore.UpsertBulk(ctx, records); err != nil {
		return fmt.Errorf("upsert daily series: %w", err)
	}
	observability.RecordDailyRecordsUpserted(len(records))
	logger.Printf("Upserted %d daily records", len(records))

	// The ClickHouse mirror serves ad-hoc analytical queries over the same
	// series; the forecasting pipeline itself reads from Postgres.
	if clickhouseDSN != "" {
		if err := mirrorToClickhouse(ctx, logger, clickhouseDSN, records); err != nil {
			return err
		}
	}

	observability.MarkIngestionSuccess(float64(time.Now().Unix()))
	return nil
}

// loadDailySeries reads the raw CSVs and collapses them into the canonical
// one-row-per-date series. Oil and holiday files are optional.
func loadDailySeries(logger *log.Logger, salesPath, oilPath, holidaysPath string) ([]*domain.DailyRecord, error) {
	sales, err := ingest.LoadSalesFile(salesPath)
	if err != nil {
		observability.RecordIngestError("sales")
		return nil, fmt.Errorf("load sales: %w", err)
	}
	observability.RecordSalesRowsLoaded(len(sales))
	logger.Printf("Loaded %d sales rows from %s", len(sales), salesPath)

	var oil []*domain.OilPricePoint
	if oilPath != "" {
		oil, err = ingest.LoadOilFile(oilPath)
		if err != nil {
			observability.RecordIngestError("oil")
			return nil, fmt.Errorf("load oil prices: %w", err)
		}
		logger.Printf("Loaded %d oil price rows from %s", len(oil), oilPath)
	}

	var holidays []*domain.Holiday
	if holidaysPath != "" {
		holidays, err = ingest.LoadHolidaysFile(holidaysPath)
		if err != nil {
			observability.RecordIngestError("holidays")
			return nil, fmt.Errorf("load holidays: %w", err)
		}
		logger.Printf("Loaded %d holiday rows from %s", len(holidays), holidaysPath)
	}

	return features.Aggregate(sales, oil, holidays)
}

func mirrorToClickhouse(ctx context.Context, logger *log.Logger, dsn string, records []*domain.DailyRecord) error {
	conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
	if err != nil {
		return fmt.Errorf("run clickhouse migrations: %w", err)
	}
	defer conn.Close()

	if err := chstore.NewDailySalesStore(conn).UpsertBulk(ctx, records); err != nil {
		return fmt.Errorf("mirror daily series to clickhouse: %w", err)
	}
	logger.Printf("Mirrored %d daily records to ClickHouse", len(records))
	return nil
}
