// Package main is the entry point for the survey intake command.
//
// The command parses a CSV export of survey responses, runs migrations if
// asked, and bulk-loads the records into the survey response table.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/wellbeing-hub/survey-insights/config"
	"github.com/wellbeing-hub/survey-insights/internal/infrastructure/dataset"
	"github.com/wellbeing-hub/survey-insights/internal/infrastructure/persistence/postgres"
	"github.com/wellbeing-hub/survey-insights/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. FLAGS AND CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	var (
		file    = flag.String("file", "", "path to the CSV export (required)")
		migrate = flag.Bool("migrate", false, "run schema migrations before loading")
	)
	flag.Parse()

	if *file == "" {
		flag.Usage()
		return fmt.Errorf("missing required -file flag")
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.Observability.AddCaller,
	}).With(logger.Component("cmd.ingest"))

	// ─────────────────────────────────────────────────────────────────────────
	// 2. PARSE DATASET
	// Parsing happens before connecting so a malformed file costs nothing.
	// ─────────────────────────────────────────────────────────────────────────
	start := time.Now()
	records, err := dataset.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}
	log.Info("parsed dataset",
		logger.String("file", *file),
		logger.RecordCount(len(records)),
		logger.Latency(time.Since(start)),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE
	// ─────────────────────────────────────────────────────────────────────────
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	if *migrate {
		log.Info("running migrations")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. LOAD
	// ─────────────────────────────────────────────────────────────────────────
	repo := postgres.NewSurveyRepository(dbConn, cfg.Report.Table)

	inserted, err := repo.InsertBatch(ctx, records)
	if err != nil {
		return fmt.Errorf("failed to insert records: %w", err)
	}

	total, err := repo.CountAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	log.Info("intake complete",
		logger.Int("inserted", inserted),
		logger.Int("table_total", total),
	)
	fmt.Printf("loaded %d records (%d total in %s)\n", inserted, total, cfg.Report.Table)

	return nil
}
