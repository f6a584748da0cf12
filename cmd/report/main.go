// Package main is the entry point for the survey report command.
//
// The command loads the survey response table, computes the wellbeing
// summary by length of stay (and optionally the data quality report),
// renders the result to stdout, and can publish the summary snapshot to
// Redis for downstream consumers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/wellbeing-hub/survey-insights/config"
	"github.com/wellbeing-hub/survey-insights/internal/application/query"
	"github.com/wellbeing-hub/survey-insights/internal/application/reportdef"
	"github.com/wellbeing-hub/survey-insights/internal/domain/shared"
	"github.com/wellbeing-hub/survey-insights/internal/infrastructure/persistence/postgres"
	"github.com/wellbeing-hub/survey-insights/internal/infrastructure/persistence/redis"
	"github.com/wellbeing-hub/survey-insights/internal/interface/cli"
	"github.com/wellbeing-hub/survey-insights/pkg/logger"
	"github.com/wellbeing-hub/survey-insights/pkg/retry"
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
		classification = flag.String("classification", "", "respondent filter: international, domestic, or all")
		limit          = flag.Int("limit", 0, "maximum number of stay groups (0 uses the configured default)")
		sortDir        = flag.String("sort", "", "group order by stay years: asc or desc")
		quality        = flag.Bool("quality", false, "also print the data quality report")
		publish        = flag.Bool("publish", false, "publish the summary snapshot to Redis")
	)
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.Observability.AddCaller,
	}).With(logger.Component("cmd.report"))
	log.Info("starting survey report",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE
	// ─────────────────────────────────────────────────────────────────────────
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	repo := postgres.NewSurveyRepository(dbConn, cfg.Report.Table)

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REPORT DEFINITION
	// A definition file overrides the built-in reference report.
	// ─────────────────────────────────────────────────────────────────────────
	q := query.GetStaySummaryQuery{
		Classification: cfg.Report.Classification,
		Limit:          cfg.Report.GroupLimit,
	}
	if cfg.Report.DefinitionPath != "" {
		def, err := reportdef.Load(cfg.Report.DefinitionPath)
		if err != nil {
			return fmt.Errorf("failed to load report definition: %w", err)
		}
		// Resolve now so a broken definition fails before touching the DB.
		if _, err := def.ToConfig(); err != nil {
			return fmt.Errorf("invalid report definition: %w", err)
		}
		log.Info("using report definition", logger.String("name", def.Name))

		if def.Classification != "" {
			q.Classification = def.Classification
		}
		if def.Limit > 0 {
			q.Limit = def.Limit
		}
		q.SortDirection = def.Sort.Direction
	}

	// Flags override both the environment and the definition file.
	if *classification != "" {
		q.Classification = *classification
	}
	if *limit > 0 {
		q.Limit = *limit
	}
	if *sortDir != "" {
		q.SortDirection = *sortDir
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. COMPUTE AND RENDER
	// ─────────────────────────────────────────────────────────────────────────
	handler := query.NewGetStaySummaryHandler(repo, log)

	// Table reads are retried; validation failures are not.
	result, err := retry.DoWithData(ctx, func(ctx context.Context) (*query.GetStaySummaryResult, error) {
		res, err := handler.Handle(ctx, q)
		if err != nil {
			if shared.IsExternalService(err) {
				return nil, retry.Retryable(err)
			}
			return nil, retry.Permanent(err)
		}
		return res, nil
	},
		retry.WithMaxAttempts(3),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Warn("retrying stay summary",
				logger.Int("attempt", attempt),
				logger.Err(err),
			)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to compute stay summary: %w", err)
	}

	presenter := cli.NewPresenter(os.Stdout)
	if err := presenter.StaySummary(result); err != nil {
		return err
	}

	if *quality {
		qualityHandler := query.NewGetDataQualityHandler(repo, log)
		qualityResult, err := qualityHandler.Handle(ctx, query.GetDataQualityQuery{})
		if err != nil {
			return fmt.Errorf("failed to compute data quality: %w", err)
		}
		fmt.Fprintln(os.Stdout)
		if err := presenter.DataQuality(qualityResult); err != nil {
			return err
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. PUBLISH SNAPSHOT (optional)
	// ─────────────────────────────────────────────────────────────────────────
	if *publish || cfg.Redis.Enabled {
		if cfg.Redis.URL == "" {
			log.Warn("publish requested but REDIS_URL is not set, skipping")
			return nil
		}

		cache, err := redis.NewCacheFromURL(cfg.Redis.URL)
		if err != nil {
			log.Warn("failed to connect to Redis, snapshot not published",
				logger.Err(err))
			return nil
		}
		defer cache.Close()

		reportCache := redis.NewReportCache(cache, cfg.Redis.TTL)
		if err := reportCache.PublishStaySummary(ctx, toSnapshot(result)); err != nil {
			log.Warn("failed to publish summary snapshot", logger.Err(err))
			return nil
		}
		log.Info("published summary snapshot",
			logger.GroupCount(len(result.Rows)))
	}

	return nil
}

// toSnapshot converts the query result to the published wire form.
func toSnapshot(result *query.GetStaySummaryResult) *redis.SummarySnapshot {
	snapshot := &redis.SummarySnapshot{
		Classification:  result.Classification,
		Rows:            make([]redis.SummaryRowSnapshot, 0, len(result.Rows)),
		TotalFiltered:   result.TotalFiltered,
		SkippedNullStay: result.SkippedNullStay,
		GeneratedAt:     result.GeneratedAt,
	}
	for _, row := range result.Rows {
		snapshot.Rows = append(snapshot.Rows, redis.SummaryRowSnapshot{
			StayYears:               row.StayYears,
			Count:                   row.Count,
			MeanDepression:          row.MeanDepression,
			MeanConnectedness:       row.MeanConnectedness,
			MeanAcculturativeStress: row.MeanAcculturativeStress,
		})
	}
	return snapshot
}
