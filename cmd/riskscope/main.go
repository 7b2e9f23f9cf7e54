// Package main is the entry point for the riskscope portfolio risk analyzer.
// The application loads a daily close-price panel from a configured source
// (CSV file, SQLite history database, or S3 object), restricts it to the
// symbols with complete history, and estimates portfolio risk metrics:
// Monte Carlo expected volatility and marginal risk contribution for a
// target asset, plus an optional historical VaR block for a fixed portfolio.
//
// The application follows the same layering as the rest of the module:
// - Record sources abstract where prices come from
// - The analysis service owns the panel -> returns -> covariance pipeline
// - Reports are written as JSON or MessagePack, optionally with a PNG chart
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aristath/riskscope/internal/clients/s3"
	"github.com/aristath/riskscope/internal/config"
	"github.com/aristath/riskscope/internal/database"
	"github.com/aristath/riskscope/internal/modules/history"
	"github.com/aristath/riskscope/internal/scheduler"
	"github.com/aristath/riskscope/internal/services"
	"github.com/aristath/riskscope/pkg/logger"
)

// main orchestrates the startup sequence:
// 1. Loads configuration from environment variables (.env file)
// 2. Initializes the structured logger
// 3. Builds the configured record source (csv, sqlite, or s3)
// 4. Runs the analysis once and writes the report
// 5. If a cron schedule is configured, keeps re-running on that schedule
//    until SIGINT or SIGTERM arrives
func main() {
	// Load configuration first to get log level.
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails so the error is still visible.
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Logger uses structured logging (zerolog) with configurable log levels.
	// Pretty mode enables human-readable output for development.
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})

	log.Info().Str("source", cfg.Source).Str("asset", cfg.Asset).Msg("Starting riskscope")

	ctx := context.Background()

	// Build the record source. The sqlite source owns a database handle that
	// must be closed on exit; the csv and s3 sources hold no resources.
	var source services.RecordSource
	switch cfg.Source {
	case config.SourceCSV:
		source = services.CSVSource{Path: cfg.CSVPath, Log: log}

	case config.SourceSQLite:
		db, err := database.New(database.Config{Path: cfg.DBPath, Name: "history"})
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open history database")
		}
		defer db.Close()

		if err := db.HealthCheck(ctx); err != nil {
			log.Fatal().Err(err).Msg("History database failed health check")
		}

		store, err := history.NewStore(db, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize price store")
		}
		source = services.SQLiteSource{Store: store}

	case config.SourceS3:
		client, err := s3.NewClient(ctx, s3.Config{
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build S3 client")
		}
		source = services.S3Source{
			Client: client,
			Bucket: cfg.S3.Bucket,
			Key:    cfg.S3.Key,
			Log:    log,
		}

	default:
		log.Fatal().Str("source", cfg.Source).Msg("Unknown price source")
	}

	svc := services.NewAnalysisService(source, cfg, log)

	// Always run once immediately. For one-shot invocations this is the whole
	// program; for scheduled runs it surfaces wiring problems (bad CSV path,
	// unreachable bucket, unwritable report sink) before the first cron fire.
	if _, err := svc.RunContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("Analysis run failed")
	}

	if cfg.Schedule == "" {
		log.Info().Msg("No schedule configured, exiting")
		return
	}

	// Scheduled mode: register the analysis service as a cron job and block.
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.Schedule, svc); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Schedule).Msg("Failed to register schedule")
	}
	sched.Start()
	log.Info().Str("schedule", cfg.Schedule).Msg("Scheduler started")

	// Wait for interrupt signal. The application blocks here until it
	// receives SIGINT (Ctrl+C) or SIGTERM (kill command).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	// Stop waits for any in-flight analysis run to finish so a report file
	// is never left half-written.
	sched.Stop()
	log.Info().Msg("Scheduler stopped")
}
