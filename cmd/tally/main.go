package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tally/internal/config"
	"tally/internal/log"
	"tally/internal/pipeline"
	"tally/internal/rates"
	"tally/internal/report"
)

func main() {
	// Load .env file for local development (ignore errors elsewhere)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	// A batch run is cancellable but never restarts; Ctrl-C abandons it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.New(pipeline.Options{
		PlatformRoot:  cfg.PlatformRoot,
		Warehouses:    cfg.Warehouses,
		Workers:       cfg.Workers,
		ReferenceYear: cfg.ReferenceYear,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("Failed to build pipeline", log.FieldError, err)
		os.Exit(1)
	}

	res, err := p.Run(ctx)
	if err != nil {
		logger.Error("Run failed", log.FieldError, err)
		os.Exit(1)
	}

	table := rates.Default()
	table.Display = cfg.DisplayCurrency
	if len(cfg.RateOverrides) > 0 {
		table = table.WithOverrides(cfg.RateOverrides)
	}

	writer := report.NewWriter(table, logger)
	meta := report.RunMeta{RunID: res.Summary.RunID, GeneratedAt: time.Now()}
	if err := writer.Write(cfg.ReportPath, meta, res.Records, res.Summary.Warnings); err != nil {
		logger.Error("Failed to write report", log.FieldError, err, log.FieldFile, cfg.ReportPath)
		os.Exit(1)
	}

	logger.Info("Done",
		log.FieldRunID, res.Summary.RunID,
		"files_scanned", res.Summary.FilesScanned,
		"duplicates", res.Summary.DuplicatesCollapsed,
		"files_parsed", res.Summary.FilesParsed,
		log.FieldEntries, res.Summary.EntriesIncluded,
		log.FieldSkipped, res.Summary.EntriesSkipped,
		log.FieldWarnings, len(res.Summary.Warnings),
		"report", cfg.ReportPath,
	)
}
