// Command golfdata is the golf course data pipeline CLI.
//
// Usage:
//
//	golfdata clean --in data/courses.xlsx --out data/cleaned.csv
//	golfdata enrich --in data/cleaned.csv --out data/enriched.csv
//	golfdata validate --in data/enriched.csv --valid-out data/validated.csv --errors-out data/errors.csv
//	golfdata run --in data/courses.xlsx --valid-out data/validated.csv --errors-out data/errors.csv
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fairwaylabs/golfdata/internal/config"
	"github.com/fairwaylabs/golfdata/internal/dataset"
	"github.com/fairwaylabs/golfdata/internal/model"
	"github.com/fairwaylabs/golfdata/internal/pipeline"
	"github.com/fairwaylabs/golfdata/internal/places"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "golfdata",
		Short: "Golf course data cleaning, enrichment, and validation pipeline",
	}

	root.AddCommand(cleanCmd())
	root.AddCommand(enrichCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(runCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// clean command
// --------------------------------------------------------------------------

func cleanCmd() *cobra.Command {
	var in, out, column string
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Drop rows with blank course names and deduplicate",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.Load(in)
			if err != nil {
				return fmt.Errorf("load input: %w", err)
			}
			cleaned, result := pipeline.Clean(ds, column, logger)
			logger.Info("clean finished",
				"rows_removed", result.RowsRemoved,
				"duplicates_removed", len(result.Duplicates),
				"remaining", cleaned.Len())
			return cleaned.Save(out)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "Input dataset path (.csv, .xlsx)")
	cmd.Flags().StringVar(&out, "out", "", "Output dataset path")
	cmd.Flags().StringVar(&column, "column", model.ColCourseName, "Identifying column to clean on")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// --------------------------------------------------------------------------
// enrich command
// --------------------------------------------------------------------------

func enrichCmd() *cobra.Command {
	var in, out, checkpoint string
	var threshold int
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fill missing addresses via the Places lookup service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContext(func(ctx context.Context, cfg *config.Config) error {
				ds, err := dataset.Load(in)
				if err != nil {
					return fmt.Errorf("load input: %w", err)
				}
				enriched, err := runEnrich(ctx, cfg, ds, checkpoint, threshold)
				if err != nil {
					return err
				}
				return enriched.Save(out)
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "Input dataset path (.csv, .xlsx)")
	cmd.Flags().StringVar(&out, "out", "", "Output dataset path")
	cmd.Flags().StringVar(&checkpoint, "checkpoint", "", "Checkpoint file path (default from CHECKPOINT_PATH)")
	cmd.Flags().IntVar(&threshold, "throttle-threshold", 0, "Row count above which a per-row delay applies (default from THROTTLE_THRESHOLD)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// --------------------------------------------------------------------------
// validate command
// --------------------------------------------------------------------------

func validateCmd() *cobra.Command {
	var in, validOut, errorsOut string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate records against the course schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.Load(in)
			if err != nil {
				return fmt.Errorf("load input: %w", err)
			}
			valid, errReport, result := pipeline.Validate(ds, logger)
			logger.Info("validate finished",
				"total", result.Total,
				"valid", result.Valid,
				"field_errors", result.TotalFieldErrors)
			if err := valid.Save(validOut); err != nil {
				return fmt.Errorf("save validated output: %w", err)
			}
			return errReport.Save(errorsOut)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "Input dataset path (.csv, .xlsx)")
	cmd.Flags().StringVar(&validOut, "valid-out", "", "Validated output path")
	cmd.Flags().StringVar(&errorsOut, "errors-out", "", "Error report path")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("valid-out")
	_ = cmd.MarkFlagRequired("errors-out")
	return cmd
}

// --------------------------------------------------------------------------
// run command
// --------------------------------------------------------------------------

func runCmd() *cobra.Command {
	var in, validOut, errorsOut, checkpoint, column string
	var threshold int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: clean, enrich, validate",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContext(func(ctx context.Context, cfg *config.Config) error {
				ds, err := dataset.Load(in)
				if err != nil {
					return fmt.Errorf("load input: %w", err)
				}

				start := time.Now()
				cleaned, cleanResult := pipeline.Clean(ds, column, logger)
				logger.Info("clean stage done",
					"rows_removed", cleanResult.RowsRemoved,
					"duplicates_removed", len(cleanResult.Duplicates))

				enriched, err := runEnrich(ctx, cfg, cleaned, checkpoint, threshold)
				if err != nil {
					return err
				}

				valid, errReport, valResult := pipeline.Validate(enriched, logger)
				logger.Info("pipeline finished",
					"duration", time.Since(start).Round(time.Second),
					"valid", valResult.Valid,
					"total", valResult.Total,
					"field_errors", valResult.TotalFieldErrors)

				if err := valid.Save(validOut); err != nil {
					return fmt.Errorf("save validated output: %w", err)
				}
				return errReport.Save(errorsOut)
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "Input dataset path (.csv, .xlsx)")
	cmd.Flags().StringVar(&validOut, "valid-out", "", "Validated output path")
	cmd.Flags().StringVar(&errorsOut, "errors-out", "", "Error report path")
	cmd.Flags().StringVar(&checkpoint, "checkpoint", "", "Checkpoint file path (default from CHECKPOINT_PATH)")
	cmd.Flags().StringVar(&column, "column", model.ColCourseName, "Identifying column to clean on")
	cmd.Flags().IntVar(&threshold, "throttle-threshold", 0, "Row count above which a per-row delay applies (default from THROTTLE_THRESHOLD)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("valid-out")
	_ = cmd.MarkFlagRequired("errors-out")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runEnrich wires the Places client and runs the enrichment stage with
// config-backed defaults for the checkpoint path and throttle threshold.
func runEnrich(ctx context.Context, cfg *config.Config, ds *dataset.Dataset, checkpoint string, threshold int) (*dataset.Dataset, error) {
	if cfg.GoogleAPIKey == "" {
		return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY is required")
	}
	if checkpoint == "" {
		checkpoint = cfg.CheckpointPath
	}
	if threshold == 0 {
		threshold = cfg.ThrottleThreshold
	}

	client := places.NewClient(cfg.GoogleAPIKey, cfg.RequestsPerMinute, logger)

	start := time.Now()
	enriched, result := pipeline.Enrich(ctx, ds, client, pipeline.EnrichOptions{
		ThrottleThreshold: threshold,
		CheckpointPath:    checkpoint,
	}, logger)
	logger.Info("enrich finished",
		"duration", time.Since(start).Round(time.Second),
		"summary", result.Summary())
	for _, e := range result.Errors {
		logger.Error("enrich error", "error", e)
	}
	return enriched, nil
}

// withContext handles config loading, log level, and context cancellation.
func withContext(fn func(ctx context.Context, cfg *config.Config) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg := config.Load()
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))

	return fn(ctx, cfg)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
