// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	importit "github.com/poiesic/importit"
	"github.com/poiesic/importit/core"
	"github.com/poiesic/importit/enrich"
	"github.com/poiesic/importit/parse"
	"github.com/poiesic/importit/pipeline"
	"github.com/poiesic/importit/remote"
	"github.com/poiesic/importit/report"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "importit",
		Usage: "Bulk document import pipeline for a remote transform service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import JSON document files through the remote service",
				ArgsUsage: "FILE [FILE...]",
				Action:    importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "Remote service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "model",
						Usage:    "Import model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "enrich-host",
						Usage: "Enrichment service host URL (defaults to host)",
					},
					&cli.StringFlag{
						Name:  "enrich-model",
						Usage: "Enrichment model name (defaults to model)",
					},
					&cli.StringFlag{
						Name:    "options",
						Aliases: []string{"o"},
						Usage:   "YAML file with processing hints forwarded to the service",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to send in each batch",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per batch",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Backoff unit; attempt N waits N times this",
						Value: 2 * time.Second,
					},
					&cli.DurationFlag{
						Name:  "batch-pause",
						Usage: "Fixed delay between batches",
						Value: 250 * time.Millisecond,
					},
					&cli.DurationFlag{
						Name:  "call-timeout",
						Usage: "Per-call timeout for remote requests (0 disables)",
					},
					&cli.BoolFlag{
						Name:  "enrich",
						Usage: "Run the enrichment pass after a successful import",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Number of identifiers per enrichment call",
						Value: 5,
					},
					&cli.StringFlag{
						Name:  "export",
						Usage: "Write accumulated export content to this file",
					},
					&cli.StringFlag{
						Name:  "error-report",
						Usage: "Write the JSON error report to this file",
					},
					&cli.BoolFlag{
						Name:  "gzip",
						Usage: "Gzip-compress the export and error report",
					},
				},
			},
			{
				Name:   "resume",
				Usage:  "Resume the enrichment pass of a previous run",
				Action: resumeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "run",
						Usage: "Run ID to resume (defaults to the latest run)",
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "Remote service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "model",
						Usage:    "Enrichment model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Number of identifiers per enrichment call",
						Value: 5,
					},
					&cli.DurationFlag{
						Name:  "call-timeout",
						Usage: "Per-call timeout for remote requests (0 disables)",
					},
				},
			},
			{
				Name:   "runs",
				Usage:  "List recorded import runs, newest first",
				Action: runsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to list (0 for all)",
						Value: 20,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func importCommand(c *cli.Context) error {
	ctx := context.Background()

	paths := c.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("at least one input file is required")
	}

	// Load processing hints
	var importOptions remote.ImportOptions
	if optionsPath := c.String("options"); optionsPath != "" {
		loaded, err := remote.LoadImportOptions(optionsPath)
		if err != nil {
			return err
		}
		importOptions = *loaded
	}

	// Parse source files
	loader := parse.NewLoader(parse.WithLoaderProgress(func(read, total int64) {
		if total > 0 {
			fmt.Fprintf(os.Stderr, "\rReading: %d/%d bytes (%.1f%%)", read, total,
				float64(read)/float64(total)*100.0)
		}
	}))
	loadResult, err := loader.LoadFiles(ctx, paths)
	if err != nil {
		return fmt.Errorf("failed to load input files: %w", err)
	}
	fmt.Fprintln(os.Stderr)

	for _, f := range loadResult.Files {
		fmt.Fprintf(os.Stderr, "%s: %d records, %d skipped, %d duplicates\n",
			f.Name, f.RecordCount, f.SkippedCount, f.DuplicateCount)
	}
	if len(loadResult.Records) == 0 {
		return fmt.Errorf("no importable records found in %d file(s)", len(paths))
	}

	// Open database and remote provider
	remoteConfig := remote.NewConfig(
		remote.WithHost(c.String("host")),
		remote.WithImportModel(c.String("model")),
		remote.WithEnrichHost(c.String("enrich-host")),
		remote.WithEnrichModel(c.String("enrich-model")),
		remote.WithCallTimeout(c.Duration("call-timeout")),
	)
	db, err := importit.NewDatabase(c.String("db"), importit.WithRemoteConfig(remoteConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Build the scheduler
	schedulerConfig := &pipeline.Config{
		BatchSize:        c.Int("batch-size"),
		MaxAttempts:      c.Int("max-retries"),
		RetryBaseDelay:   c.Duration("retry-delay"),
		BatchPause:       c.Duration("batch-pause"),
		BreakerThreshold: 5,
	}
	progress := make(chan core.StatsSnapshot, 16)
	scheduler, err := db.NewScheduler(
		pipeline.WithConfig(schedulerConfig),
		pipeline.WithImportOptions(importOptions),
		pipeline.WithProgress(progress),
	)
	if err != nil {
		return err
	}

	// Ctrl-C requests a cooperative abort; the in-flight batch finishes
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	runner, err := pipeline.NewRunner()
	if err != nil {
		return err
	}
	defer runner.Release()

	fmt.Fprintf(os.Stderr, "Importing %d records in batches of %d\n",
		len(loadResult.Records), schedulerConfig.BatchSize)

	startedAt := time.Now().UTC()
	outcomes, err := runner.Start(ctx, scheduler, loadResult.Records, loadResult.Skipped())
	if err != nil {
		return err
	}

	var outcome pipeline.Outcome
	waiting := true
	for waiting {
		select {
		case snapshot := <-progress:
			fmt.Fprintf(os.Stderr, "\rProgress: %d/%d (%.1f%%), %d errors",
				snapshot.Processed, snapshot.Total, snapshot.PercentComplete, snapshot.Errors)
		case <-signals:
			fmt.Fprintln(os.Stderr, "\nabort requested, finishing current batch")
			scheduler.Abort()
		case outcome = <-outcomes:
			waiting = false
		}
	}
	fmt.Fprintln(os.Stderr)

	if outcome.Err != nil {
		return fmt.Errorf("import failed: %w", outcome.Err)
	}
	result := outcome.Result

	// Journal the run
	run := &core.RunRecord{
		ID:             uuid.NewString(),
		StartedAt:      startedAt,
		FinishedAt:     time.Now().UTC(),
		Stats:          result.Stats,
		Files:          loadResult.Files,
		ProducedIDs:    result.ProducedIDs,
		Aborted:        result.Aborted,
		CircuitTripped: result.CircuitTripped,
	}
	if err := db.RunRepository().SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	printRunSummary(run)

	// Write artifacts
	if path := c.String("error-report"); path != "" && scheduler.Errors().Len() > 0 {
		if err := writeErrorReport(path, run.ID, scheduler.Errors(), c.Bool("gzip")); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Error report: %s\n", path)
	}
	if path := c.String("export"); path != "" && result.Ancillary != "" {
		if err := pipeline.WriteExport(path, result.Ancillary, c.Bool("gzip")); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Export: %s\n", path)
	}

	if result.CircuitTripped {
		return fmt.Errorf("import stopped: too many consecutive batch failures")
	}
	if result.Aborted || !c.Bool("enrich") || len(result.ProducedIDs) == 0 {
		return nil
	}

	// Enrichment pass
	return runEnrichment(ctx, db, run.ID, result.ProducedIDs, c.Int("chunk-size"), signals)
}

func resumeCommand(c *cli.Context) error {
	ctx := context.Background()

	remoteConfig := remote.NewConfig(
		remote.WithHost(c.String("host")),
		remote.WithImportModel(c.String("model")),
		remote.WithEnrichModel(c.String("model")),
		remote.WithCallTimeout(c.Duration("call-timeout")),
	)
	db, err := importit.NewDatabase(c.String("db"), importit.WithRemoteConfig(remoteConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Find the run to resume
	var run *core.RunRecord
	if runID := c.String("run"); runID != "" {
		run, err = db.RunRepository().GetRun(ctx, runID)
	} else {
		run, err = db.RunRepository().LatestRun(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to find run: %w", err)
	}
	if len(run.ProducedIDs) == 0 {
		return fmt.Errorf("run %s produced no identifiers to enrich", run.ID)
	}

	fmt.Fprintf(os.Stderr, "Resuming run %s (%d identifiers)\n", run.ID, len(run.ProducedIDs))

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	return runEnrichment(ctx, db, run.ID, run.ProducedIDs, c.Int("chunk-size"), signals)
}

func runsCommand(c *cli.Context) error {
	db, err := importit.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	runs, err := db.RunRepository().ListRuns(context.Background(), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	for _, run := range runs {
		state := "completed"
		switch {
		case run.CircuitTripped:
			state = "circuit-tripped"
		case run.Aborted:
			state = "aborted"
		}
		fmt.Printf("%s  %s  %-15s  total=%d succeeded=%d errors=%d skipped=%d\n",
			run.ID,
			run.StartedAt.Format(time.RFC3339),
			state,
			run.Stats.Total, run.Stats.Succeeded, run.Stats.Errors, run.Stats.ParseSkipped)
	}
	return nil
}

// runEnrichment drives the continuation loop to completion, pausing on
// the first interrupt and stopping on the second.
func runEnrichment(ctx context.Context, db *importit.Database, runID string, ids []string, chunkSize int, signals chan os.Signal) error {
	config := enrich.DefaultConfig()
	if chunkSize > 0 {
		config.ChunkSize = chunkSize
	}

	progress := make(chan core.StatsSnapshot, 16)
	loop, err := db.NewLoop(enrich.WithConfig(config), enrich.WithProgress(progress))
	if err != nil {
		return err
	}

	// Prefer the persisted cursor when one matches; otherwise start fresh
	err = loop.ResumeRun(ctx, runID, ids)
	if err == enrich.ErrNoSavedCursor || err == enrich.ErrCursorMismatch {
		err = loop.Start(ctx, runID, ids)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Enriching %d identifiers in chunks of %d\n", len(ids), config.ChunkSize)

	for {
		select {
		case snapshot := <-progress:
			fmt.Fprintf(os.Stderr, "\rEnriched: %d/%d (%.1f%%), %d errors",
				snapshot.Processed, snapshot.Total, snapshot.PercentComplete, snapshot.Errors)
		case <-signals:
			loop.Pause()
			fmt.Fprintf(os.Stderr, "\nPaused at %d/%d; run `importit resume` to continue\n",
				loop.Cursor().NextIndex, loop.Cursor().Total)
			return nil
		case <-loop.Done():
			cursor := loop.Cursor()
			fmt.Fprintf(os.Stderr, "\nEnrichment complete: %d done, %d errors\n",
				cursor.DoneCount, cursor.ErrorCount)
			return nil
		}
	}
}

// printRunSummary writes the run outcome to stderr.
func printRunSummary(run *core.RunRecord) {
	state := "completed"
	switch {
	case run.CircuitTripped:
		state = "stopped by circuit breaker"
	case run.Aborted:
		state = "aborted"
	}
	fmt.Fprintf(os.Stderr, "Run %s %s in %v\n", run.ID, state,
		run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  total=%d processed=%d succeeded=%d partial=%d errors=%d skipped=%d\n",
		run.Stats.Total, run.Stats.Processed, run.Stats.Succeeded,
		run.Stats.Partial, run.Stats.Errors, run.Stats.ParseSkipped)
}

// writeErrorReport serializes the aggregated errors to a file.
func writeErrorReport(path, runID string, aggregator *report.Aggregator, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create error report: %w", err)
	}
	defer f.Close()

	r := report.Build(runID, aggregator)
	if compress {
		return report.WriteGz(f, r)
	}
	return report.Write(f, r)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
