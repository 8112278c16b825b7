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


package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/poiesic/importit/core"
	"github.com/poiesic/importit/remote"
	"github.com/poiesic/importit/report"
)

// Config holds configuration for the batch scheduler.
type Config struct {
	// BatchSize is the number of records sent per import call
	BatchSize int

	// MaxAttempts is the maximum number of attempts per batch
	MaxAttempts int

	// RetryBaseDelay is the backoff unit; attempt N waits RetryBaseDelay * N
	RetryBaseDelay time.Duration

	// BatchPause is the fixed delay between batches
	BatchPause time.Duration

	// BreakerThreshold is the number of consecutive failed batches that
	// trips the circuit breaker and ends the run
	BreakerThreshold int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:        10,
		MaxAttempts:      3,
		RetryBaseDelay:   2 * time.Second,
		BatchPause:       250 * time.Millisecond,
		BreakerThreshold: 5,
	}
}

// Result is the terminal outcome of one scheduler run.
type Result struct {
	Stats       core.ImportStats
	ProducedIDs []string

	// Ancillary is the concatenated export content returned by
	// successful batches, flushed once at run end.
	Ancillary string

	// Aborted is set when the run stopped at the abort flag.
	Aborted bool

	// CircuitTripped is set when consecutive batch failures reached the
	// breaker threshold.
	CircuitTripped bool
}

// Scheduler dispatches records to the remote import service in bounded
// sequential batches with retry, backoff, and circuit breaking.
// A Scheduler runs one import at a time; counters are written only by
// the running task.
type Scheduler struct {
	importer   remote.Importer
	options    remote.ImportOptions
	config     *Config
	aggregator *report.Aggregator
	progress   chan<- core.StatsSnapshot
	logger     *slog.Logger

	abort   atomic.Bool
	running atomic.Bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler) error

// WithConfig sets the scheduler configuration.
func WithConfig(config *Config) SchedulerOption {
	return func(s *Scheduler) error {
		if config == nil {
			return nil
		}
		if config.BatchSize < 1 {
			return ErrInvalidBatchSize
		}
		if config.MaxAttempts < 1 {
			return ErrInvalidMaxAttempts
		}
		s.config = config
		return nil
	}
}

// WithImportOptions sets the processing hints forwarded with every batch.
func WithImportOptions(options remote.ImportOptions) SchedulerOption {
	return func(s *Scheduler) error {
		s.options = options
		return nil
	}
}

// WithAggregator sets the error aggregator receiving failure entries.
// Default is a fresh aggregator readable via Errors().
func WithAggregator(aggregator *report.Aggregator) SchedulerOption {
	return func(s *Scheduler) error {
		if aggregator != nil {
			s.aggregator = aggregator
		}
		return nil
	}
}

// WithProgress sets the channel receiving a stats snapshot after every
// batch. Sends are non-blocking; a slow consumer misses intermediate
// snapshots, never stalls the run.
func WithProgress(ch chan<- core.StatsSnapshot) SchedulerOption {
	return func(s *Scheduler) error {
		s.progress = ch
		return nil
	}
}

// WithSchedulerLogger sets a custom logger.
// Default is slog.Default().
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// NewScheduler creates a new batch scheduler.
func NewScheduler(importer remote.Importer, opts ...SchedulerOption) (*Scheduler, error) {
	if importer == nil {
		return nil, ErrImporterRequired
	}

	s := &Scheduler{
		importer:   importer,
		config:     DefaultConfig(),
		aggregator: report.NewAggregator(),
		logger:     slog.Default().With("component", "scheduler"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Abort requests a cooperative stop. The flag is polled before each
// batch and before each backoff sleep; the in-flight call finishes.
func (s *Scheduler) Abort() {
	s.abort.Store(true)
}

// Errors returns the aggregator collecting this scheduler's failures.
func (s *Scheduler) Errors() *report.Aggregator {
	return s.aggregator
}

// Run imports all records in source order. parseSkipped is the number
// of records the parsers dropped, carried into the stats for display.
// The returned Result is terminal: Aborted and CircuitTripped mark the
// two early-stop states. Run returns an error only for invalid input or
// context cancellation.
func (s *Scheduler) Run(ctx context.Context, records []core.RawRecord, parseSkipped int) (*Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSchedulerBusy
	}
	defer s.running.Store(false)
	// The abort flag is consumed on exit, not cleared on entry: an Abort
	// issued before the run task actually begins must still stop it.
	defer s.abort.Store(false)

	stats := core.ImportStats{
		Total:        len(records),
		ParseSkipped: parseSkipped,
	}
	result := &Result{}

	batchCount := (len(records) + s.config.BatchSize - 1) / s.config.BatchSize
	s.logger.Info("starting import run",
		"records", len(records), "batches", batchCount, "batchSize", s.config.BatchSize)

	var ancillary strings.Builder
	consecutiveFailures := 0

	for i := 0; i < batchCount; i++ {
		if s.abort.Load() {
			s.logger.Info("run aborted", "batchesDone", i, "processed", stats.Processed)
			result.Aborted = true
			break
		}

		start := i * s.config.BatchSize
		end := min(start+s.config.BatchSize, len(records))
		batch := records[start:end]

		var resp *remote.BatchResponse
		err := RetryLinear(ctx, func() error {
			var callErr error
			resp, callErr = s.importer.ImportBatch(ctx, &remote.BatchRequest{
				Records: batch,
				Options: s.options,
			})
			return callErr
		}, s.config.MaxAttempts, s.config.RetryBaseDelay, s.abort.Load)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if s.abort.Load() && err != nil {
			// Abort observed during backoff; the batch stays unprocessed
			result.Aborted = true
			break
		}

		stats.Processed += len(batch)

		if err != nil {
			// All attempts failed: the whole batch counts as errors
			stats.Errors += len(batch)
			s.aggregator.Add(fmt.Sprintf("Batch %d/%d", i+1, batchCount), err.Error())
			consecutiveFailures++
			s.logger.Warn("batch failed after retries",
				"batch", i+1, "records", len(batch),
				"consecutiveFailures", consecutiveFailures, "error", err)

			if consecutiveFailures >= s.config.BreakerThreshold {
				s.logger.Error("circuit breaker tripped, ending run",
					"consecutiveFailures", consecutiveFailures,
					"processed", stats.Processed, "total", stats.Total)
				result.CircuitTripped = true
				s.publish(&stats)
				break
			}
		} else {
			consecutiveFailures = 0
			stats.Succeeded += resp.Succeeded
			stats.Partial += resp.Partial
			stats.Errors += resp.Errors
			if len(resp.ErrorDetails) > 0 {
				s.aggregator.AddDetails(resp.ErrorDetails...)
			}
			result.ProducedIDs = append(result.ProducedIDs, resp.ProducedIDs...)
			if resp.AncillaryContent != "" {
				ancillary.WriteString(resp.AncillaryContent)
			}
			s.logger.Debug("batch imported",
				"batch", i+1, "succeeded", resp.Succeeded,
				"partial", resp.Partial, "errors", resp.Errors)
		}

		s.publish(&stats)

		// Pacing delay between batches. The delay only spaces out calls,
		// so none is taken after the final batch.
		if i < batchCount-1 && s.config.BatchPause > 0 {
			timer := time.NewTimer(s.config.BatchPause)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	result.Stats = stats
	result.Ancillary = ancillary.String()

	s.logger.Info("import run finished",
		"processed", stats.Processed, "total", stats.Total,
		"succeeded", stats.Succeeded, "errors", stats.Errors,
		"aborted", result.Aborted, "circuitTripped", result.CircuitTripped)

	return result, nil
}

// publish sends a snapshot without blocking.
func (s *Scheduler) publish(stats *core.ImportStats) {
	if s.progress == nil {
		return
	}
	select {
	case s.progress <- stats.Snapshot():
	default:
	}
}
