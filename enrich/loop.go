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


package enrich

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/importit/core"
	"github.com/poiesic/importit/remote"
	"github.com/poiesic/importit/storage"
)

// Config holds configuration for the continuation loop.
type Config struct {
	// ChunkSize is the number of identifiers sent per enrichment call
	ChunkSize int

	// ChunkDelay is the fixed delay between chunks. The gap is where a
	// pause takes effect, so it must stay short.
	ChunkDelay time.Duration

	// ConcurrencyHint and DelayHint are forwarded opaquely to the
	// service with every chunk.
	ConcurrencyHint int
	DelayHint       time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ChunkSize:       5,
		ChunkDelay:      200 * time.Millisecond,
		ConcurrencyHint: 2,
	}
}

// Loop walks a run's produced identifiers in fixed chunks, calling the
// enrichment service once per chunk. Chunks are timer-chained: each
// completed chunk schedules the next after ChunkDelay, so exactly one
// chunk is ever in flight and a pause lands in the gap. The cursor is
// persisted after every chunk; a failed chunk adds its full size to
// ErrorCount and the cursor still advances. There is no per-chunk
// retry.
type Loop struct {
	enricher remote.Enricher
	cursors  storage.CursorRepository
	config   *Config
	progress chan<- core.StatsSnapshot
	logger   *slog.Logger

	mu       sync.Mutex
	state    core.LoopState
	runID    string
	ids      []string
	cursor   core.ContinuationCursor
	timer    *time.Timer
	inFlight bool
	done     chan struct{}
}

// LoopOption configures a Loop.
type LoopOption func(*Loop) error

// WithConfig sets the loop configuration.
func WithConfig(config *Config) LoopOption {
	return func(l *Loop) error {
		if config != nil {
			l.config = config
		}
		return nil
	}
}

// WithProgress sets the channel receiving a snapshot after every chunk.
// Sends are non-blocking.
func WithProgress(ch chan<- core.StatsSnapshot) LoopOption {
	return func(l *Loop) error {
		l.progress = ch
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) error {
		if logger != nil {
			l.logger = logger
		}
		return nil
	}
}

// NewLoop creates a new continuation loop.
func NewLoop(enricher remote.Enricher, cursors storage.CursorRepository, opts ...LoopOption) (*Loop, error) {
	if enricher == nil {
		return nil, ErrEnricherRequired
	}
	if cursors == nil {
		return nil, ErrCursorRepositoryRequired
	}

	l := &Loop{
		enricher: enricher,
		cursors:  cursors,
		config:   DefaultConfig(),
		state:    core.LoopIdle,
		logger:   slog.Default().With("component", "enrich"),
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// State returns the loop's current lifecycle phase.
func (l *Loop) State() core.LoopState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Cursor returns a copy of the current cursor.
func (l *Loop) Cursor() core.ContinuationCursor {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor
}

// Done returns a channel closed when the active run completes.
// Pausing does not close it; the channel belongs to the run started by
// the last Start or Resume.
func (l *Loop) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

// Start begins a new continuation run over ids, resetting any previous
// cursor for the run. An empty identifier list completes immediately.
func (l *Loop) Start(ctx context.Context, runID string, ids []string) error {
	if runID == "" {
		return core.ErrEmptyRunID
	}

	l.mu.Lock()
	if l.state == core.LoopRunning || l.state == core.LoopPaused {
		l.mu.Unlock()
		return ErrLoopBusy
	}

	l.runID = runID
	l.ids = ids
	l.cursor = core.ContinuationCursor{Total: len(ids)}
	l.done = make(chan struct{})

	if len(ids) == 0 {
		l.state = core.LoopDone
		close(l.done)
		l.mu.Unlock()
		return nil
	}

	l.state = core.LoopRunning
	l.mu.Unlock()

	if err := l.saveCursor(ctx); err != nil {
		l.mu.Lock()
		l.state = core.LoopIdle
		l.mu.Unlock()
		return err
	}

	l.logger.Info("continuation run started", "runID", runID, "ids", len(ids), "chunkSize", l.config.ChunkSize)
	go l.step(ctx)
	return nil
}

// Pause suspends chunk dispatch. The in-flight chunk, if any, finishes
// and persists the cursor; no further chunks are scheduled until
// Resume. Pausing an idle or finished loop is a no-op.
func (l *Loop) Pause() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != core.LoopRunning {
		return
	}
	l.state = core.LoopPaused
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.logger.Info("continuation run paused", "runID", l.runID, "nextIndex", l.cursor.NextIndex)
}

// Resume continues a paused run from the retained cursor. Nothing is
// reprocessed: dispatch picks up at the cursor's next index. If the
// pause landed while a chunk was in flight, that chunk reschedules the
// chain itself on completion; Resume only flips the state.
func (l *Loop) Resume(ctx context.Context) error {
	l.mu.Lock()
	if l.state != core.LoopPaused {
		l.mu.Unlock()
		return ErrNotPaused
	}
	l.state = core.LoopRunning
	next := l.cursor.NextIndex
	inFlight := l.inFlight
	l.mu.Unlock()

	l.logger.Info("continuation run resumed", "runID", l.runID, "nextIndex", next)
	if inFlight {
		return nil
	}
	go l.step(ctx)
	return nil
}

// ResumeRun continues a run from its persisted cursor, for a process
// that did not start the run. The identifier list must match the cursor
// total.
func (l *Loop) ResumeRun(ctx context.Context, runID string, ids []string) error {
	if runID == "" {
		return core.ErrEmptyRunID
	}

	cursor, err := l.cursors.LoadCursor(ctx, runID)
	if err != nil {
		return err
	}
	if cursor == nil {
		return ErrNoSavedCursor
	}
	if cursor.Total != len(ids) {
		return ErrCursorMismatch
	}

	l.mu.Lock()
	if l.state == core.LoopRunning || l.state == core.LoopPaused {
		l.mu.Unlock()
		return ErrLoopBusy
	}

	l.runID = runID
	l.ids = ids
	l.cursor = *cursor
	l.done = make(chan struct{})

	if cursor.NextIndex >= cursor.Total {
		l.state = core.LoopDone
		close(l.done)
		l.mu.Unlock()
		return nil
	}

	l.state = core.LoopRunning
	l.mu.Unlock()

	l.logger.Info("continuation run resumed from storage", "runID", runID, "nextIndex", cursor.NextIndex)
	go l.step(ctx)
	return nil
}

// step processes one chunk and schedules the next.
func (l *Loop) step(ctx context.Context) {
	l.mu.Lock()
	if l.state != core.LoopRunning {
		l.mu.Unlock()
		return
	}
	if ctx.Err() != nil {
		l.state = core.LoopPaused
		l.mu.Unlock()
		return
	}

	start := l.cursor.NextIndex
	end := min(start+l.config.ChunkSize, l.cursor.Total)
	chunk := l.ids[start:end]
	l.inFlight = true
	l.mu.Unlock()

	resp, err := l.enricher.EnrichChunk(ctx, &remote.ChunkRequest{
		IDs:             chunk,
		ConcurrencyHint: l.config.ConcurrencyHint,
		DelayHint:       l.config.DelayHint,
	})

	l.mu.Lock()
	if err != nil {
		l.cursor.ErrorCount += len(chunk)
		l.logger.Warn("chunk failed", "runID", l.runID, "chunk", start, "size", len(chunk), "error", err)
	} else {
		l.cursor.DoneCount += resp.Processed
		l.cursor.ErrorCount += resp.Errors
	}
	l.cursor.NextIndex = end
	finished := end >= l.cursor.Total
	l.mu.Unlock()

	if saveErr := l.saveCursor(ctx); saveErr != nil {
		l.logger.Error("failed to persist cursor", "runID", l.runID, "error", saveErr)
	}
	l.publish()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inFlight = false

	if finished {
		l.state = core.LoopDone
		close(l.done)
		l.logger.Info("continuation run complete",
			"runID", l.runID, "done", l.cursor.DoneCount, "errors", l.cursor.ErrorCount)
		return
	}
	if l.state != core.LoopRunning {
		// Paused while the chunk was in flight
		return
	}
	l.timer = time.AfterFunc(l.config.ChunkDelay, func() { l.step(ctx) })
}

// saveCursor persists a copy of the current cursor.
func (l *Loop) saveCursor(ctx context.Context) error {
	l.mu.Lock()
	runID := l.runID
	cursor := l.cursor
	l.mu.Unlock()

	if err := l.cursors.SaveCursor(ctx, runID, &cursor); err != nil {
		return err
	}

	l.mu.Lock()
	l.cursor.UpdatedAt = cursor.UpdatedAt
	l.mu.Unlock()
	return nil
}

// publish sends a snapshot without blocking.
func (l *Loop) publish() {
	if l.progress == nil {
		return
	}

	l.mu.Lock()
	snapshot := core.StatsSnapshot{
		Total:     l.cursor.Total,
		Processed: l.cursor.NextIndex,
		Succeeded: l.cursor.DoneCount,
		Errors:    l.cursor.ErrorCount,
	}
	if snapshot.Total > 0 {
		snapshot.PercentComplete = float64(snapshot.Processed) / float64(snapshot.Total) * 100.0
	}
	l.mu.Unlock()

	select {
	case l.progress <- snapshot:
	default:
	}
}
