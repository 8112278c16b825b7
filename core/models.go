package core

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// RawRecord is one parsed input document prior to import.
// Records have no fixed schema: values may be strings, numbers, booleans,
// nested mappings, or sequences, exactly as decoded from JSON.
// A RawRecord is created by a parser, read-only afterward, and discarded
// once sent to the remote service.
type RawRecord map[string]any

// Fingerprint generates a deterministic content ID for the record.
// encoding/json sorts map keys, so two records with the same fields and
// values produce the same fingerprint regardless of source ordering.
// Used for duplicate reporting only; duplicates are still imported.
func (r RawRecord) Fingerprint() ID {
	data, err := json.Marshal(r)
	if err != nil {
		return 0
	}
	return IDFromContent(string(data))
}

// FileEntry summarizes the parse outcome for one source file.
// Immutable after parsing completes.
type FileEntry struct {
	Name           string
	RecordCount    int
	SkippedCount   int
	DuplicateCount int // records whose fingerprint was already seen in this load
}

// ImportStats holds the live counters for an import run.
// Counters advance monotonically and are mutated only by the active
// scheduler after each batch attempt.
type ImportStats struct {
	Total        int
	Processed    int
	Succeeded    int
	Partial      int
	Errors       int
	ParseSkipped int
}

// Snapshot returns a read-only copy of the stats for the control surface.
func (s *ImportStats) Snapshot() StatsSnapshot {
	pct := 0.0
	if s.Total > 0 {
		pct = float64(s.Processed) / float64(s.Total) * 100.0
	}
	return StatsSnapshot{
		Total:           s.Total,
		Processed:       s.Processed,
		Succeeded:       s.Succeeded,
		Partial:         s.Partial,
		Errors:          s.Errors,
		Skipped:         s.ParseSkipped,
		PercentComplete: pct,
	}
}

// StatsSnapshot is the progress view published after every batch or chunk.
type StatsSnapshot struct {
	Total           int
	Processed       int
	Succeeded       int
	Partial         int
	Errors          int
	Skipped         int
	PercentComplete float64
}

// BatchResult is the outcome of one batch attempt cycle.
// It is consumed immediately into ImportStats and the error aggregator,
// never retained individually.
type BatchResult struct {
	BatchIndex       int
	Succeeded        bool
	RecordsProcessed int
	ProducedIDs      []string
	ErrorMessage     string
}

// ErrorDetail is one failure entry collected for display and reporting.
type ErrorDetail struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

// ContinuationCursor is the resume point for the enrichment loop.
// It advances only on completed chunks and survives pause; it is reset
// only when a new continuation run starts.
type ContinuationCursor struct {
	NextIndex  int
	Total      int
	DoneCount  int
	ErrorCount int
	UpdatedAt  time.Time
}

// LoopState identifies the continuation loop's lifecycle phase.
type LoopState int

const (
	// LoopIdle means the loop has not been started.
	LoopIdle LoopState = iota + 1
	// LoopRunning means chunks are being dispatched.
	LoopRunning
	// LoopPaused means dispatch is suspended; the cursor is retained.
	LoopPaused
	// LoopDone means the cursor reached the total.
	LoopDone
)

// String returns the lowercase state name.
func (s LoopState) String() string {
	switch s {
	case LoopIdle:
		return "idle"
	case LoopRunning:
		return "running"
	case LoopPaused:
		return "paused"
	case LoopDone:
		return "done"
	}
	return "unknown"
}

// RunRecord is the persisted journal entry for one import run.
// It carries everything needed to list run history and to resume the
// enrichment loop: final stats, per-file parse outcomes, and the
// identifiers produced by the remote service.
type RunRecord struct {
	ID             string // uuid
	StartedAt      time.Time
	FinishedAt     time.Time
	Stats          ImportStats
	Files          []FileEntry
	ProducedIDs    []string
	Aborted        bool
	CircuitTripped bool
}
