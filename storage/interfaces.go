package storage

import (
	"context"

	"github.com/poiesic/importit/core"
)

// CursorRepository persists the continuation cursor for enrichment runs.
type CursorRepository interface {
	// SaveCursor persists the cursor for a run.
	// The cursor's UpdatedAt timestamp is set on save.
	SaveCursor(ctx context.Context, runID string, cursor *core.ContinuationCursor) error

	// LoadCursor retrieves the cursor for a run.
	// Returns nil, nil if no cursor exists.
	LoadCursor(ctx context.Context, runID string) (*core.ContinuationCursor, error)

	// DeleteCursor removes the cursor for a run.
	// Deleting a missing cursor is not an error.
	DeleteCursor(ctx context.Context, runID string) error
}

// RunRepository persists the journal of import runs.
type RunRepository interface {
	// SaveRun inserts or updates a run record.
	// The record must pass core.ValidateRunRecord.
	SaveRun(ctx context.Context, run *core.RunRecord) error

	// GetRun retrieves a run by ID.
	// Returns ErrNotFound if the run doesn't exist.
	GetRun(ctx context.Context, id string) (*core.RunRecord, error)

	// ListRuns retrieves up to limit runs ordered by start time, newest
	// first. A limit of zero or less returns all runs.
	ListRuns(ctx context.Context, limit int) ([]*core.RunRecord, error)

	// LatestRun retrieves the most recently started run.
	// Returns ErrNotFound when the journal is empty.
	LatestRun(ctx context.Context) (*core.RunRecord, error)
}
