package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/importit/core"
)

func TestCursorSerialization(t *testing.T) {
	cursor := &core.ContinuationCursor{
		NextIndex:  150,
		Total:      600,
		DoneCount:  130,
		ErrorCount: 20,
		UpdatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	decoded, err := UnmarshalCursor(MarshalCursor(cursor))
	require.NoError(t, err)
	assert.Equal(t, cursor, decoded)
}

func TestCursorSerialization_ZeroValue(t *testing.T) {
	decoded, err := UnmarshalCursor(MarshalCursor(&core.ContinuationCursor{}))
	require.NoError(t, err)
	assert.Equal(t, &core.ContinuationCursor{}, decoded)
	assert.True(t, decoded.UpdatedAt.IsZero())
}

func TestCursorSerialization_Truncated(t *testing.T) {
	data := MarshalCursor(&core.ContinuationCursor{NextIndex: 300, Total: 600})

	_, err := UnmarshalCursor(data[:1])
	assert.Error(t, err)
}

func TestRunSerialization(t *testing.T) {
	run := &core.RunRecord{
		ID:         "9f2c4a",
		StartedAt:  time.Now().UTC().Truncate(time.Microsecond),
		FinishedAt: time.Now().UTC().Add(time.Minute).Truncate(time.Microsecond),
		Stats: core.ImportStats{
			Total: 150, Processed: 150, Succeeded: 140,
			Partial: 5, Errors: 5, ParseSkipped: 2,
		},
		Files: []core.FileEntry{
			{Name: "a.jsonl", RecordCount: 100},
			{Name: "b.jsonl", RecordCount: 50, SkippedCount: 2, DuplicateCount: 1},
		},
		ProducedIDs:    []string{"doc-000001", "doc-000002"},
		Aborted:        false,
		CircuitTripped: true,
	}

	decoded, err := UnmarshalRun(MarshalRun(run))
	require.NoError(t, err)
	assert.Equal(t, run, decoded)
}

func TestRunSerialization_LiveRun(t *testing.T) {
	// FinishedAt stays zero while the run is in progress.
	run := &core.RunRecord{
		ID:        "live",
		StartedAt: time.Now().UTC().Truncate(time.Microsecond),
		Stats:     core.ImportStats{Total: 10},
	}

	decoded, err := UnmarshalRun(MarshalRun(run))
	require.NoError(t, err)
	assert.True(t, decoded.FinishedAt.IsZero())
	assert.Empty(t, decoded.Files)
	assert.Empty(t, decoded.ProducedIDs)
}
