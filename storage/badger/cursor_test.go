package badger

import (
	"context"
	"testing"

	"github.com/poiesic/importit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRepository_SaveAndLoad(t *testing.T) {
	cursorRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	cursor := &core.ContinuationCursor{
		NextIndex:  40,
		Total:      120,
		DoneCount:  38,
		ErrorCount: 2,
	}
	require.NoError(t, cursorRepo.SaveCursor(ctx, "run-1", cursor))
	assert.False(t, cursor.UpdatedAt.IsZero())

	loaded, err := cursorRepo.LoadCursor(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 40, loaded.NextIndex)
	assert.Equal(t, 120, loaded.Total)
	assert.Equal(t, 38, loaded.DoneCount)
	assert.Equal(t, 2, loaded.ErrorCount)
}

func TestCursorRepository_LoadMissing(t *testing.T) {
	cursorRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	loaded, err := cursorRepo.LoadCursor(context.Background(), "no-such-run")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestCursorRepository_Overwrite(t *testing.T) {
	cursorRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	require.NoError(t, cursorRepo.SaveCursor(ctx, "run-1", &core.ContinuationCursor{NextIndex: 10, Total: 100, DoneCount: 10}))
	require.NoError(t, cursorRepo.SaveCursor(ctx, "run-1", &core.ContinuationCursor{NextIndex: 20, Total: 100, DoneCount: 19, ErrorCount: 1}))

	loaded, err := cursorRepo.LoadCursor(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 20, loaded.NextIndex)
	assert.Equal(t, 1, loaded.ErrorCount)
}

func TestCursorRepository_Delete(t *testing.T) {
	cursorRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	require.NoError(t, cursorRepo.SaveCursor(ctx, "run-1", &core.ContinuationCursor{NextIndex: 5, Total: 10, DoneCount: 5}))
	require.NoError(t, cursorRepo.DeleteCursor(ctx, "run-1"))

	loaded, err := cursorRepo.LoadCursor(ctx, "run-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Deleting again is not an error
	require.NoError(t, cursorRepo.DeleteCursor(ctx, "run-1"))
}

func TestCursorRepository_EmptyRunID(t *testing.T) {
	cursorRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	err = cursorRepo.SaveCursor(ctx, "", &core.ContinuationCursor{Total: 10})
	assert.ErrorIs(t, err, core.ErrEmptyRunID)

	_, err = cursorRepo.LoadCursor(ctx, "")
	assert.ErrorIs(t, err, core.ErrEmptyRunID)
}

func TestCursorRepository_InvalidCursor(t *testing.T) {
	cursorRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	err = cursorRepo.SaveCursor(context.Background(), "run-1", &core.ContinuationCursor{NextIndex: 50, Total: 10})
	assert.ErrorIs(t, err, core.ErrCursorOutOfRange)
}
