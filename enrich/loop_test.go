package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/importit/core"
	"github.com/poiesic/importit/remote"
	"github.com/poiesic/importit/remote/mock"
	"github.com/poiesic/importit/storage"
	badgerstore "github.com/poiesic/importit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("doc-%06d", i)
	}
	return ids
}

func fastConfig() *Config {
	return &Config{
		ChunkSize:  5,
		ChunkDelay: time.Millisecond,
	}
}

func newTestLoop(t *testing.T, enricher remote.Enricher, opts ...LoopOption) (*Loop, storage.CursorRepository) {
	t.Helper()

	cursorRepo, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	opts = append([]LoopOption{WithConfig(fastConfig())}, opts...)
	loop, err := NewLoop(enricher, cursorRepo, opts...)
	require.NoError(t, err)
	return loop, cursorRepo
}

func waitDone(t *testing.T, loop *Loop) {
	t.Helper()
	select {
	case <-loop.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not finish")
	}
}

func TestLoop_RunsAllChunks(t *testing.T) {
	enricher := mock.NewMockEnricher()
	loop, _ := newTestLoop(t, enricher)

	require.NoError(t, loop.Start(context.Background(), "run-1", testIDs(12)))
	waitDone(t, loop)

	assert.Equal(t, core.LoopDone, loop.State())
	cursor := loop.Cursor()
	assert.Equal(t, 12, cursor.NextIndex)
	assert.Equal(t, 12, cursor.DoneCount)
	assert.Equal(t, 0, cursor.ErrorCount)

	// 12 ids, chunk size 5: chunks of 5, 5, 2
	chunks := enricher.Chunks()
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 5)
	assert.Len(t, chunks[2], 2)
	assert.Equal(t, "doc-000000", chunks[0][0])
	assert.Equal(t, "doc-000011", chunks[2][1])
}

func TestLoop_EmptyRunCompletesImmediately(t *testing.T) {
	enricher := mock.NewMockEnricher()
	loop, _ := newTestLoop(t, enricher)

	require.NoError(t, loop.Start(context.Background(), "run-1", nil))
	waitDone(t, loop)

	assert.Equal(t, core.LoopDone, loop.State())
	assert.Equal(t, 0, enricher.CallCount())
}

func TestLoop_FailedChunkAdvancesCursor(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	enricher := mock.NewMockEnricher()
	enricher.EnrichChunkFunc = func(ctx context.Context, req *remote.ChunkRequest) (*remote.ChunkResponse, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 2 {
			return nil, errors.New("service down")
		}
		return &remote.ChunkResponse{Processed: len(req.IDs)}, nil
	}
	loop, _ := newTestLoop(t, enricher)

	require.NoError(t, loop.Start(context.Background(), "run-1", testIDs(15)))
	waitDone(t, loop)

	cursor := loop.Cursor()
	assert.Equal(t, 15, cursor.NextIndex)
	assert.Equal(t, 10, cursor.DoneCount)
	assert.Equal(t, 5, cursor.ErrorCount)
	// No retry: exactly one call per chunk
	assert.Equal(t, 3, enricher.CallCount())
}

func TestLoop_PauseAndResume(t *testing.T) {
	enricher := mock.NewMockEnricher()
	afterSecond := make(chan struct{})
	var once sync.Once
	var mu sync.Mutex
	calls := 0
	enricher.EnrichChunkFunc = func(ctx context.Context, req *remote.ChunkRequest) (*remote.ChunkResponse, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 2 {
			once.Do(func() { close(afterSecond) })
		}
		return &remote.ChunkResponse{Processed: len(req.IDs)}, nil
	}

	config := fastConfig()
	config.ChunkDelay = 50 * time.Millisecond
	cursorRepo, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	loop, err := NewLoop(enricher, cursorRepo, WithConfig(config))
	require.NoError(t, err)

	require.NoError(t, loop.Start(context.Background(), "run-1", testIDs(25)))

	<-afterSecond
	loop.Pause()

	// The loop settles while paused: the in-flight chunk finishes, then
	// nothing else is dispatched.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, core.LoopPaused, loop.State())

	pausedAt := loop.Cursor().NextIndex
	pausedCalls := enricher.CallCount()
	assert.Less(t, pausedAt, 25)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, pausedCalls, enricher.CallCount(), "no chunks while paused")

	require.NoError(t, loop.Resume(context.Background()))
	waitDone(t, loop)

	cursor := loop.Cursor()
	assert.Equal(t, 25, cursor.NextIndex)
	assert.Equal(t, 25, cursor.DoneCount)

	// No ID enriched twice
	seen := map[string]bool{}
	for _, chunk := range enricher.Chunks() {
		for _, id := range chunk {
			assert.False(t, seen[id], "id %s reprocessed", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, 25)
}

func TestLoop_ResumeDuringInFlightChunk(t *testing.T) {
	enricher := mock.NewMockEnricher()
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	enricher.EnrichChunkFunc = func(ctx context.Context, req *remote.ChunkRequest) (*remote.ChunkResponse, error) {
		once.Do(func() {
			close(entered)
			<-release
		})
		return &remote.ChunkResponse{Processed: len(req.IDs)}, nil
	}
	loop, _ := newTestLoop(t, enricher)

	require.NoError(t, loop.Start(context.Background(), "run-1", testIDs(10)))

	// Pause and resume while the first chunk is still in flight: the
	// finishing chunk must continue the single chain, not race a second
	// dispatch over the same cursor position.
	<-entered
	loop.Pause()
	require.NoError(t, loop.Resume(context.Background()))
	close(release)

	waitDone(t, loop)

	cursor := loop.Cursor()
	assert.Equal(t, 10, cursor.NextIndex)
	assert.Equal(t, 10, cursor.DoneCount)
	assert.Equal(t, 0, cursor.ErrorCount)
	assert.Equal(t, 2, enricher.CallCount())

	seen := map[string]bool{}
	for _, chunk := range enricher.Chunks() {
		for _, id := range chunk {
			assert.False(t, seen[id], "id %s enriched twice", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, 10)
}

func TestLoop_CursorPersistedEveryChunk(t *testing.T) {
	enricher := mock.NewMockEnricher()
	loop, cursorRepo := newTestLoop(t, enricher)

	require.NoError(t, loop.Start(context.Background(), "run-1", testIDs(7)))
	waitDone(t, loop)

	saved, err := cursorRepo.LoadCursor(context.Background(), "run-1")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, 7, saved.NextIndex)
	assert.Equal(t, 7, saved.DoneCount)
	assert.False(t, saved.UpdatedAt.IsZero())
}

func TestLoop_ResumeRunFromStorage(t *testing.T) {
	enricher := mock.NewMockEnricher()
	loop, cursorRepo := newTestLoop(t, enricher)

	ids := testIDs(20)

	// A previous process got through the first two chunks
	require.NoError(t, cursorRepo.SaveCursor(context.Background(), "run-1", &core.ContinuationCursor{
		NextIndex: 10,
		Total:     20,
		DoneCount: 10,
	}))

	require.NoError(t, loop.ResumeRun(context.Background(), "run-1", ids))
	waitDone(t, loop)

	cursor := loop.Cursor()
	assert.Equal(t, 20, cursor.NextIndex)
	assert.Equal(t, 20, cursor.DoneCount)

	// Only the second half was dispatched
	chunks := enricher.Chunks()
	require.Len(t, chunks, 2)
	assert.Equal(t, "doc-000010", chunks[0][0])
}

func TestLoop_ResumeRunErrors(t *testing.T) {
	enricher := mock.NewMockEnricher()
	loop, cursorRepo := newTestLoop(t, enricher)

	err := loop.ResumeRun(context.Background(), "run-1", testIDs(5))
	assert.ErrorIs(t, err, ErrNoSavedCursor)

	require.NoError(t, cursorRepo.SaveCursor(context.Background(), "run-1", &core.ContinuationCursor{
		NextIndex: 2,
		Total:     5,
		DoneCount: 2,
	}))

	err = loop.ResumeRun(context.Background(), "run-1", testIDs(9))
	assert.ErrorIs(t, err, ErrCursorMismatch)
}

func TestLoop_StartWhileActive(t *testing.T) {
	enricher := mock.NewMockEnricher()
	blocker := make(chan struct{})
	enricher.EnrichChunkFunc = func(ctx context.Context, req *remote.ChunkRequest) (*remote.ChunkResponse, error) {
		<-blocker
		return &remote.ChunkResponse{Processed: len(req.IDs)}, nil
	}
	loop, _ := newTestLoop(t, enricher)

	require.NoError(t, loop.Start(context.Background(), "run-1", testIDs(10)))
	err := loop.Start(context.Background(), "run-2", testIDs(10))
	assert.ErrorIs(t, err, ErrLoopBusy)

	close(blocker)
	waitDone(t, loop)
}

func TestLoop_ResumeWhenNotPaused(t *testing.T) {
	enricher := mock.NewMockEnricher()
	loop, _ := newTestLoop(t, enricher)

	err := loop.Resume(context.Background())
	assert.ErrorIs(t, err, ErrNotPaused)
}

func TestLoop_ProgressSnapshots(t *testing.T) {
	enricher := mock.NewMockEnricher()
	progress := make(chan core.StatsSnapshot, 16)
	loop, _ := newTestLoop(t, enricher, WithProgress(progress))

	require.NoError(t, loop.Start(context.Background(), "run-1", testIDs(10)))
	waitDone(t, loop)
	close(progress)

	var snapshots []core.StatsSnapshot
	for s := range progress {
		snapshots = append(snapshots, s)
	}
	require.Len(t, snapshots, 2)
	assert.Equal(t, 5, snapshots[0].Processed)
	assert.Equal(t, 10, snapshots[1].Processed)
	assert.InDelta(t, 100.0, snapshots[1].PercentComplete, 0.001)
}
