package importit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/importit/core"
	"github.com/poiesic/importit/enrich"
	"github.com/poiesic/importit/pipeline"
	"github.com/poiesic/importit/remote/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) (*Database, *mock.MockProvider) {
	t.Helper()

	provider := mock.NewMockProvider()
	db, err := NewDatabase("",
		WithInMemoryStorage(),
		WithProvider(provider),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db, provider.(*mock.MockProvider)
}

func TestNewDatabase_InMemory(t *testing.T) {
	db, _ := newTestDatabase(t)

	assert.NotNil(t, db.CursorRepository())
	assert.NotNil(t, db.RunRepository())
	assert.NotNil(t, db.Provider())
}

func TestDatabase_ImportAndEnrich(t *testing.T) {
	db, provider := newTestDatabase(t)
	ctx := context.Background()

	records := make([]core.RawRecord, 12)
	for i := range records {
		records[i] = core.RawRecord{"title": fmt.Sprintf("doc %d", i)}
	}

	scheduler, err := db.NewScheduler(pipeline.WithConfig(&pipeline.Config{
		BatchSize:        5,
		MaxAttempts:      3,
		RetryBaseDelay:   time.Millisecond,
		BreakerThreshold: 5,
	}))
	require.NoError(t, err)

	result, err := scheduler.Run(ctx, records, 0)
	require.NoError(t, err)
	assert.Equal(t, 12, result.Stats.Processed)
	require.Len(t, result.ProducedIDs, 12)

	// Journal the run
	run := &core.RunRecord{
		ID:          uuid.NewString(),
		StartedAt:   time.Now().UTC(),
		FinishedAt:  time.Now().UTC(),
		Stats:       result.Stats,
		ProducedIDs: result.ProducedIDs,
	}
	require.NoError(t, db.RunRepository().SaveRun(ctx, run))

	// Enrich the produced identifiers
	loop, err := db.NewLoop(enrich.WithConfig(&enrich.Config{
		ChunkSize:  4,
		ChunkDelay: time.Millisecond,
	}))
	require.NoError(t, err)

	require.NoError(t, loop.Start(ctx, run.ID, result.ProducedIDs))
	select {
	case <-loop.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("enrichment did not finish")
	}

	cursor := loop.Cursor()
	assert.Equal(t, 12, cursor.DoneCount)
	assert.Equal(t, 3, provider.GetMockEnricher().CallCount())

	// The run is findable again
	latest, err := db.RunRepository().LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)
}

func TestDatabase_FileSystemStorage(t *testing.T) {
	dir := t.TempDir()

	provider := mock.NewMockProvider()
	db, err := NewDatabase(dir, WithProvider(provider))
	require.NoError(t, err)

	ctx := context.Background()
	run := &core.RunRecord{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	require.NoError(t, db.RunRepository().SaveRun(ctx, run))
	require.NoError(t, db.Close())

	// Reopen and read back
	db, err = NewDatabase(dir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer db.Close()

	loaded, err := db.RunRepository().GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, loaded.ID)
}
