package mock

import (
	"context"
	"sync"

	"github.com/poiesic/importit/remote"
)

// MockEnricher is a test double for remote.Enricher.
// It allows custom behavior injection via function fields.
type MockEnricher struct {
	// EnrichChunkFunc is called by EnrichChunk if set.
	// If nil, uses default behavior: every identifier is processed.
	EnrichChunkFunc func(ctx context.Context, req *remote.ChunkRequest) (*remote.ChunkResponse, error)

	mu        sync.Mutex
	callCount int
	chunks    [][]string
}

// NewMockEnricher creates a mock enricher with default behavior.
// Note: Returns concrete type to allow test assertions via CallCount().
func NewMockEnricher() *MockEnricher {
	return &MockEnricher{}
}

// EnrichChunk records the call and dispatches to EnrichChunkFunc, or to
// the default all-processed behavior when no function is injected.
func (m *MockEnricher) EnrichChunk(ctx context.Context, req *remote.ChunkRequest) (*remote.ChunkResponse, error) {
	m.mu.Lock()
	m.callCount++
	m.chunks = append(m.chunks, append([]string(nil), req.IDs...))
	m.mu.Unlock()

	if m.EnrichChunkFunc != nil {
		return m.EnrichChunkFunc(ctx, req)
	}

	return &remote.ChunkResponse{Processed: len(req.IDs)}, nil
}

// CallCount returns the number of EnrichChunk invocations.
func (m *MockEnricher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Chunks returns a copy of every identifier chunk received, in order.
func (m *MockEnricher) Chunks() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.chunks))
	copy(out, m.chunks)
	return out
}

// Reset clears call counts and recorded chunks.
func (m *MockEnricher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.chunks = nil
}
