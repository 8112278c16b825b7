package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/importit/remote"
)

// MockImporter is a test double for remote.Importer.
// It allows custom behavior injection via function fields.
type MockImporter struct {
	// ImportBatchFunc is called by ImportBatch if set.
	// If nil, uses default deterministic behavior: the whole batch
	// succeeds and produces sequential identifiers.
	ImportBatchFunc func(ctx context.Context, req *remote.BatchRequest) (*remote.BatchResponse, error)

	mu        sync.Mutex
	callCount int
	produced  int
}

// NewMockImporter creates a mock importer with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via CallCount().
func NewMockImporter() *MockImporter {
	return &MockImporter{}
}

// ImportBatch records the call and dispatches to ImportBatchFunc, or to
// the default all-succeed behavior when no function is injected.
func (m *MockImporter) ImportBatch(ctx context.Context, req *remote.BatchRequest) (*remote.BatchResponse, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.ImportBatchFunc != nil {
		return m.ImportBatchFunc(ctx, req)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, len(req.Records))
	for i := range req.Records {
		ids[i] = fmt.Sprintf("doc-%06d", m.produced)
		m.produced++
	}

	return &remote.BatchResponse{
		BatchProcessed: len(req.Records),
		Succeeded:      len(req.Records),
		ProducedIDs:    ids,
	}, nil
}

// CallCount returns the number of ImportBatch invocations.
func (m *MockImporter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears call counts and produced-ID state.
func (m *MockImporter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.produced = 0
}
