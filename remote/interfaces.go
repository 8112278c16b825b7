package remote

import "context"

// Importer sends record batches to the remote import/transform service.
// Implementations must be thread-safe for concurrent use.
type Importer interface {
	// ImportBatch submits one batch of raw records together with the
	// run's processing options. The response reports per-batch counters
	// and the identifiers the service produced for the records.
	// A non-nil error means the whole batch attempt failed and may be
	// retried by the caller.
	ImportBatch(ctx context.Context, req *BatchRequest) (*BatchResponse, error)
}

// Enricher performs the secondary enrichment call over identifiers
// produced by a completed import run.
// Implementations must be thread-safe for concurrent use.
type Enricher interface {
	// EnrichChunk enriches one chunk of produced identifiers.
	// The concurrency and delay hints are forwarded opaquely to the
	// service; the caller never dispatches more than one chunk at a time.
	EnrichChunk(ctx context.Context, req *ChunkRequest) (*ChunkResponse, error)
}

// Provider aggregates remote services for convenient initialization and
// lifecycle management. A provider creates and manages Importer and
// Enricher instances, ensuring they share configuration and resources.
type Provider interface {
	// Importer returns the batch import service.
	// The returned Importer is safe for concurrent use.
	Importer() Importer

	// Enricher returns the enrichment service.
	// The returned Enricher is safe for concurrent use.
	Enricher() Enricher

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
