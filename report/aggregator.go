package report

import (
	"sync"

	"github.com/poiesic/importit/core"
)

// Aggregator accumulates error details across one import run.
// Writes come from the single active scheduler; reads are snapshots
// taken by the control surface, so access is guarded for safe display
// while a run is live.
type Aggregator struct {
	mu      sync.Mutex
	details []core.ErrorDetail
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add appends one failure entry.
func (a *Aggregator) Add(title, errMsg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.details = append(a.details, core.ErrorDetail{Title: title, Error: errMsg})
}

// AddDetails appends failure entries reported by the remote service.
func (a *Aggregator) AddDetails(details ...core.ErrorDetail) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.details = append(a.details, details...)
}

// Details returns a copy of the accumulated entries in insertion order.
func (a *Aggregator) Details() []core.ErrorDetail {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]core.ErrorDetail, len(a.details))
	copy(out, a.details)
	return out
}

// Len returns the number of accumulated entries.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.details)
}

// Reset clears the aggregator for a new run.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.details = nil
}
