package enrich

import "errors"

var (
	// ErrEnricherRequired is returned when a Loop is created without an enricher
	ErrEnricherRequired = errors.New("enricher is required")
	// ErrCursorRepositoryRequired is returned when a Loop is created without a cursor repository
	ErrCursorRepositoryRequired = errors.New("cursor repository is required")
	// ErrLoopBusy is returned when Start is called while the loop is running or paused
	ErrLoopBusy = errors.New("continuation loop already active")
	// ErrNotPaused is returned when Resume is called in a state with nothing to resume
	ErrNotPaused = errors.New("continuation loop is not paused")
	// ErrNoSavedCursor is returned when resuming a run that has no persisted cursor
	ErrNoSavedCursor = errors.New("no saved cursor for run")
	// ErrCursorMismatch is returned when a persisted cursor does not match the identifier list
	ErrCursorMismatch = errors.New("saved cursor does not match identifier list")
)
