package pipeline

import "errors"

var (
	// ErrImporterRequired is returned when a Scheduler is created without an importer
	ErrImporterRequired = errors.New("importer is required")
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
	// ErrInvalidBatchSize is returned when the batch size is <= 0
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")
	// ErrSchedulerBusy is returned when Run is called while a run is in progress
	ErrSchedulerBusy = errors.New("scheduler already has a run in progress")
	// ErrNoExportContent is returned when an export is written with no ancillary content
	ErrNoExportContent = errors.New("no ancillary content to export")
)
