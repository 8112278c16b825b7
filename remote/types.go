package remote

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/importit/core"
)

// ImportOptions carries processing hints forwarded opaquely to the
// remote service with every batch. The service decides what each hint
// means; the pipeline never interprets them.
type ImportOptions struct {
	// OCR requests text recognition for image-bearing documents.
	OCR bool `yaml:"ocr" json:"ocr,omitempty"`

	// Translate requests translation into TargetLanguage.
	Translate bool `yaml:"translate" json:"translate,omitempty"`

	// TargetLanguage is the ISO language code used when Translate is set.
	TargetLanguage string `yaml:"target_language" json:"target_language,omitempty"`

	// GenerateSummary requests per-record summary generation.
	GenerateSummary bool `yaml:"generate_summary" json:"generate_summary,omitempty"`

	// Extra holds service-specific hints not modeled above.
	Extra map[string]string `yaml:"extra" json:"extra,omitempty"`
}

// LoadImportOptions reads ImportOptions from a YAML file.
func LoadImportOptions(path string) (*ImportOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options file: %w", err)
	}

	var opts ImportOptions
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("failed to parse options file: %w", err)
	}
	return &opts, nil
}

// BatchRequest is one import call: a bounded slice of records plus the
// run's processing options.
type BatchRequest struct {
	Records []core.RawRecord
	Options ImportOptions
}

// BatchResponse reports the outcome of one import call.
type BatchResponse struct {
	// BatchProcessed is the number of records the service handled.
	BatchProcessed int

	// Succeeded, Partial, and Errors partition the processed records.
	Succeeded int
	Partial   int
	Errors    int

	// ErrorDetails carries per-record failure descriptions, if any.
	ErrorDetails []core.ErrorDetail

	// ProducedIDs are the identifiers the service assigned to imported
	// records, consumed later by the enrichment loop.
	ProducedIDs []string

	// AncillaryContent is an optional export fragment (e.g. generated
	// markup) accumulated by the pipeline and flushed at run end.
	AncillaryContent string
}

// ChunkRequest is one enrichment call over produced identifiers.
type ChunkRequest struct {
	IDs             []string
	ConcurrencyHint int
	DelayHint       time.Duration
}

// ChunkResponse reports the outcome of one enrichment call.
type ChunkResponse struct {
	Processed int
	Errors    int
}
