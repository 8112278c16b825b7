// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/poiesic/importit/core"
)

// Report is the downloadable error report for one run.
type Report struct {
	RunID       string             `json:"run_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	ErrorCount  int                `json:"error_count"`
	Errors      []core.ErrorDetail `json:"errors"`
}

// Build assembles a report from the aggregator's current contents.
func Build(runID string, aggregator *Aggregator) *Report {
	details := aggregator.Details()
	return &Report{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		ErrorCount:  len(details),
		Errors:      details,
	}
}

// Write serializes the report as indented JSON.
func Write(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteGz serializes the report as gzip-compressed JSON, for large
// failure counts.
func WriteGz(w io.Writer, r *Report) error {
	gz := gzip.NewWriter(w)
	if err := Write(gz, r); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}
