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


package parse

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/importit/core"
)

const (
	// DefaultEagerLimit is the file size in bytes above which files are
	// streamed through the tokenizer instead of parsed eagerly (8 MiB).
	DefaultEagerLimit = 8 << 20
)

// LoadResult aggregates the records and per-file summaries of one load.
type LoadResult struct {
	Records []core.RawRecord
	Files   []core.FileEntry
}

// Skipped returns the total skipped count across all files.
func (r *LoadResult) Skipped() int {
	total := 0
	for _, f := range r.Files {
		total += f.SkippedCount
	}
	return total
}

// Loader parses a list of source files in order, choosing the streaming
// tokenizer or the eager parser per file, and tracks duplicate records
// across the whole load for reporting.
type Loader struct {
	windowSize int
	eagerLimit int64
	progress   ProgressFunc
	logger     *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderWindowSize sets the tokenizer window size for streamed files.
func WithLoaderWindowSize(size int) LoaderOption {
	return func(l *Loader) {
		if size > 0 {
			l.windowSize = size
		}
	}
}

// WithEagerLimit sets the file size above which files are streamed.
func WithEagerLimit(limit int64) LoaderOption {
	return func(l *Loader) {
		if limit > 0 {
			l.eagerLimit = limit
		}
	}
}

// WithLoaderProgress sets the advisory per-window progress callback used
// while streaming large files.
func WithLoaderProgress(fn ProgressFunc) LoaderOption {
	return func(l *Loader) {
		l.progress = fn
	}
}

// WithLoaderLogger sets a custom logger. Default is slog.Default().
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a loader with default window size and eager limit.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		windowSize: DefaultWindowSize,
		eagerLimit: DefaultEagerLimit,
		logger:     slog.Default().With("component", "loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFiles parses each file in order and returns all records plus one
// FileEntry per file. Records are returned in source order; parse
// failures inside a file are counted, never fatal, so one unparseable
// file yields an entry with zero records rather than an error.
func (l *Loader) LoadFiles(ctx context.Context, paths []string) (*LoadResult, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	result := &LoadResult{}
	seen := make(map[core.ID]struct{})

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		entry, records, err := l.loadFile(ctx, path)
		if err != nil {
			return nil, err
		}

		for _, record := range records {
			fp := record.Fingerprint()
			if _, dup := seen[fp]; dup {
				entry.DuplicateCount++
			} else {
				seen[fp] = struct{}{}
			}
			result.Records = append(result.Records, record)
		}

		l.logger.Info("parsed source file",
			"file", entry.Name,
			"records", entry.RecordCount,
			"skipped", entry.SkippedCount,
			"duplicates", entry.DuplicateCount)

		result.Files = append(result.Files, entry)
	}

	return result, nil
}

// loadFile parses a single file, streaming when it is large or when it
// is a raw stream of concatenated object literals.
func (l *Loader) loadFile(ctx context.Context, path string) (core.FileEntry, []core.RawRecord, error) {
	entry := core.FileEntry{Name: filepath.Base(path)}

	info, err := os.Stat(path)
	if err != nil {
		return entry, nil, err
	}

	if info.Size() > l.eagerLimit {
		records, skipped, err := l.streamFile(ctx, path, info.Size())
		if err != nil {
			return entry, nil, err
		}
		entry.RecordCount = len(records)
		entry.SkippedCount = skipped
		return entry, records, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return entry, nil, err
	}

	eager := ParseEager(string(data))
	records, skipped := eager.Records, eager.Skipped

	// A raw stream of concatenated multi-line object literals defeats
	// line mode; when that shape is plausible, re-tokenize instead.
	if len(records) == 0 && skipped > 0 && bytes.ContainsRune(data, '{') {
		if head := bytes.TrimSpace(data); len(head) > 0 && head[0] != '[' {
			tok := NewTokenizer(bytes.NewReader(data), WithWindowSize(l.windowSize))
			records = nil
			err = tok.ForEach(ctx, func(record core.RawRecord) error {
				records = append(records, record)
				return nil
			})
			if err != nil {
				return entry, nil, err
			}
			skipped = tok.Skipped()
		}
	}

	entry.RecordCount = len(records)
	entry.SkippedCount = skipped
	return entry, records, nil
}

func (l *Loader) streamFile(ctx context.Context, path string, size int64) ([]core.RawRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	opts := []TokenizerOption{WithWindowSize(l.windowSize)}
	if l.progress != nil {
		opts = append(opts, WithProgress(size, l.progress))
	}

	var records []core.RawRecord
	tok := NewTokenizer(f, opts...)
	err = tok.ForEach(ctx, func(record core.RawRecord) error {
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return records, tok.Skipped(), nil
}
