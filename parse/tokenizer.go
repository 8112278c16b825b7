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
	"context"
	"encoding/json"
	"io"
	"unicode/utf8"

	"github.com/poiesic/importit/core"
)

const (
	// DefaultWindowSize is the default read window in bytes (4 MiB).
	DefaultWindowSize = 4 << 20
)

// ProgressFunc reports advisory read progress to the control surface.
// Called after each window with cumulative bytes read and the total file
// size; totalBytes is 0 when the source size is unknown.
type ProgressFunc func(bytesRead, totalBytes int64)

// Tokenizer extracts top-level JSON objects from a byte source by
// brace-depth matching. It reads the source in fixed windows and keeps
// at most one candidate object buffered, so arbitrarily large inputs can
// be tokenized without loading them into memory.
//
// A Tokenizer produces its sequence exactly once; ForEach returns
// ErrTokenizerConsumed on subsequent calls.
type Tokenizer struct {
	r          io.Reader
	windowSize int
	totalBytes int64
	progress   ProgressFunc

	// scan state, persists across windows
	depth    int
	inString bool
	escaped  bool
	buf      []byte

	skipped  int
	consumed bool
}

// TokenizerOption configures a Tokenizer.
type TokenizerOption func(*Tokenizer)

// WithWindowSize sets the read window size in bytes.
// Sizes <= 0 fall back to DefaultWindowSize.
func WithWindowSize(size int) TokenizerOption {
	return func(t *Tokenizer) {
		if size > 0 {
			t.windowSize = size
		}
	}
}

// WithProgress sets the progress callback and the total source size used
// to compute percentages. The callback is advisory only.
func WithProgress(totalBytes int64, fn ProgressFunc) TokenizerOption {
	return func(t *Tokenizer) {
		t.totalBytes = totalBytes
		t.progress = fn
	}
}

// NewTokenizer creates a tokenizer reading from r.
func NewTokenizer(r io.Reader, opts ...TokenizerOption) *Tokenizer {
	t := &Tokenizer{
		r:          r,
		windowSize: DefaultWindowSize,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Skipped returns the number of candidate spans that failed to parse or
// were truncated. Valid after ForEach returns.
func (t *Tokenizer) Skipped() int {
	return t.skipped
}

// ForEach scans the source and calls fn for each top-level object that
// parses to a mapping. Candidates that fail to parse are counted as
// skipped and never abort the scan; an error from fn stops iteration and
// is returned. Context cancellation is checked before each window read.
func (t *Tokenizer) ForEach(ctx context.Context, fn func(core.RawRecord) error) error {
	if t.consumed {
		return ErrTokenizerConsumed
	}
	t.consumed = true

	window := make([]byte, t.windowSize)
	var carry []byte // incomplete trailing rune held back from the previous window
	var bytesRead int64

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, readErr := io.ReadFull(t.r, window)
		if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
			return readErr
		}
		bytesRead += int64(n)
		atEOF := readErr != nil

		chunk := window[:n]
		if len(carry) > 0 {
			chunk = append(carry, chunk...)
			carry = nil
		}

		// Hold back a trailing incomplete rune so windows never split a
		// multi-byte character. At EOF everything is flushed as-is.
		if !atEOF {
			if cut := completeRuneBoundary(chunk); cut < len(chunk) {
				carry = append([]byte(nil), chunk[cut:]...)
				chunk = chunk[:cut]
			}
		}

		if err := t.scan(chunk, fn); err != nil {
			return err
		}

		if t.progress != nil {
			t.progress(bytesRead, t.totalBytes)
		}

		if atEOF {
			break
		}
	}

	// A truncated trailing object never produced its closing brace.
	if t.depth > 0 && len(t.buf) > 0 {
		t.skipped++
		t.buf = nil
	}

	return nil
}

// scan advances the brace-depth state machine over one window of input.
func (t *Tokenizer) scan(chunk []byte, fn func(core.RawRecord) error) error {
	for i := 0; i < len(chunk); {
		r, size := utf8.DecodeRune(chunk[i:])
		span := chunk[i : i+size]
		i += size

		if t.inString {
			// Inside a string literal everything is buffered verbatim;
			// only escape and closing-quote state is tracked.
			if t.depth > 0 {
				t.buf = append(t.buf, span...)
			}
			switch {
			case t.escaped:
				t.escaped = false
			case r == '\\':
				t.escaped = true
			case r == '"':
				t.inString = false
			}
			continue
		}

		switch r {
		case '"':
			t.inString = true
			if t.depth > 0 {
				t.buf = append(t.buf, span...)
			}
		case '{':
			t.depth++
			if t.depth == 1 {
				t.buf = t.buf[:0]
			}
			t.buf = append(t.buf, '{')
		case '}':
			if t.depth == 0 {
				// Stray closing brace outside any object; ignore.
				continue
			}
			t.buf = append(t.buf, '}')
			t.depth--
			if t.depth == 0 {
				if err := t.emit(fn); err != nil {
					return err
				}
			}
		default:
			if t.depth > 0 {
				t.buf = append(t.buf, span...)
			}
		}
	}
	return nil
}

// emit parses the buffered candidate and hands it to fn if it is a
// mapping. A parse failure is only a skip, never fatal.
func (t *Tokenizer) emit(fn func(core.RawRecord) error) error {
	var record core.RawRecord
	if err := json.Unmarshal(t.buf, &record); err != nil {
		t.skipped++
		t.buf = t.buf[:0]
		return nil
	}
	t.buf = t.buf[:0]
	return fn(record)
}

// completeRuneBoundary returns the largest index such that data[:index]
// ends on a complete UTF-8 rune.
func completeRuneBoundary(data []byte) int {
	end := len(data)
	for i := 1; i <= utf8.UTFMax && i <= end; i++ {
		if !utf8.RuneStart(data[end-i]) {
			continue
		}
		// Found the start of the trailing rune; keep it only if complete.
		if utf8.FullRune(data[end-i:]) {
			return end
		}
		return end - i
	}
	return end
}
