package parse

import (
	"encoding/json"
	"strings"

	"github.com/poiesic/importit/core"
)

// EagerResult holds the outcome of an eager parse.
type EagerResult struct {
	Records []core.RawRecord
	Skipped int
}

// ParseEager parses an in-memory input that is either a JSON array or
// newline-delimited objects. If the input starts with '[' a single
// structured parse is attempted, keeping mapping elements and counting
// everything else as skipped; when that parse fails the input falls
// through to line mode. In line mode each non-blank line is parsed
// independently and failures are skipped, never fatal.
func ParseEager(text string) *EagerResult {
	result := &EagerResult{}

	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "[") {
		var elements []any
		if err := json.Unmarshal([]byte(trimmed), &elements); err == nil {
			for _, element := range elements {
				if mapping, ok := element.(map[string]any); ok {
					result.Records = append(result.Records, core.RawRecord(mapping))
				} else {
					result.Skipped++
				}
			}
			return result
		}
		// Malformed array; fall through to line mode.
	}

	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var record core.RawRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil || record == nil {
			// Unparseable, or a JSON null: not a usable record shape.
			result.Skipped++
			continue
		}
		result.Records = append(result.Records, record)
	}

	return result
}
