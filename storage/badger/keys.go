package badger

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Key prefixes for different data types
const (
	cursorPrefix  = "curs"
	runPrefix     = "runrec"
	runDatePrefix = "runrecd"
)

// makeCursorKey generates a key for a continuation cursor by run ID.
func makeCursorKey(runID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", cursorPrefix, runID))
}

// makeRunKey generates a key for a run record by ID.
func makeRunKey(runID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", runPrefix, runID))
}

// makeRunDateKey generates a composite key for the start-time index.
// Format: prefix:timestamp:runID
func makeRunDateKey(startedAt time.Time, runID string) []byte {
	prefix := runDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 + len(runID) // 8 bytes for timestamp + run ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(startedAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], runID)
	return buf
}
