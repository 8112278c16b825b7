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


package storage

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/importit/core"
)

// The persisted structs are small and flat, so the serializers are
// written by hand against the mus-go primitives instead of generated.

// MarshalCursor serializes a ContinuationCursor to bytes.
func MarshalCursor(cursor *core.ContinuationCursor) []byte {
	micro := cursor.UpdatedAt.UnixMicro()
	size := varint.Int.Size(cursor.NextIndex) +
		varint.Int.Size(cursor.Total) +
		varint.Int.Size(cursor.DoneCount) +
		varint.Int.Size(cursor.ErrorCount) +
		varint.Int64.Size(micro)

	buf := make([]byte, size)
	n := varint.Int.Marshal(cursor.NextIndex, buf)
	n += varint.Int.Marshal(cursor.Total, buf[n:])
	n += varint.Int.Marshal(cursor.DoneCount, buf[n:])
	n += varint.Int.Marshal(cursor.ErrorCount, buf[n:])
	varint.Int64.Marshal(micro, buf[n:])
	return buf
}

// UnmarshalCursor deserializes a ContinuationCursor from bytes.
func UnmarshalCursor(data []byte) (*core.ContinuationCursor, error) {
	cursor := &core.ContinuationCursor{}
	n := 0

	var err error
	var m int
	if cursor.NextIndex, m, err = varint.Int.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	if cursor.Total, m, err = varint.Int.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	if cursor.DoneCount, m, err = varint.Int.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	if cursor.ErrorCount, m, err = varint.Int.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m

	micro, _, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	if micro != 0 {
		cursor.UpdatedAt = time.UnixMicro(micro).UTC()
	}

	return cursor, nil
}

// MarshalRun serializes a RunRecord to bytes.
func MarshalRun(run *core.RunRecord) []byte {
	buf := make([]byte, sizeRun(run))
	n := ord.String.Marshal(run.ID, buf)
	n += varint.Int64.Marshal(run.StartedAt.UnixMicro(), buf[n:])
	n += varint.Int64.Marshal(finishedMicro(run), buf[n:])
	n += marshalStats(&run.Stats, buf[n:])
	n += varint.Int.Marshal(len(run.Files), buf[n:])
	for i := range run.Files {
		n += marshalFileEntry(&run.Files[i], buf[n:])
	}
	n += varint.Int.Marshal(len(run.ProducedIDs), buf[n:])
	for _, id := range run.ProducedIDs {
		n += ord.String.Marshal(id, buf[n:])
	}
	n += ord.Bool.Marshal(run.Aborted, buf[n:])
	ord.Bool.Marshal(run.CircuitTripped, buf[n:])
	return buf
}

// UnmarshalRun deserializes a RunRecord from bytes.
func UnmarshalRun(data []byte) (*core.RunRecord, error) {
	run := &core.RunRecord{}
	n := 0

	var err error
	var m int
	if run.ID, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m

	var started, finished int64
	if started, m, err = varint.Int64.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	if finished, m, err = varint.Int64.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	run.StartedAt = time.UnixMicro(started).UTC()
	if finished != 0 {
		run.FinishedAt = time.UnixMicro(finished).UTC()
	}

	if m, err = unmarshalStats(&run.Stats, data[n:]); err != nil {
		return nil, err
	}
	n += m

	var count int
	if count, m, err = varint.Int.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	for i := 0; i < count; i++ {
		var entry core.FileEntry
		if m, err = unmarshalFileEntry(&entry, data[n:]); err != nil {
			return nil, err
		}
		n += m
		run.Files = append(run.Files, entry)
	}

	if count, m, err = varint.Int.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	for i := 0; i < count; i++ {
		var id string
		if id, m, err = ord.String.Unmarshal(data[n:]); err != nil {
			return nil, err
		}
		n += m
		run.ProducedIDs = append(run.ProducedIDs, id)
	}

	if run.Aborted, m, err = ord.Bool.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	if run.CircuitTripped, _, err = ord.Bool.Unmarshal(data[n:]); err != nil {
		return nil, err
	}

	return run, nil
}

func finishedMicro(run *core.RunRecord) int64 {
	if run.FinishedAt.IsZero() {
		return 0
	}
	return run.FinishedAt.UnixMicro()
}

func sizeRun(run *core.RunRecord) int {
	size := ord.String.Size(run.ID) +
		varint.Int64.Size(run.StartedAt.UnixMicro()) +
		varint.Int64.Size(finishedMicro(run)) +
		sizeStats(&run.Stats) +
		varint.Int.Size(len(run.Files)) +
		varint.Int.Size(len(run.ProducedIDs)) +
		ord.Bool.Size(run.Aborted) +
		ord.Bool.Size(run.CircuitTripped)
	for i := range run.Files {
		size += sizeFileEntry(&run.Files[i])
	}
	for _, id := range run.ProducedIDs {
		size += ord.String.Size(id)
	}
	return size
}

func marshalStats(stats *core.ImportStats, buf []byte) int {
	n := varint.Int.Marshal(stats.Total, buf)
	n += varint.Int.Marshal(stats.Processed, buf[n:])
	n += varint.Int.Marshal(stats.Succeeded, buf[n:])
	n += varint.Int.Marshal(stats.Partial, buf[n:])
	n += varint.Int.Marshal(stats.Errors, buf[n:])
	n += varint.Int.Marshal(stats.ParseSkipped, buf[n:])
	return n
}

func unmarshalStats(stats *core.ImportStats, data []byte) (int, error) {
	fields := []*int{
		&stats.Total, &stats.Processed, &stats.Succeeded,
		&stats.Partial, &stats.Errors, &stats.ParseSkipped,
	}
	n := 0
	for _, field := range fields {
		v, m, err := varint.Int.Unmarshal(data[n:])
		if err != nil {
			return n, err
		}
		*field = v
		n += m
	}
	return n, nil
}

func sizeStats(stats *core.ImportStats) int {
	return varint.Int.Size(stats.Total) +
		varint.Int.Size(stats.Processed) +
		varint.Int.Size(stats.Succeeded) +
		varint.Int.Size(stats.Partial) +
		varint.Int.Size(stats.Errors) +
		varint.Int.Size(stats.ParseSkipped)
}

func marshalFileEntry(entry *core.FileEntry, buf []byte) int {
	n := ord.String.Marshal(entry.Name, buf)
	n += varint.Int.Marshal(entry.RecordCount, buf[n:])
	n += varint.Int.Marshal(entry.SkippedCount, buf[n:])
	n += varint.Int.Marshal(entry.DuplicateCount, buf[n:])
	return n
}

func unmarshalFileEntry(entry *core.FileEntry, data []byte) (int, error) {
	name, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return n, err
	}
	entry.Name = name

	fields := []*int{&entry.RecordCount, &entry.SkippedCount, &entry.DuplicateCount}
	for _, field := range fields {
		v, m, err := varint.Int.Unmarshal(data[n:])
		if err != nil {
			return n, err
		}
		*field = v
		n += m
	}
	return n, nil
}

func sizeFileEntry(entry *core.FileEntry) int {
	return ord.String.Size(entry.Name) +
		varint.Int.Size(entry.RecordCount) +
		varint.Int.Size(entry.SkippedCount) +
		varint.Int.Size(entry.DuplicateCount)
}
