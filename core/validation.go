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


package core

import "fmt"

// ValidateCursor validates a ContinuationCursor according to domain rules.
//
// Validation rules:
//   - no counter may be negative
//   - DoneCount must not exceed Total
//   - NextIndex must not exceed Total
//
// NOT validated:
//   - UpdatedAt (zero is valid for a cursor that was never persisted)
func ValidateCursor(cursor *ContinuationCursor) error {
	if cursor == nil {
		return fmt.Errorf("%w: cursor is nil", ErrInvalidCursor)
	}

	if cursor.NextIndex < 0 || cursor.Total < 0 || cursor.DoneCount < 0 || cursor.ErrorCount < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCursor, ErrNegativeCounter)
	}

	if cursor.DoneCount > cursor.Total || cursor.NextIndex > cursor.Total {
		return fmt.Errorf("%w: %w", ErrInvalidCursor, ErrCursorOutOfRange)
	}

	return nil
}

// ValidateRunRecord validates a RunRecord according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Processed must not exceed Total
//
// NOT validated (populated as the run progresses):
//   - FinishedAt (zero while the run is live)
//   - ProducedIDs (may be empty when the service returns none)
func ValidateRunRecord(run *RunRecord) error {
	if run == nil {
		return fmt.Errorf("%w: run is nil", ErrInvalidRunRecord)
	}

	if run.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRunRecord, ErrEmptyRunID)
	}

	if run.Stats.Processed > run.Stats.Total {
		return fmt.Errorf("%w: processed %d exceeds total %d",
			ErrInvalidRunRecord, run.Stats.Processed, run.Stats.Total)
	}

	return nil
}
