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

import "errors"

// Domain validation errors
var (
	// ErrInvalidCursor indicates a ContinuationCursor failed validation.
	ErrInvalidCursor = errors.New("invalid continuation cursor")

	// ErrInvalidRunRecord indicates a RunRecord failed validation.
	ErrInvalidRunRecord = errors.New("invalid run record")

	// ErrEmptyRunID indicates the run ID field is empty.
	ErrEmptyRunID = errors.New("run id cannot be empty")

	// ErrCursorOutOfRange indicates cursor counters exceed the total.
	ErrCursorOutOfRange = errors.New("cursor counters exceed total")

	// ErrNegativeCounter indicates a counter went below zero.
	ErrNegativeCounter = errors.New("counter cannot be negative")
)
