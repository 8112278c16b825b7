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


// Package storage provides the persistence abstraction for importit.
//
// Two repositories back the pipeline's resumable state:
//
//   - CursorRepository: the continuation cursor for the enrichment
//     loop, persisted after every completed chunk so a paused loop can
//     resume across process restarts
//   - RunRepository: the journal of import runs, carrying final stats,
//     per-file outcomes, and the identifiers produced by the service
//
// Public constructors in backend packages return these interfaces to
// prevent coupling to a specific store; the BadgerDB implementation
// lives in storage/badger, including an in-memory variant for tests.
//
// All repository implementations must be thread-safe, and all methods
// accept context.Context for cancellation.
package storage
