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


// Package remote provides abstractions for the remote document service
// used by the import pipeline.
//
// The service is treated as an opaque network collaborator: it receives
// record batches for import/transformation (OCR, translation, content
// generation) and a secondary enrichment call over produced identifiers.
// The package defines interfaces so the pipeline depends on abstractions
// rather than concrete transports:
//
//   - Importer: sends one batch of raw records for import
//   - Enricher: enriches a chunk of produced identifiers
//   - Provider: aggregates both services for convenient initialization
//
// # Implementation Packages
//
//   - remote/openai: production implementation against OpenAI-compatible
//     document services
//   - remote/mock: test doubles for unit testing without a network
package remote
