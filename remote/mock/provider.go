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


package mock

import "github.com/poiesic/importit/remote"

// MockProvider is a test double for remote.Provider.
// It aggregates mock importer and enricher instances.
type MockProvider struct {
	importer *MockImporter
	enricher *MockEnricher
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns remote.Provider interface for consistency with production
// constructors. Use GetMockImporter()/GetMockEnricher() to access
// concrete types for test assertions.
func NewMockProvider() remote.Provider {
	return &MockProvider{
		importer: NewMockImporter(),
		enricher: NewMockEnricher(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(importer *MockImporter, enricher *MockEnricher) remote.Provider {
	return &MockProvider{
		importer: importer,
		enricher: enricher,
	}
}

// Importer returns the mock importer.
func (p *MockProvider) Importer() remote.Importer {
	return p.importer
}

// Enricher returns the mock enricher.
func (p *MockProvider) Enricher() remote.Enricher {
	return p.enricher
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockImporter returns the underlying mock importer for test assertions.
func (p *MockProvider) GetMockImporter() *MockImporter {
	return p.importer
}

// GetMockEnricher returns the underlying mock enricher for test assertions.
func (p *MockProvider) GetMockEnricher() *MockEnricher {
	return p.enricher
}
