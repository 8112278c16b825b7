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


package openai

import (
	"log/slog"

	"github.com/poiesic/importit/remote"
)

// Provider implements remote.Provider using OpenAI-compatible services.
// It manages importer and enricher instances.
type Provider struct {
	config   *remote.Config
	importer *Importer
	enricher *Enricher
	logger   *slog.Logger
}

// NewProvider creates a new remote provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns remote.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *remote.Config) (remote.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	importer, err := newImporter(config)
	if err != nil {
		return nil, err
	}

	enricher, err := newEnricher(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:   config,
		importer: importer,
		enricher: enricher,
		logger:   slog.Default().With("component", "openai-provider"),
	}, nil
}

// Importer returns the batch import service.
func (p *Provider) Importer() remote.Importer {
	return p.importer
}

// Enricher returns the enrichment service.
func (p *Provider) Enricher() remote.Enricher {
	return p.enricher
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
