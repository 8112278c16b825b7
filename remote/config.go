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


package remote

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for remote service providers.
type Config struct {
	// ImportHost is the base URL for the import/transform service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	ImportHost string

	// EnrichHost is the base URL for the enrichment service API.
	// Defaults to ImportHost when unset.
	EnrichHost string

	// ImportModel is the model identifier used for document transformation.
	ImportModel string

	// EnrichModel is the model identifier used for enrichment.
	EnrichModel string

	// CallTimeout bounds each remote call with a context deadline.
	// Zero means no per-call timeout: a hung call blocks its batch, which
	// is the reference behavior of the pipeline.
	CallTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithImportHost sets the import service host URL.
func WithImportHost(host string) ConfigOption {
	return func(c *Config) {
		c.ImportHost = host
	}
}

// WithEnrichHost sets the enrichment service host URL.
func WithEnrichHost(host string) ConfigOption {
	return func(c *Config) {
		c.EnrichHost = host
	}
}

// WithHost sets both import and enrichment hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.ImportHost = host
		c.EnrichHost = host
	}
}

// WithImportModel sets the import model identifier.
func WithImportModel(model string) ConfigOption {
	return func(c *Config) {
		c.ImportModel = model
	}
}

// WithEnrichModel sets the enrichment model identifier.
func WithEnrichModel(model string) ConfigOption {
	return func(c *Config) {
		c.EnrichModel = model
	}
}

// WithCallTimeout sets the per-call timeout.
func WithCallTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.CallTimeout = timeout
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		ImportHost:  defaultHost,
		EnrichHost:  defaultHost,
		ImportModel: "qwen2.5:3b",
		EnrichModel: "qwen2.5:3b",
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options. This is the recommended way to create a Config.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithImportModel("gpt-4o-mini"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It fills EnrichHost from ImportHost when unset and adds the /v1 suffix
// required by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EnrichHost == "" {
		c.EnrichHost = c.ImportHost
	}
	if c.EnrichModel == "" {
		c.EnrichModel = c.ImportModel
	}
	if c.ImportHost != "" && !strings.HasSuffix(c.ImportHost, "/v1") {
		c.ImportHost = strings.TrimSuffix(c.ImportHost, "/") + "/v1"
	}
	if c.EnrichHost != "" && !strings.HasSuffix(c.EnrichHost, "/v1") {
		c.EnrichHost = strings.TrimSuffix(c.EnrichHost, "/") + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.ImportHost == "" {
		return errors.New("remote config: ImportHost is required")
	}
	if c.ImportModel == "" {
		return errors.New("remote config: ImportModel is required")
	}
	if c.CallTimeout < 0 {
		return errors.New("remote config: CallTimeout cannot be negative")
	}
	return nil
}
