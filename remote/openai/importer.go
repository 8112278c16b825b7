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
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/importit/core"
	"github.com/poiesic/importit/remote"
)

// Importer implements remote.Importer using OpenAI-compatible chat APIs.
type Importer struct {
	client      llms.Model
	callTimeout timeoutFunc
	logger      *slog.Logger
}

// importResult is an internal type used for JSON unmarshaling.
// It matches the structure expected from the service.
type importResult struct {
	Processed    int      `json:"processed"`
	Succeeded    int      `json:"succeeded"`
	Partial      int      `json:"partial"`
	Errors       int      `json:"errors"`
	ProducedIDs  []string `json:"produced_ids"`
	ErrorDetails []struct {
		Title string `json:"title"`
		Error string `json:"error"`
	} `json:"error_details"`
	AncillaryContent string `json:"ancillary_content"`
}

// newImporter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newImporter(config *remote.Config) (*Importer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ImportHost),
		openai.WithToken("none"),
		openai.WithModel(config.ImportModel),
	)
	if err != nil {
		return nil, err
	}

	return &Importer{
		client:      client,
		callTimeout: timeoutFromConfig(config),
		logger:      slog.Default().With("component", "openai-importer"),
	}, nil
}

// NewImporter creates a new importer using the provided configuration.
//
// Returns remote.Importer interface to enforce abstraction.
func NewImporter(config *remote.Config) (remote.Importer, error) {
	return newImporter(config)
}

// ImportBatch submits one batch of records as a single JSON-mode chat
// completion and parses the structured result.
func (i *Importer) ImportBatch(ctx context.Context, req *remote.BatchRequest) (*remote.BatchResponse, error) {
	payload, err := json.Marshal(struct {
		Records []core.RawRecord     `json:"records"`
		Options remote.ImportOptions `json:"options"`
	}{Records: req.Records, Options: req.Options})
	if err != nil {
		return nil, err
	}

	ctx, cancel := i.callTimeout(ctx)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildImportSystemPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(string(payload))},
		},
	}

	// Re-ask up to 3 times in case of malformed JSON
	var result importResult
	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		response, err := i.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			i.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			lastErr = ErrEmptyResponse
			i.logger.Warn("no choices returned from model", "attempt", attempt+1)
			continue
		}

		responseText := stripFences(response.Choices[0].Content)
		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			i.logger.Warn("error parsing import response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		i.logger.Error("failed to parse import response after retries", "err", lastErr)
		return nil, lastErr
	}

	resp := &remote.BatchResponse{
		BatchProcessed:   result.Processed,
		Succeeded:        result.Succeeded,
		Partial:          result.Partial,
		Errors:           result.Errors,
		ProducedIDs:      result.ProducedIDs,
		AncillaryContent: result.AncillaryContent,
	}
	for _, detail := range result.ErrorDetails {
		resp.ErrorDetails = append(resp.ErrorDetails, core.ErrorDetail{
			Title: detail.Title,
			Error: detail.Error,
		})
	}
	return resp, nil
}
