package openai

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/importit/remote"
)

// Enricher implements remote.Enricher using OpenAI-compatible chat APIs.
type Enricher struct {
	client      llms.Model
	callTimeout timeoutFunc
	logger      *slog.Logger
}

// enrichResult is an internal type used for JSON unmarshaling.
type enrichResult struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}

// newEnricher is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEnricher(config *remote.Config) (*Enricher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EnrichHost),
		openai.WithToken("none"),
		openai.WithModel(config.EnrichModel),
	)
	if err != nil {
		return nil, err
	}

	return &Enricher{
		client:      client,
		callTimeout: timeoutFromConfig(config),
		logger:      slog.Default().With("component", "openai-enricher"),
	}, nil
}

// NewEnricher creates a new enricher using the provided configuration.
//
// Returns remote.Enricher interface to enforce abstraction.
func NewEnricher(config *remote.Config) (remote.Enricher, error) {
	return newEnricher(config)
}

// EnrichChunk submits one chunk of produced identifiers and parses the
// structured result.
func (e *Enricher) EnrichChunk(ctx context.Context, req *remote.ChunkRequest) (*remote.ChunkResponse, error) {
	payload, err := json.Marshal(struct {
		IDs             []string `json:"identifiers"`
		ConcurrencyHint int      `json:"concurrency_hint,omitempty"`
		DelayHintMs     int64    `json:"delay_hint_ms,omitempty"`
	}{
		IDs:             req.IDs,
		ConcurrencyHint: req.ConcurrencyHint,
		DelayHintMs:     req.DelayHint.Milliseconds(),
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := e.callTimeout(ctx)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildEnrichSystemPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(string(payload))},
		},
	}

	var result enrichResult
	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			lastErr = ErrEmptyResponse
			continue
		}

		responseText := stripFences(response.Choices[0].Content)
		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing enrich response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse enrich response after retries", "err", lastErr)
		return nil, lastErr
	}

	return &remote.ChunkResponse{
		Processed: result.Processed,
		Errors:    result.Errors,
	}, nil
}
