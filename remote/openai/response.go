package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/poiesic/importit/remote"
)

// maxParseAttempts bounds re-asks when the model returns malformed JSON.
const maxParseAttempts = 3

// ErrEmptyResponse is returned when the model produces no choices.
var ErrEmptyResponse = errors.New("empty response from model")

// stripFences removes markdown code fences some models wrap around JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// timeoutFunc derives a per-call context, mirroring context.WithTimeout.
type timeoutFunc func(ctx context.Context) (context.Context, context.CancelFunc)

// timeoutFromConfig builds the per-call deadline wrapper. A zero
// CallTimeout keeps the reference behavior: no deadline at all.
func timeoutFromConfig(config *remote.Config) timeoutFunc {
	timeout := config.CallTimeout
	if timeout <= 0 {
		return func(ctx context.Context) (context.Context, context.CancelFunc) {
			return ctx, func() {}
		}
	}
	return func(ctx context.Context) (context.Context, context.CancelFunc) {
		return context.WithTimeout(ctx, timeout)
	}
}
