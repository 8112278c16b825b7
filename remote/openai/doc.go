// Package openai implements the remote service interfaces against
// OpenAI-compatible document APIs (Ollama, LocalAI, vLLM, OpenAI).
//
// Each batch import is a single chat completion in JSON mode: the batch
// records and processing options are embedded in the prompt and the
// model returns a structured result that is parsed into a
// remote.BatchResponse. Malformed JSON responses are re-asked a bounded
// number of times before the call is reported as failed.
package openai
