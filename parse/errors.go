package parse

import "errors"

var (
	// ErrTokenizerConsumed is returned when ForEach is called on a tokenizer
	// that has already produced its sequence.
	ErrTokenizerConsumed = errors.New("tokenizer already consumed")

	// ErrNoFiles is returned when a load is requested with no source files.
	ErrNoFiles = errors.New("no source files provided")
)
