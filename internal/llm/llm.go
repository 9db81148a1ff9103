package llm

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrMissingAPIKey = errors.New("llm: missing API key")
	ErrEmptyResponse = errors.New("llm: empty response from model")
)

// Client is the minimal surface the pipeline needs from a text-generation
// backend: a single prompt-plus-input call expected to yield JSON text.
type Client interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	Close() error
}
