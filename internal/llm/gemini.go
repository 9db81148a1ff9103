package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"
	genai "google.golang.org/genai"

	"lynqinsights/internal/util/jsonutil"
)

const geminiMaxAttempts = 3

// GeminiClient is a thin wrapper around the official genai client that always
// requests application/json output.
type GeminiClient struct {
	cli     *genai.Client
	model   string
	limiter *rate.Limiter
	logger  log.Logger
}

// NewGeminiClient builds a client for the given model. rps <= 0 disables
// request pacing.
func NewGeminiClient(ctx context.Context, apiKey, model string, rps float64, burst int) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create gemini client: %w", err)
	}
	var limiter *rate.Limiter
	if rps > 0 {
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &GeminiClient{cli: cli, model: model, limiter: limiter, logger: log.DefaultLogger}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

// GenerateJSON sends the concatenated prompt/input and requests application/json.
// Transient failures are retried with exponential backoff.
func (g *GeminiClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, err := jsonutil.MarshalNoEscapeIndent(input, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("llm: encode input: %w", err)
	}
	full := prompt + "\n\n[INPUT JSON]\n" + string(in)
	stage := StageFrom(ctx)
	g.logger.Debug().Str("stage", stage).Int("bytes", len(full)).Msg("model request")

	var lastErr error
	for attempt := 0; attempt < geminiMaxAttempts; attempt++ {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		resp, err := g.cli.Models.GenerateContent(ctx, g.model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
			&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
		)
		switch {
		case err != nil:
			lastErr = err
		case len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0:
			lastErr = ErrEmptyResponse
		default:
			return json.RawMessage(resp.Candidates[0].Content.Parts[0].Text), nil
		}
		g.logger.Warn().Str("stage", stage).Int("attempt", attempt+1).Err(lastErr).Msg("model call failed")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(300*(1<<attempt)) * time.Millisecond):
		}
	}
	return nil, lastErr
}
