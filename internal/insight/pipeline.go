package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"lynqinsights/internal/llm"
)

// Stage identifies the orchestrator's position in the four-step sequence.
type Stage string

const (
	StageValidating      Stage = "validating"
	StageAnalyzingTrends Stage = "analyzing_trends"
	StageRecommending    Stage = "recommending"
	StageSummarizing     Stage = "summarizing"
	StageDone            Stage = "done"

	// stageLegacy is the single-call legacy mode, outside the canonical sequence.
	stageLegacy Stage = "legacy"
)

// DefaultTimeout bounds a whole pipeline run, all stages included.
const DefaultTimeout = 2 * time.Minute

// runContext accumulates the outputs threaded between stages. It is local to
// one run; nothing survives across calls.
type runContext struct {
	ID              string
	Metrics         any
	Validation      StageOutput
	Trends          StageOutput
	Recommendations StageOutput
	Summary         StageOutput
}

// Pipeline sequences the four stage agents over a shared backend client.
// It is safe for concurrent use; overlapping Generate calls are rejected
// with a busy report rather than queued.
type Pipeline struct {
	client   llm.Client
	logger   log.Logger
	timeout  time.Duration
	inFlight atomic.Bool
}

type Option func(*Pipeline)

// WithTimeout overrides the whole-run timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger overrides the pipeline's logger.
func WithLogger(l log.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

func New(client llm.Client, opts ...Option) *Pipeline {
	p := &Pipeline{
		client:  client,
		logger:  log.DefaultLogger,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Generate runs the canonical four-stage pipeline over the metrics payload.
// It never returns an error: backend failures yield an error-shaped report,
// malformed stage output degrades the stage and the run keeps going, and a
// Summarizer output that fails validation is repaired by the fallback
// synthesizer.
func (p *Pipeline) Generate(ctx context.Context, metrics any) Report {
	if !p.inFlight.CompareAndSwap(false, true) {
		return busyReport()
	}
	defer p.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rc := &runContext{ID: uuid.NewString(), Metrics: coerceMetrics(metrics)}
	start := time.Now()

	steps := []struct {
		stage Stage
		agent Agent
		dst   *StageOutput
	}{
		{StageValidating, dataValidatorAgent, &rc.Validation},
		{StageAnalyzingTrends, trendAnalyzerAgent, &rc.Trends},
		{StageRecommending, recommendationAgent, &rc.Recommendations},
		{StageSummarizing, summaryAgent, &rc.Summary},
	}
	for _, step := range steps {
		out, err := p.invoke(ctx, step.stage, step.agent, rc)
		if err != nil {
			p.logger.Error().Str("run", rc.ID).Str("stage", string(step.stage)).Err(err).Msg("pipeline aborted")
			return fatalReport()
		}
		*step.dst = out
	}

	report, err := DecodeReport(rc.Summary)
	if err != nil {
		p.logger.Warn().Str("run", rc.ID).Err(err).Msg("summary failed validation, synthesizing fallback")
		report = SynthesizeFallback(rc.Summary, rc.Validation, rc.Trends, rc.Recommendations)
	}
	p.logger.Info().
		Str("run", rc.ID).
		Str("stage", string(StageDone)).
		Int("confidence", report.Confidence).
		Dur("elapsed", time.Since(start)).
		Msg("pipeline complete")
	return report
}

// GenerateLegacy runs the single-stage legacy pipeline: one agent call,
// leniently normalized with a default confidence of 70. Kept as a degraded
// mode for callers that have not migrated to the staged pipeline.
func (p *Pipeline) GenerateLegacy(ctx context.Context, metrics any) Report {
	if !p.inFlight.CompareAndSwap(false, true) {
		return busyReport()
	}
	defer p.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rc := &runContext{ID: uuid.NewString(), Metrics: coerceMetrics(metrics)}
	out, err := p.invoke(ctx, stageLegacy, legacyAgent, rc)
	if err != nil {
		p.logger.Error().Str("run", rc.ID).Err(err).Msg("legacy pipeline aborted")
		return fatalReport()
	}
	return NormalizeReport(out, LegacyDefaultConfidence)
}

// invoke runs one agent. A backend error is fatal to the run; syntactically
// invalid output is not, it just leaves the stage degraded.
func (p *Pipeline) invoke(ctx context.Context, stage Stage, ag Agent, rc *runContext) (StageOutput, error) {
	start := time.Now()
	ctx = llm.WithStage(ctx, string(stage))
	raw, err := p.client.GenerateJSON(ctx, ag.Instructions, ag.BuildInput(rc))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ag.Name, err)
	}
	out := ParseStageOutput(raw)
	if out.IsRaw() {
		p.logger.Warn().Str("run", rc.ID).Str("stage", string(stage)).Msg("stage degraded: unparsable output")
	}
	p.logger.Debug().
		Str("run", rc.ID).
		Str("stage", string(stage)).
		Dur("elapsed", time.Since(start)).
		Bool("degraded", out.IsRaw()).
		Msg("stage complete")
	return out, nil
}

// coerceMetrics accepts either a decoded record or a JSON string. Strings that
// parse as JSON are decoded so the stage inputs embed structure, not an
// escaped blob; anything else is passed through untouched.
func coerceMetrics(metrics any) any {
	s, ok := metrics.(string)
	if !ok {
		return metrics
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil || v == nil {
		return s
	}
	return v
}
