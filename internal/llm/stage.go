package llm

import "context"

type stageKey struct{}

// WithStage tags the context with the name of the pipeline stage issuing the
// call. Backends use it for log fields; FakeClient uses it to pick a canned
// response.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey{}, stage)
}

// StageFrom returns the stage name attached by WithStage, or "".
func StageFrom(ctx context.Context) string {
	s, _ := ctx.Value(stageKey{}).(string)
	return s
}
