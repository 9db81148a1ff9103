package llm

import (
	"context"
	"encoding/json"
)

// FakeClient returns deterministic JSON per stage for offline runs and tests.
// Responses and Errs override the canned payloads for individual stages.
type FakeClient struct {
	Responses map[string]json.RawMessage
	Errs      map[string]error
}

func NewFakeClient() *FakeClient {
	return &FakeClient{}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	stage := StageFrom(ctx)
	if err, ok := f.Errs[stage]; ok {
		return nil, err
	}
	if raw, ok := f.Responses[stage]; ok {
		return raw, nil
	}
	return cannedResponse(stage), nil
}

func cannedResponse(stage string) json.RawMessage {
	switch stage {
	case "validating":
		return json.RawMessage(`{
			"isValid": true,
			"issues": [],
			"summary": "All required fields are present and within expected ranges."
		}`)
	case "analyzing_trends":
		return json.RawMessage(`{
			"trends": [
				{"metric": "Engagement Rate", "direction": "up", "analysis": "Engagement sits above the 70% benchmark."},
				{"metric": "Completion Rate", "direction": "stable", "analysis": "Completion holds near the 80% excellence threshold."}
			],
			"overallHealth": "good"
		}`)
	case "recommending":
		return json.RawMessage(`{
			"recommendations": [
				{"priority": "high", "action": "Add a mid-module checkpoint quiz to sustain engagement.", "expectedImpact": "Higher completion in the final module sections."},
				{"priority": "medium", "action": "Localize content for the lowest-performing region.", "expectedImpact": "Narrowed regional score spread."}
			]
		}`)
	default:
		// summarizing, legacy single-stage, and anything unnamed all get a
		// complete well-formed report.
		return json.RawMessage(`{
			"dataQuality": {"isValid": true},
			"trends": [
				{"metric": "Engagement Rate", "direction": "up", "analysis": "Engagement sits above the 70% benchmark."}
			],
			"insights": [
				"Engagement is trending up while completion holds steady.",
				"Objective scores outpace subjective ratings, suggesting assessment alignment is sound."
			],
			"callToAction": "Roll out the checkpoint quiz to the lowest-completion cohort first.",
			"confidence": 82
		}`)
	}
}
