package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeFallback_DerivesInsightsFromRecommendations(t *testing.T) {
	recs := StageOutput{
		"recommendations": []any{
			map[string]any{"priority": "high", "action": "Add checkpoint quizzes", "expectedImpact": "Higher completion"},
			map[string]any{"priority": "low", "action": "Localize regional content", "expectedImpact": "Narrower spread"},
		},
	}
	trends := StageOutput{
		"trends": []any{
			map[string]any{"metric": "Engagement Rate", "direction": "up", "analysis": "above benchmark"},
		},
	}
	r := SynthesizeFallback(StageOutput{}, StageOutput{}, trends, recs)
	require.NoError(t, ValidateReport(r))
	assert.Equal(t, []string{"Add checkpoint quizzes", "Localize regional content"}, r.Insights)
	assert.Len(t, r.Trends, 1)
	assert.True(t, r.DataQuality.IsValid)
	assert.Equal(t, defaultCallToAction, r.CallToAction)
	assert.Equal(t, DefaultConfidence, r.Confidence)
}

func TestSynthesizeFallback_PrefersSummaryInsights(t *testing.T) {
	summary := StageOutput{
		"insights":     []any{"s1", "s2", "s3", "s4", "s5"},
		"callToAction": "Ship the fix",
		"confidence":   float64(61),
	}
	recs := StageOutput{
		"recommendations": []any{map[string]any{"action": "ignored"}},
	}
	r := SynthesizeFallback(summary, StageOutput{}, StageOutput{}, recs)
	require.NoError(t, ValidateReport(r))
	assert.Equal(t, []string{"s1", "s2", "s3", "s4"}, r.Insights)
	assert.Equal(t, "Ship the fix", r.CallToAction)
	assert.Equal(t, 61, r.Confidence)
}

func TestSynthesizeFallback_PlaceholderWhenNothingUsable(t *testing.T) {
	r := SynthesizeFallback(StageOutput{}, StageOutput{}, StageOutput{}, StageOutput{})
	require.NoError(t, ValidateReport(r))
	assert.Equal(t, []string{placeholderInsight}, r.Insights)
	assert.Empty(t, r.Trends)
}

func TestSynthesizeFallback_TrendsCappedAndFiltered(t *testing.T) {
	trends := StageOutput{
		"trends": []any{
			map[string]any{"metric": "A", "direction": "up", "analysis": "a"},
			map[string]any{"metric": "B", "direction": "sideways", "analysis": "b"},
			map[string]any{"metric": "C", "direction": "down"},
			map[string]any{"metric": "D", "direction": "stable", "analysis": "d"},
			map[string]any{"metric": "E", "direction": "up", "analysis": "e"},
			map[string]any{"metric": "F", "direction": "down", "analysis": "f"},
		},
	}
	r := SynthesizeFallback(StageOutput{}, StageOutput{}, trends, StageOutput{})
	require.Len(t, r.Trends, 3)
	assert.Equal(t, "A", r.Trends[0].Metric)
	assert.Equal(t, "D", r.Trends[1].Metric)
	assert.Equal(t, "E", r.Trends[2].Metric)
}

func TestSynthesizeFallback_CarriesValidatorVerdict(t *testing.T) {
	validation := StageOutput{
		"isValid": false,
		"issues":  []any{"strScore out of range"},
	}
	r := SynthesizeFallback(StageOutput{}, validation, StageOutput{}, StageOutput{})
	assert.False(t, r.DataQuality.IsValid)
	assert.Equal(t, []string{"strScore out of range"}, r.DataQuality.Issues)
}

func TestSynthesizeFallback_SyntheticIssueForBareInvalid(t *testing.T) {
	validation := StageOutput{"isValid": false, "issues": "not an array"}
	r := SynthesizeFallback(StageOutput{}, validation, StageOutput{}, StageOutput{})
	assert.False(t, r.DataQuality.IsValid)
	require.NotEmpty(t, r.DataQuality.Issues)
}

func TestSynthesizeFallback_DegradedRawStagesDoNotCrash(t *testing.T) {
	raw := StageOutput{rawKey: "the model rambled instead of emitting JSON"}
	r := SynthesizeFallback(raw, raw, raw, raw)
	require.NoError(t, ValidateReport(r))
	assert.Equal(t, []string{placeholderInsight}, r.Insights)
	assert.Equal(t, DefaultConfidence, r.Confidence)
}
