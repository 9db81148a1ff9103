package insight

import "strings"

// SynthesizeFallback reconstructs a best-effort valid Report when the
// Summarizer's output fails validation. It never fails: every field has a
// derivation chain ending in a fixed default, so degraded quality shows up as
// lower confidence and populated issues, never as a missing field.
func SynthesizeFallback(summary, validation, trends, recommendations StageOutput) Report {
	r := Report{
		DataQuality: DataQuality{IsValid: true},
		Trends:      []Trend{},
	}

	// Insights: the Summarizer's list wins when it supplied one at all;
	// otherwise derive from the Recommender's actions.
	if arr, ok := summary["insights"].([]any); ok {
		for _, e := range arr {
			if s, sok := e.(string); sok {
				r.Insights = append(r.Insights, s)
			}
			if len(r.Insights) == maxInsights {
				break
			}
		}
	} else if arr, ok := recommendations["recommendations"].([]any); ok {
		for _, e := range arr {
			m, mok := e.(map[string]any)
			if !mok {
				continue
			}
			if action := asString(m["action"]); action != "" {
				r.Insights = append(r.Insights, action)
			}
			if len(r.Insights) == maxInsights {
				break
			}
		}
	}
	if len(r.Insights) == 0 {
		r.Insights = []string{placeholderInsight}
	}

	r.Trends = trendSlice(trends["trends"], maxTrends)

	if b, ok := validation["isValid"].(bool); ok {
		r.DataQuality.IsValid = b
	}
	r.DataQuality.Issues = stringSlice(validation["issues"])
	if !r.DataQuality.IsValid && len(r.DataQuality.Issues) == 0 {
		r.DataQuality.Issues = []string{syntheticIssue}
	}

	if s, ok := summary["callToAction"].(string); ok && strings.TrimSpace(s) != "" {
		r.CallToAction = s
	} else {
		r.CallToAction = defaultCallToAction
	}
	r.Confidence = confidenceOrDefault(summary["confidence"], DefaultConfidence)
	return r
}
