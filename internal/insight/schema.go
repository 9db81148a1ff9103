package insight

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultConfidence is substituted when the generator omits confidence or
	// returns a non-numeric value.
	DefaultConfidence = 75
	// LegacyDefaultConfidence is the substitute used by the single-stage
	// legacy pipeline.
	LegacyDefaultConfidence = 70

	maxInsights = 4
	maxTrends   = 3

	placeholderInsight  = "Analysis completed. Review the detailed metrics for specific insights."
	defaultCallToAction = "Review the analysis and implement the recommended changes."
	syntheticIssue      = "validation reported problems without detail"
)

var validate = validator.New()

// ParseStageOutput turns raw generated text into a StageOutput. Markdown code
// fences are stripped before parsing; anything that still is not a JSON object
// is wrapped as {"raw": <text>} so downstream stages can keep going.
func ParseStageOutput(raw []byte) StageOutput {
	text := strings.TrimSpace(string(raw))
	cleaned := strings.TrimSpace(stripCodeFences(text))
	var out map[string]any
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil || out == nil {
		return StageOutput{rawKey: text}
	}
	return StageOutput(out)
}

func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	return strings.ReplaceAll(s, "```", "")
}

// NormalizeReport leniently coerces a stage output into a conforming Report:
// clamps confidence, truncates insights to 4 and trends to 3, drops trend
// entries that are incomplete or carry an unknown direction, and substitutes
// defaults for missing insights, call-to-action, and confidence. Running it on
// an already-conforming report changes nothing.
func NormalizeReport(out StageOutput, defaultConfidence int) Report {
	r := Report{
		DataQuality: DataQuality{IsValid: true},
		Trends:      []Trend{},
	}
	if dq, ok := out["dataQuality"].(map[string]any); ok {
		if b, ok := dq["isValid"].(bool); ok {
			r.DataQuality.IsValid = b
		}
		r.DataQuality.Issues = stringSlice(dq["issues"])
	}
	r.Trends = trendSlice(out["trends"], maxTrends)
	r.Insights = stringSlice(out["insights"])
	if len(r.Insights) > maxInsights {
		r.Insights = r.Insights[:maxInsights]
	}
	if len(r.Insights) == 0 {
		r.Insights = []string{placeholderInsight}
	}
	if s, ok := out["callToAction"].(string); ok && strings.TrimSpace(s) != "" {
		r.CallToAction = s
	} else {
		r.CallToAction = defaultCallToAction
	}
	r.Confidence = confidenceOrDefault(out["confidence"], defaultConfidence)
	if !r.DataQuality.IsValid && len(r.DataQuality.Issues) == 0 {
		r.DataQuality.Issues = []string{syntheticIssue}
	}
	return r
}

// DecodeReport strictly decodes a stage output into a Report and validates it.
// Unlike NormalizeReport it repairs nothing: any shape violation is an error,
// which is how the orchestrator decides between trusting the Summarizer and
// falling back.
func DecodeReport(out StageOutput) (Report, error) {
	b, err := json.Marshal(out)
	if err != nil {
		return Report{}, err
	}
	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		return Report{}, err
	}
	if r.Trends == nil {
		r.Trends = []Trend{}
	}
	if err := ValidateReport(r); err != nil {
		return Report{}, err
	}
	return r, nil
}

// ValidateReport checks the Report invariants: 1-4 insights, confidence in
// [0,100], at most 3 trends each with a known direction, non-empty
// call-to-action.
func ValidateReport(r Report) error {
	return validate.Struct(r)
}

// trendSlice extracts conforming trend entries from a decoded JSON value.
// Entries missing a field or carrying an off-enum direction are dropped.
func trendSlice(v any, limit int) []Trend {
	out := []Trend{}
	arr, ok := v.([]any)
	if !ok {
		return out
	}
	for _, e := range arr {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		t := Trend{
			Metric:    asString(m["metric"]),
			Direction: Direction(asString(m["direction"])),
			Analysis:  asString(m["analysis"]),
		}
		if t.Metric == "" || t.Analysis == "" || !t.Direction.Known() {
			continue
		}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}

func stringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func confidenceOrDefault(v any, def int) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	default:
		return def
	}
	c := int(math.Round(f))
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
