package insight

// Direction classifies how a tracked metric is moving.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// Known reports whether d is one of the three accepted values. Anything else
// is dropped during normalization, never coerced.
func (d Direction) Known() bool {
	switch d {
	case DirectionUp, DirectionDown, DirectionStable:
		return true
	}
	return false
}

// Trend is one classified metric movement in the final report.
type Trend struct {
	Metric    string    `json:"metric" validate:"required"`
	Direction Direction `json:"direction" validate:"required,oneof=up down stable"`
	Analysis  string    `json:"analysis" validate:"required"`
}

// DataQuality flags whether the input metrics were usable.
type DataQuality struct {
	IsValid bool     `json:"isValid"`
	Issues  []string `json:"issues,omitempty"`
}

// Report is the fixed-shape result returned to callers. Every code path,
// including failures, resolves to a value satisfying these constraints.
type Report struct {
	DataQuality  DataQuality `json:"dataQuality"`
	Trends       []Trend     `json:"trends" validate:"max=3,dive"`
	Insights     []string    `json:"insights" validate:"min=1,max=4,dive,required"`
	CallToAction string      `json:"callToAction" validate:"required"`
	Confidence   int         `json:"confidence" validate:"min=0,max=100"`
}

// StageOutput is the parsed result of one agent invocation: either a JSON
// object, or {"raw": <text>} when the backend returned unparsable text.
type StageOutput map[string]any

// IsRaw reports whether the output is the unparsed-text escape hatch.
func (o StageOutput) IsRaw() bool {
	if len(o) != 1 {
		return false
	}
	_, ok := o[rawKey]
	return ok
}

const rawKey = "raw"
