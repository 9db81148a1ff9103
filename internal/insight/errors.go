package insight

// NewErrorReport builds an error-shaped report: invalid data quality carrying
// the issue, zero confidence, no trends. Failure paths resolve to these values
// instead of surfacing errors, so the rendering layer needs no separate
// error-display path.
func NewErrorReport(issue string, insights []string, callToAction string) Report {
	if issue == "" {
		issue = "unknown error"
	}
	if len(insights) == 0 {
		insights = []string{"Unable to generate insights at this time. Please try again."}
	}
	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	if callToAction == "" {
		callToAction = "Retry the analysis or contact support if the issue persists."
	}
	return Report{
		DataQuality:  DataQuality{IsValid: false, Issues: []string{issue}},
		Trends:       []Trend{},
		Insights:     insights,
		CallToAction: callToAction,
		Confidence:   0,
	}
}

func fatalReport() Report {
	return NewErrorReport(
		"agent execution failed",
		[]string{"Unable to generate insights at this time. Please try again."},
		"Retry the analysis or contact support if the issue persists.",
	)
}

func busyReport() Report {
	return NewErrorReport(
		"analysis already in progress",
		[]string{"A previous analysis for this session is still running."},
		"Wait for the current analysis to finish, then retry.",
	)
}
