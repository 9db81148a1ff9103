package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/phuslu/log"

	"lynqinsights/internal/insight"
	"lynqinsights/internal/util/jsonutil"
)

// Client sends metrics to a remote insight service and normalizes every
// outcome into a well-formed report. It never retries on its own; a retry is
// a fresh caller-initiated run.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  log.Logger
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithLogger overrides the client's logger.
func WithLogger(l log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 2 * time.Minute},
		logger:  log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate posts the metrics payload to the remote pipeline and returns its
// report. All failure modes resolve to an error-shaped report, never an error.
func (c *Client) Generate(ctx context.Context, metrics any) insight.Report {
	payload, err := jsonutil.CoerceString(metrics)
	if err != nil {
		return insight.NewErrorReport(
			"invalid metrics payload: "+err.Error(),
			[]string{"The metrics payload could not be serialized for analysis."},
			"Check the metrics data and retry the analysis.",
		)
	}
	body, err := json.Marshal(map[string]string{"metricsData": payload})
	if err != nil {
		return connectionFailureReport(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/insights", bytes.NewReader(body))
	if err != nil {
		return connectionFailureReport(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("insight request failed")
		return connectionFailureReport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return connectionFailureReport(err)
	}
	if resp.StatusCode == http.StatusOK {
		return decodeSuccess(data)
	}
	return decodeFailure(resp.StatusCode, data)
}

// decodeSuccess trusts that the remote side validated the report, but still
// refuses to hand a non-object body to the caller.
func decodeSuccess(data []byte) insight.Report {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return malformedResponseReport()
	}
	var r insight.Report
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return malformedResponseReport()
	}
	if r.Trends == nil {
		r.Trends = []insight.Trend{}
	}
	return r
}

// decodeFailure prefers a fallback report embedded in the error body over a
// locally synthesized one.
func decodeFailure(status int, data []byte) insight.Report {
	var errBody struct {
		Error    string          `json:"error"`
		Fallback *insight.Report `json:"fallback"`
	}
	if err := json.Unmarshal(data, &errBody); err == nil && errBody.Fallback != nil {
		fb := *errBody.Fallback
		if fb.Trends == nil {
			fb.Trends = []insight.Trend{}
		}
		return fb
	}
	msg := fmt.Sprintf("insight service unavailable (status %d)", status)
	if errBody.Error != "" {
		msg += ": " + errBody.Error
	}
	return insight.NewErrorReport(
		msg,
		[]string{"The insight service reported an error.", "Please try again in a moment."},
		"Retry the analysis or contact support if the issue persists.",
	)
}

func connectionFailureReport(err error) insight.Report {
	return insight.NewErrorReport(
		"connection to the insight service failed: "+err.Error(),
		[]string{
			"Unable to reach the insight service.",
			"Check your network connection and try again.",
		},
		"Check the connection and retry the analysis.",
	)
}

func malformedResponseReport() insight.Report {
	return insight.NewErrorReport(
		"malformed response from the insight service",
		[]string{"The insight service returned an unreadable response."},
		"Retry the analysis or contact support if the issue persists.",
	)
}
