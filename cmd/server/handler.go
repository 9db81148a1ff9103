package main

import (
	"encoding/json"
	"net/http"

	"github.com/phuslu/log"

	"lynqinsights/internal/insight"
)

// apiServer wires the insight pipeline to the HTTP surface.
type apiServer struct {
	pipe        *insight.Pipeline
	defaultMode string
	logger      log.Logger
}

func newAPIServer(pipe *insight.Pipeline, defaultMode string, logger log.Logger) *apiServer {
	if defaultMode == "" {
		defaultMode = "agents"
	}
	return &apiServer{pipe: pipe, defaultMode: defaultMode, logger: logger}
}

func buildMux(s *apiServer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/insights", s.handleInsights)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}

// withCORS permits all origins for POST/OPTIONS and answers preflights with an
// empty 200, matching the contract the dashboard expects.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type insightsRequest struct {
	MetricsData json.RawMessage `json:"metricsData"`
	Mode        string          `json:"mode"`
}

func (s *apiServer) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	if s.pipe == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":    "generation backend not configured",
			"fallback": configErrorReport(),
		})
		return
	}

	var req insightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return
	}
	var metrics any
	if len(req.MetricsData) > 0 {
		if err := json.Unmarshal(req.MetricsData, &metrics); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
			return
		}
	}
	if metrics == nil || metrics == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "metricsData is required"})
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = s.defaultMode
	}
	var report insight.Report
	if mode == "simple" {
		report = s.pipe.GenerateLegacy(r.Context(), metrics)
	} else {
		report = s.pipe.Generate(r.Context(), metrics)
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *apiServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func configErrorReport() insight.Report {
	return insight.NewErrorReport(
		"API configuration error",
		[]string{"Unable to generate insights: the generation backend API key is not configured."},
		"Contact an administrator to configure the API key.",
	)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
