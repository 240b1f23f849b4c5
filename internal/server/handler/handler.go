// Package handler exposes the analysis pipeline over HTTP.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dkovalets/wordfreq/internal/analyzer"
	"github.com/dkovalets/wordfreq/pkg/config"
	apperrors "github.com/dkovalets/wordfreq/pkg/errors"
	"github.com/dkovalets/wordfreq/pkg/logger"
)

// Handler serves the analyze endpoint.
type Handler struct {
	analyzer *analyzer.Analyzer
	limits   config.AnalyzeConfig
	logger   *slog.Logger
}

// New creates a Handler with the given defaults and limits.
func New(a *analyzer.Analyzer, limits config.AnalyzeConfig) *Handler {
	return &Handler{
		analyzer: a,
		limits:   limits,
		logger:   slog.Default().With("component", "analyze-handler"),
	}
}

// analyzeRequest is the wire form of an analysis request. Workers and TopK
// are pointers so an omitted field (use the default) is distinguishable from
// an explicit zero (rejected by the pipeline).
type analyzeRequest struct {
	Location string `json:"location"`
	Workers  *int   `json:"workers"`
	TopK     *int   `json:"top_k"`
}

// Analyze handles POST /api/v1/analyze.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Location == "" {
		h.writeError(w, http.StatusBadRequest, "location is required")
		return
	}

	run := analyzer.Request{
		Location: req.Location,
		Workers:  h.limits.DefaultWorkers,
		TopK:     h.limits.DefaultTopK,
	}
	if req.Workers != nil {
		run.Workers = *req.Workers
	}
	if req.TopK != nil {
		run.TopK = *req.TopK
	}
	if run.Workers > h.limits.MaxWorkers {
		h.writeError(w, http.StatusBadRequest, "workers exceeds the configured maximum")
		return
	}
	if run.TopK > h.limits.MaxTopK {
		h.writeError(w, http.StatusBadRequest, "top_k exceeds the configured maximum")
		return
	}

	report, err := h.analyzer.Analyze(ctx, run)
	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		log.Error("analysis failed",
			"location", run.Location,
			"error", err,
			"status_code", statusCode,
		)
		h.writeError(w, statusCode, err.Error())
		return
	}
	log.Info("analysis served",
		"location", report.Location,
		"total_tokens", report.TotalTokens,
		"workers", report.Workers,
	)
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
