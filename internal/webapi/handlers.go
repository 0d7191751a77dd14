// Package webapi exposes the idea pipeline over HTTP.
package webapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ideamill/ideamill/internal/models"
)

// Version is set at build time or defaults to dev.
var Version = "0.1.0"

// Pipeline is the processing surface the API exposes.
type Pipeline interface {
	Process(ctx context.Context, input string) (*models.Outcome, error)
	History(ctx context.Context) ([]models.Run, error)
}

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	pipeline Pipeline
}

// NewHandlers creates a new Handlers backed by the given pipeline.
func NewHandlers(pipeline Pipeline) *Handlers {
	return &Handlers{pipeline: pipeline}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleProcess runs one topic through the full pipeline and returns the
// outcome. Pipeline failures surface as a generic 500; the details stay in
// the server log.
func (h *Handlers) HandleProcess(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		writeError(w, http.StatusBadRequest, "input is required")
		return
	}

	outcome, err := h.pipeline.Process(r.Context(), req.Input)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process input")
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// HandleHistory returns the most recent runs, newest first.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	runs, err := h.pipeline.History(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch history")
		return
	}
	if runs == nil {
		runs = []models.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, pipeline Pipeline) {
	h := NewHandlers(pipeline)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("POST /api/process", h.HandleProcess)
	mux.HandleFunc("GET /api/history", h.HandleHistory)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
