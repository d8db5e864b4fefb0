// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// SignalsDependencies defines the interface for classification reads.
type SignalsDependencies interface {
	Classification(ctx context.Context) (day string, buckets map[string][]int, median float64)
}

// SignalsHandler handles classification requests.
type SignalsHandler struct {
	deps SignalsDependencies
}

// NewSignalsHandler creates a new signals handler.
func NewSignalsHandler(deps SignalsDependencies) *SignalsHandler {
	return &SignalsHandler{deps: deps}
}

// signalsResponse is the read shape for GET /signals.
type signalsResponse struct {
	Day     string           `json:"day"`
	Median  float64          `json:"median"`
	Buckets map[string][]int `json:"buckets"`
}

// HandleGetSignals handles GET /signals requests.
func (h *SignalsHandler) HandleGetSignals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	day, buckets, median := h.deps.Classification(r.Context())
	writeJSON(w, http.StatusOK, signalsResponse{
		Day:     day,
		Median:  median,
		Buckets: buckets,
	})
}
