// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tkasuk/nordwatt/internal/domain/window"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Classification exposes the current day's bucket sets and median.
	Classification(ctx context.Context) (day string, buckets map[string][]int, median float64)

	// Window exposes the current consecutive-cheapest window.
	Window(ctx context.Context) window.Result

	// InBucket answers the per-hour membership query.
	InBucket(ctx context.Context, bucket string, hour int) (bool, error)
}

// Server wires HTTP routes for the signal API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	signalsHandler *SignalsHandler
	windowHandler  *WindowHandler
	activeHandler  *ActiveHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		signalsHandler: NewSignalsHandler(deps),
		windowHandler:  NewWindowHandler(deps),
		activeHandler:  NewActiveHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(RequestIDMiddleware(s.statsHandler.HandleStats), "stats"))
	mux.HandleFunc("/signals", MetricsMiddleware(RequestIDMiddleware(s.signalsHandler.HandleGetSignals), "signals"))
	mux.HandleFunc("/window", MetricsMiddleware(RequestIDMiddleware(s.windowHandler.HandleGetWindow), "window"))
	mux.HandleFunc("/active/", MetricsMiddleware(RequestIDMiddleware(s.activeHandler.HandleGetActive), "active"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
