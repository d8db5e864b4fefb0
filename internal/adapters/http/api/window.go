// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/tkasuk/nordwatt/internal/domain/window"
)

// WindowDependencies defines the interface for window reads.
type WindowDependencies interface {
	Window(ctx context.Context) window.Result
}

// WindowHandler handles consecutive-window requests.
type WindowHandler struct {
	deps WindowDependencies
}

// NewWindowHandler creates a new window handler.
func NewWindowHandler(deps WindowDependencies) *WindowHandler {
	return &WindowHandler{deps: deps}
}

// HandleGetWindow handles GET /window requests.
func (h *WindowHandler) HandleGetWindow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Window(r.Context()))
}
