// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/tkasuk/nordwatt/internal/app"
)

// ActiveDependencies defines the interface for bucket membership queries.
type ActiveDependencies interface {
	InBucket(ctx context.Context, bucket string, hour int) (bool, error)
}

// ActiveHandler handles per-hour bucket membership requests.
type ActiveHandler struct {
	deps ActiveDependencies
}

// NewActiveHandler creates a new active handler.
func NewActiveHandler(deps ActiveDependencies) *ActiveHandler {
	return &ActiveHandler{deps: deps}
}

// activeResponse is the read shape for GET /active/{bucket}.
type activeResponse struct {
	Bucket string `json:"bucket"`
	Hour   int    `json:"hour"`
	Active bool   `json:"active"`
}

// HandleGetActive handles GET /active/{bucket}?hour=N requests.
func (h *ActiveHandler) HandleGetActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /active/
	bucket := strings.TrimPrefix(r.URL.Path, "/active/")
	if bucket == "" || strings.Contains(bucket, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	hour, err := strconv.Atoi(r.URL.Query().Get("hour"))
	if err != nil || hour < 0 || hour > 23 {
		writeError(w, http.StatusBadRequest, "bad_hour", ErrBadRequest)
		return
	}

	active, err := h.deps.InBucket(r.Context(), bucket, hour)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUnknownBucket):
			writeError(w, http.StatusNotFound, "unknown_bucket", err)
		case errors.Is(err, app.ErrBucketDisabled):
			writeError(w, http.StatusNotFound, "bucket_disabled", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, activeResponse{Bucket: bucket, Hour: hour, Active: active})
}
