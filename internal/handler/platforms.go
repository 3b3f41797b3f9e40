package handler

import (
	"net/http"

	"github.com/replytomic/replytomic/internal/platform"
)

// PlatformsHandler serves the platform rule catalog so clients do not
// hardcode limits and tone lists.
//
// Route:
//   - GET /api/platforms (public)
type PlatformsHandler struct{}

// NewPlatformsHandler creates a new PlatformsHandler.
func NewPlatformsHandler() *PlatformsHandler {
	return &PlatformsHandler{}
}

// RegisterRoutes registers the catalog route on the provided mux.
func (h *PlatformsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/platforms", h.List)
}

// List handles GET /api/platforms.
func (h *PlatformsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"platforms": platform.All(),
		"tones":     platform.ToneOptions,
	})
}
