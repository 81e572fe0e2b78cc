package http

import (
	"net/http"

	"github.com/MKhiriev/go-note-keeper/internal/utils"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Health handles GET /health. Unauthenticated liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, healthResponse{Status: "ok", Version: h.version}, http.StatusOK)
}
