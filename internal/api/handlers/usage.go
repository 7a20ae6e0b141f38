// HTTP handler exposing the session's MCP usage flag.
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	domainsession "github.com/matiasleandrokruk/beacon/internal/domain/session"
)

type UsageHandler struct {
	sessions *domainsession.Service
}

func NewUsageHandler(sessions *domainsession.Service) *UsageHandler {
	return &UsageHandler{sessions: sessions}
}

// UsageResponse reports whether an MCP tool has run in the session and the
// beta marker that would be injected. Marker is null while the flag is unset.
type UsageResponse struct {
	Used   bool    `json:"used"`
	Marker *string `json:"marker"`
}

// GetUsage handles GET /api/v1/sessions/{id}/usage.
func (h *UsageHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	if _, svcErr := h.sessions.Get(r.Context(), sessionID); svcErr != nil {
		if errors.Is(svcErr, domainsession.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	tracker := h.sessions.Tracker(sessionID)
	resp := UsageResponse{Used: tracker.Used()}
	if marker, ok := tracker.MarkerValue(); ok {
		resp.Marker = &marker
	}

	writeJSON(w, http.StatusOK, resp)
}
