// HTTP handlers for session lifecycle: create, list, get, save, resume.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	domainsession "github.com/matiasleandrokruk/beacon/internal/domain/session"
)

type SessionHandler struct {
	service *domainsession.Service
}

func NewSessionHandler(service *domainsession.Service) *SessionHandler {
	return &SessionHandler{service: service}
}

type CreateSessionRequest struct {
	Title string `json:"title"`
}

// SessionResponse is the wire shape of a session. State is passed through as
// raw JSON so host-owned keys survive the round trip byte-for-byte.
type SessionResponse struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	State     json.RawMessage `json:"state"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func toSessionResponse(item *domainsession.Session) SessionResponse {
	return SessionResponse{
		ID:        item.ID,
		Title:     item.Title,
		State:     item.State,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

// CreateSession handles POST /api/v1/sessions.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, svcErr := h.service.Create(r.Context(), req.Title)
	if svcErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create session: %v", svcErr))
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(out))
}

// ListSessions handles GET /api/v1/sessions.
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	page := parsePaginationParams(r)

	items, svcErr := h.service.List(r.Context(), page.Limit, page.Offset)
	if svcErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list sessions: %v", svcErr))
		return
	}

	data := make([]SessionResponse, 0, len(items))
	for _, item := range items {
		data = append(data, toSessionResponse(item))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": data,
		"meta": Meta{Limit: page.Limit, Offset: page.Offset},
	})
}

// GetSession handles GET /api/v1/sessions/{id}.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	out, svcErr := h.service.Get(r.Context(), id)
	if errors.Is(svcErr, domainsession.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if svcErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get session: %v", svcErr))
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(out))
}

// SaveSession handles POST /api/v1/sessions/{id}/save.
// Persists the live MCP usage snapshot into the session state document.
func (h *SessionHandler) SaveSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	out, svcErr := h.service.SaveState(r.Context(), id)
	if errors.Is(svcErr, domainsession.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if svcErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save session: %v", svcErr))
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(out))
}

// ResumeSession handles POST /api/v1/sessions/{id}/resume.
// Merges the persisted MCP usage snapshot into the live tracker.
func (h *SessionHandler) ResumeSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	out, svcErr := h.service.Resume(r.Context(), id)
	if errors.Is(svcErr, domainsession.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if svcErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to resume session: %v", svcErr))
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(out))
}
