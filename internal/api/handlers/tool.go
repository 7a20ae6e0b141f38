// HTTP handlers for tool execution and the invocation log.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	domainsession "github.com/matiasleandrokruk/beacon/internal/domain/session"
	domaintool "github.com/matiasleandrokruk/beacon/internal/domain/tool"
)

type ToolHandler struct {
	runner   *domaintool.Runner
	registry *domaintool.Registry
	log      *domaintool.InvocationLog
	sessions *domainsession.Service
}

func NewToolHandler(runner *domaintool.Runner, registry *domaintool.Registry, log *domaintool.InvocationLog, sessions *domainsession.Service) *ToolHandler {
	return &ToolHandler{runner: runner, registry: registry, log: log, sessions: sessions}
}

type ExecuteToolRequest struct {
	Name   string          `json:"name"`
	Params json.RawMessage `json:"params,omitempty"`
}

type ExecuteToolResponse struct {
	Result json.RawMessage `json:"result"`
}

// InvocationResponse is the wire shape of one recorded tool execution.
type InvocationResponse struct {
	ID         string          `json:"id"`
	SessionID  string          `json:"sessionId"`
	ToolName   string          `json:"toolName"`
	Params     json.RawMessage `json:"params"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      *string         `json:"error,omitempty"`
	DurationMs int64           `json:"durationMs"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ExecuteTool handles POST /api/v1/sessions/{id}/tools/execute.
// Runs the named tool in session scope; the session's MCP usage tracker is
// passed as the execution hook.
//
// Response codes:
//   - 200 OK: tool executed, result returned
//   - 400 Bad Request: invalid JSON or missing tool name
//   - 404 Not Found: session or tool does not exist
//   - 422 Unprocessable Entity: the tool itself failed
func (h *ToolHandler) ExecuteTool(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	if _, svcErr := h.sessions.Get(r.Context(), sessionID); svcErr != nil {
		if errors.Is(svcErr, domainsession.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load session: %v", svcErr))
		return
	}

	var req ExecuteToolRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Params) == 0 {
		req.Params = json.RawMessage(`{}`)
	}

	result, runErr := h.runner.Run(r.Context(), sessionID, req.Name, req.Params, h.sessions.Tracker(sessionID))
	if runErr != nil {
		if errors.Is(runErr, domaintool.ErrExecutorNotRegistered) {
			writeError(w, http.StatusNotFound, "tool not found")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("tool execution failed: %v", runErr))
		return
	}

	writeJSON(w, http.StatusOK, ExecuteToolResponse{Result: result})
}

// ListInvocations handles GET /api/v1/sessions/{id}/tools/invocations.
func (h *ToolHandler) ListInvocations(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	items, svcErr := h.log.ListBySession(r.Context(), sessionID)
	if svcErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list invocations: %v", svcErr))
		return
	}

	data := make([]InvocationResponse, 0, len(items))
	for _, item := range items {
		data = append(data, InvocationResponse{
			ID:         item.ID,
			SessionID:  item.SessionID,
			ToolName:   item.ToolName,
			Params:     item.Params,
			Result:     item.Result,
			Error:      item.Error,
			DurationMs: item.DurationMs,
			CreatedAt:  item.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

// ListTools handles GET /api/v1/tools.
// Returns the names of all registered tools (builtins plus proxied MCP tools).
func (h *ToolHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": h.registry.Names()})
}
