// HTTP handler relaying chat requests upstream.
// The session's MCP usage tracker rides along as the beta header source, so
// the capability flag is injected the moment the session qualifies.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	domainsession "github.com/matiasleandrokruk/beacon/internal/domain/session"
	"github.com/matiasleandrokruk/beacon/internal/infra/llm"
)

type ChatHandler struct {
	provider llm.Provider
	sessions *domainsession.Service
}

func NewChatHandler(provider llm.Provider, sessions *domainsession.Service) *ChatHandler {
	return &ChatHandler{provider: provider, sessions: sessions}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string        `json:"model,omitempty"`
	System      string        `json:"system,omitempty"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"maxTokens,omitempty"`
}

type ChatResponse struct {
	Content    string `json:"content"`
	StopReason string `json:"stopReason"`
	Tokens     int    `json:"tokens"`
}

// Chat handles POST /api/v1/sessions/{id}/chat.
//
// Response codes:
//   - 200 OK: completion returned
//   - 400 Bad Request: invalid JSON or empty messages
//   - 404 Not Found: session does not exist
//   - 502 Bad Gateway: upstream call failed
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	if _, svcErr := h.sessions.Get(r.Context(), sessionID); svcErr != nil {
		if errors.Is(svcErr, domainsession.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	var req ChatRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages is required")
		return
	}

	messages := make([]llm.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	out, chatErr := h.provider.ChatCompletion(r.Context(), llm.ChatRequest{
		Model:       req.Model,
		System:      req.System,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Betas:       h.sessions.Tracker(sessionID),
	})
	if chatErr != nil {
		writeError(w, http.StatusBadGateway, "upstream chat completion failed")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Content:    out.Content,
		StopReason: out.StopReason,
		Tokens:     out.Tokens,
	})
}
