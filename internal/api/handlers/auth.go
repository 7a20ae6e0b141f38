// HTTP handler for token issuance (public endpoint — no AuthMiddleware).
// Translates HTTP requests into domain/auth.Service calls and maps domain
// errors to HTTP codes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	domainauth "github.com/matiasleandrokruk/beacon/internal/domain/auth"
)

// AuthHandler handles authentication HTTP requests.
type AuthHandler struct {
	authService domainauth.Service
}

// NewAuthHandler creates a new AuthHandler backed by the provided Service.
func NewAuthHandler(authService domainauth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// TokenRequest is the request body for POST /auth/token.
type TokenRequest struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

// TokenResponse is the response body returned after successful token issuance.
type TokenResponse struct {
	Token    string `json:"token"`
	ClientID string `json:"clientId"`
}

// IssueToken handles POST /auth/token.
// Verifies client credentials, returns JWT token.
//
// Response codes:
//   - 200 OK: token issued
//   - 400 Bad Request: invalid JSON or missing required fields
//   - 401 Unauthorized: invalid credentials (generic — doesn't reveal if name exists)
//   - 500 Internal Server Error: unexpected failure
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Secret == "" {
		writeError(w, http.StatusBadRequest, "name and secret are required")
		return
	}

	result, err := h.authService.IssueToken(r.Context(), req.Name, req.Secret)
	if err != nil {
		if errors.Is(err, domainauth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "token issuance failed")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		Token:    result.Token,
		ClientID: result.ClientID,
	})
}
