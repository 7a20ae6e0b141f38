// Handler helper functions and context management.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/matiasleandrokruk/beacon/internal/api/ctxkeys"
)

// paginationParams holds parsed limit and offset values.
type paginationParams struct {
	Limit  int64
	Offset int64
}

const (
	defaultPaginationLimit = 25
	maxPaginationLimit     = 100
)

// Meta carries pagination info in list responses.
type Meta struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

// getClientID retrieves client_id from context.
// Uses ctxkeys.ClientID — same type+value as AuthMiddleware injection.
func getClientID(ctx context.Context) (string, error) {
	clientID, ok := ctx.Value(ctxkeys.ClientID).(string)
	if !ok || clientID == "" {
		return "", fmt.Errorf("client_id not found in context")
	}
	return clientID, nil
}

// parsePaginationParams extracts and validates limit/offset from URL query params.
func parsePaginationParams(r *http.Request) paginationParams {
	limit := int64(defaultPaginationLimit)
	offset := int64(0)

	if lim, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil && lim > 0 {
		if lim > maxPaginationLimit {
			lim = maxPaginationLimit
		}
		limit = lim
	}

	if off, err := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 64); err == nil && off >= 0 {
		offset = off
	}

	return paginationParams{Limit: limit, Offset: offset}
}

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		http.Error(w, `{"error":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}
