// Shared context helpers for API middleware and handlers.
package api

import (
	"context"

	"github.com/matiasleandrokruk/beacon/internal/api/ctxkeys"
)

// WithClientID adds client_id to the request context.
// Uses ctxkeys.ClientID — shared key used by middleware and handlers alike.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return ctxkeys.WithValue(ctx, ctxkeys.ClientID, clientID)
}

// GetClientID retrieves client_id from context.
func GetClientID(ctx context.Context) (string, error) {
	clientID, ok := ctx.Value(ctxkeys.ClientID).(string)
	if !ok || clientID == "" {
		return "", ErrMissingClientID
	}
	return clientID, nil
}
