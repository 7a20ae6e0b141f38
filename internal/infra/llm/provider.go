// Package llm defines the upstream model provider abstraction.
// Adapters implement Provider so the application is never coupled to a
// specific vendor API.
package llm

import "context"

// Provider is the model-agnostic interface for upstream LLM operations.
type Provider interface {
	// ChatCompletion performs a non-streaming chat completion.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// ModelInfo returns static metadata about the provider/model.
	ModelInfo() ModelMeta

	// HealthCheck returns nil if the provider is reachable and operational.
	HealthCheck(ctx context.Context) error
}

// BetaSource contributes session-dependent beta header values to an outgoing
// request. The MCP usage tracker implements it: once an MCP tool has run in
// the session, it appends the capability flag (exactly once).
type BetaSource interface {
	AppendMarker(values []string) []string
}
