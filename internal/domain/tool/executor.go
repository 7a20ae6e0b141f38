package tool

import (
	"context"
	"encoding/json"
)

// Executor defines the runtime contract for executable tools.
// Built-in tools and MCP-proxied tools both implement it.
type Executor interface {
	Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error)
}
