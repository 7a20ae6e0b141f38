package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrBuiltinExecutionFailed = errors.New("builtin tool execution failed")

const (
	BuiltinEcho        = "echo"
	BuiltinCurrentTime = "current_time"
)

// RegisterBuiltins registers the built-in executors. Built-in names carry no
// mcp__ prefix, so they never trip the MCP usage tracker.
func RegisterBuiltins(r *Registry) error {
	builtins := map[string]Executor{
		BuiltinEcho:        EchoExecutor{},
		BuiltinCurrentTime: CurrentTimeExecutor{},
	}
	for name, executor := range builtins {
		if err := r.Register(name, executor); err != nil {
			return fmt.Errorf("register builtin %q: %w", name, err)
		}
	}
	return nil
}

// EchoExecutor returns its message parameter unchanged. Used for wiring
// checks and tests.
type EchoExecutor struct{}

type echoParams struct {
	Message string `json:"message"`
}

func (EchoExecutor) Execute(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
	var in echoParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &in); err != nil {
			return nil, fmt.Errorf("%w: invalid params", ErrBuiltinExecutionFailed)
		}
	}

	out, _ := json.Marshal(map[string]any{"message": in.Message})
	return out, nil
}

// CurrentTimeExecutor returns the current UTC time in RFC3339.
type CurrentTimeExecutor struct{}

func (CurrentTimeExecutor) Execute(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	out, _ := json.Marshal(map[string]any{
		"now": time.Now().UTC().Format(time.RFC3339),
	})
	return out, nil
}
