package tool

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matiasleandrokruk/beacon/internal/infra/eventbus"
)

// UsageHook receives a notification after every successful tool execution.
// The session's MCP usage tracker implements it; the hook itself decides
// whether the tool name qualifies.
type UsageHook interface {
	OnToolExecuted(toolName string)
}

// Runner executes tools in session scope: resolve, execute, record, notify.
type Runner struct {
	registry *Registry
	log      *InvocationLog
	bus      eventbus.EventBus
}

func NewRunner(registry *Registry, log *InvocationLog, bus eventbus.EventBus) *Runner {
	return &Runner{registry: registry, log: log, bus: bus}
}

// Run executes the named tool and records the invocation. The hook fires
// only when execution succeeded; the tool.executed event is published either
// way so listeners see failed runs too.
func (r *Runner) Run(ctx context.Context, sessionID, toolName string, params json.RawMessage, hook UsageHook) (json.RawMessage, error) {
	executor, err := r.registry.Get(toolName)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result, execErr := executor.Execute(ctx, params)
	durationMs := time.Since(started).Milliseconds()

	inv := &Invocation{
		SessionID:  sessionID,
		ToolName:   toolName,
		Params:     params,
		Result:     result,
		DurationMs: durationMs,
	}
	if execErr != nil {
		msg := execErr.Error()
		inv.Error = &msg
	}
	if recordErr := r.log.Record(ctx, inv); recordErr != nil {
		return nil, recordErr
	}

	if execErr == nil && hook != nil {
		hook.OnToolExecuted(toolName)
	}

	r.bus.Publish(eventbus.TopicToolExecuted, eventbus.ToolExecuted{
		SessionID: sessionID,
		ToolName:  toolName,
		Succeeded: execErr == nil,
	})

	if execErr != nil {
		return nil, execErr
	}
	return result, nil
}
