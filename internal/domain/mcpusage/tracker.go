// Package mcpusage tracks whether a session has executed any MCP-provided
// tool. Task 2.1: the tracker feeds the upstream relay, which advertises the
// MCP capability flag to the API once any mcp__* tool has run.
package mcpusage

import (
	"encoding/json"
	"strings"
	"sync"
)

// ToolPrefix is the reserved namespace for tools proxied from MCP servers.
// mcpclient registers remote tools as mcp__<server>__<tool>.
const ToolPrefix = "mcp__"

// StateKey is the well-known key under which the tracker snapshot is merged
// into a session's state document (Task 2.4: save/resume).
const StateKey = "mcp_tool_usage"

// State is the serialized tracker snapshot stored in session state.
type State struct {
	Used bool `json:"used"`
}

// IsQualifyingTool reports whether name belongs to the MCP tool namespace.
// Any string is a valid input; the empty string is simply not qualifying.
func IsQualifyingTool(name string) bool {
	return strings.HasPrefix(name, ToolPrefix)
}

// Tracker holds the per-session MCP usage flag.
//
// The flag is monotonic: once set it stays set for the lifetime of the
// tracker, except via Reset. Each session owns its own Tracker; nothing in
// this package is process-global, so independent sessions never collide.
type Tracker struct {
	mu     sync.Mutex
	used   bool
	marker string
}

// NewTracker creates a Tracker with the given marker value. The marker is the
// configured capability flag string appended to outgoing header values once
// an MCP tool has been used; it is configuration, never computed here.
func NewTracker(marker string) *Tracker {
	return &Tracker{marker: marker}
}

// MarkUsed sets the flag. Idempotent: any number of calls leaves it set.
func (t *Tracker) MarkUsed() {
	t.mu.Lock()
	t.used = true
	t.mu.Unlock()
}

// Used returns the current flag value.
func (t *Tracker) Used() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.used
}

// MarkerValue returns the configured marker and true once the flag is set,
// and ("", false) before that.
func (t *Tracker) MarkerValue() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.used {
		return "", false
	}
	return t.marker, true
}

// AppendMarker returns values with the marker appended when the flag is set
// and the marker is not already present (exact match). When nothing needs to
// change the input slice is returned as-is; callers must not rely on getting
// a distinct slice back.
func (t *Tracker) AppendMarker(values []string) []string {
	marker, ok := t.MarkerValue()
	if !ok {
		return values
	}
	for _, v := range values {
		if v == marker {
			return values
		}
	}
	out := make([]string, 0, len(values)+1)
	out = append(out, values...)
	out = append(out, marker)
	return out
}

// OnToolExecuted is the tool-execution hook. Call it after every successful
// tool run — qualifying or not; the predicate filters.
func (t *Tracker) OnToolExecuted(toolName string) {
	if IsQualifyingTool(toolName) {
		t.MarkUsed()
	}
}

// Snapshot returns the current state for persistence.
func (t *Tracker) Snapshot() State {
	return State{Used: t.Used()}
}

// Restore merges a persisted snapshot into the tracker. This is an OR-merge,
// not an assignment: only Used=true has any effect, so restoring a "not used"
// snapshot never clears a flag already set in this process.
func (t *Tracker) Restore(state State) {
	if state.Used {
		t.MarkUsed()
	}
}

// Reset unconditionally clears the flag. Intended for test isolation and
// explicit session-boundary reinitialization only.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.used = false
	t.mu.Unlock()
}

// DecodeState parses a raw state sub-record. Malformed or missing input is
// coerced to the zero State rather than reported — restoration has no
// user-visible failure path.
func DecodeState(raw json.RawMessage) State {
	if len(raw) == 0 {
		return State{}
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return State{}
	}
	return s
}
