package tool

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

var (
	ErrExecutorAlreadyRegistered = errors.New("tool executor already registered")
	ErrExecutorNotRegistered     = errors.New("tool executor not registered")
)

// Registry maps tool names to executors.
//
// Built-ins register at startup; MCP servers register their discovered tools
// (as mcp__<server>__<tool>) after connecting, which can race with request
// handling — hence the RWMutex.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]Executor
}

func NewRegistry() *Registry {
	return &Registry{executors: make(map[string]Executor)}
}

func (r *Registry) Register(name string, executor Executor) error {
	name = strings.TrimSpace(name)
	if name == "" || executor == nil {
		return ErrExecutorNotRegistered
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.executors[name]; exists {
		return ErrExecutorAlreadyRegistered
	}
	r.executors[name] = executor
	return nil
}

func (r *Registry) Get(name string) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	executor, ok := r.executors[name]
	if !ok {
		return nil, ErrExecutorNotRegistered
	}
	return executor, nil
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
