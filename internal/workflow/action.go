package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Action is one unit of automation logic run when a workflow fires.
type Action interface {
	Name() string
	Title() string
	Group() string
	Run(ctx context.Context, data *DataLayer) error
}

// ActionConfig is the persisted configuration of one workflow action.
type ActionConfig struct {
	Name    string         `json:"name" validate:"required"`
	Options map[string]any `json:"options,omitempty"`
}

// ActionFactory builds a configured Action.
type ActionFactory func(cfg ActionConfig) (Action, error)

// ActionRegistry maps action names to factories.
type ActionRegistry struct {
	mu        sync.RWMutex
	factories map[string]ActionFactory
}

// NewActionRegistry returns an empty registry.
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{factories: make(map[string]ActionFactory)}
}

// Register adds or replaces the factory for name.
func (r *ActionRegistry) Register(name string, f ActionFactory) {
	r.mu.Lock()
	r.factories[name] = f
	r.mu.Unlock()
}

// Build creates the action described by cfg.
func (r *ActionRegistry) Build(cfg ActionConfig) (Action, error) {
	r.mu.RLock()
	f, ok := r.factories[cfg.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, cfg.Name)
	}
	return f(cfg)
}

// Names returns the registered action names, sorted.
func (r *ActionRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// optionString reads a string option, trimmed.
func optionString(opts map[string]any, key string) string {
	v, ok := opts[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// optionInt64 reads an integer option. Options decoded from JSON arrive as
// float64 or json.Number; options saved from a select box arrive as strings.
// Anything unparseable is 0.
func optionInt64(opts map[string]any, key string) int64 {
	switch v := opts[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n
	}
	return 0
}
