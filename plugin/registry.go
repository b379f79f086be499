package plugin

import (
	"fmt"
	"sync"
)

// Registry is a static, startup-populated table from plugin identifier to
// Plugin, the compile-time entry-point-registration table spec §4.1 and
// §9's "Runtime entry-point registry" redesign note both call for —
// plugins are added by a code change (a Register call), not discovered at
// runtime.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewRegistry returns an empty Registry ready for Register calls.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Register adds p under p.ID. It fails if p.ID is empty, a plugin is
// already registered under that ID, or p's callable doesn't match its Role.
func (r *Registry) Register(p Plugin) error {
	if p.ID == "" {
		return fmt.Errorf("plugin: cannot register with empty ID")
	}
	if err := p.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.plugins[p.ID]; exists {
		return fmt.Errorf("plugin: %q already registered", p.ID)
	}
	r.plugins[p.ID] = p
	return nil
}

// Resolve looks up a plugin by identifier, reporting ErrUnknownPlugin when
// it isn't registered.
func (r *Registry) Resolve(id string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[id]
	if !ok {
		return Plugin{}, fmt.Errorf("%w: %q", ErrUnknownPlugin, id)
	}
	return p, nil
}
