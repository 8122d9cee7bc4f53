// Package registry holds the loaded component definitions keyed by name.
//
// A registry is an explicit value handed to whatever renders; there is no
// package-level instance. Definitions are replaced wholesale, so a render
// that fetched a definition keeps a consistent snapshot while a reload
// swaps in a new one.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/conneroisu/partials/internal/types"
)

// ComponentRegistry manages all loaded component definitions
type ComponentRegistry struct {
	components map[string]*types.Definition
	mutex      sync.RWMutex
	watchers   []chan types.ComponentEvent
}

// NewComponentRegistry creates a new component registry
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		components: make(map[string]*types.Definition),
		watchers:   make([]chan types.ComponentEvent, 0),
	}
}

// Register adds a definition, replacing any existing one with the same name.
func (r *ComponentRegistry) Register(def *types.Definition) {
	if def == nil {
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := types.EventTypeAdded
	if _, exists := r.components[def.Name]; exists {
		eventType = types.EventTypeUpdated
	}

	r.components[def.Name] = def
	r.notify(eventType, def)
}

// Get retrieves a definition by name
func (r *ComponentRegistry) Get(name string) (*types.Definition, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	def, exists := r.components[name]
	return def, exists
}

// GetAll returns all registered definitions sorted by name
func (r *ComponentRegistry) GetAll() []*types.Definition {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*types.Definition, 0, len(r.components))
	for _, def := range r.components {
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Names returns the registered names in sorted order
func (r *ComponentRegistry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove removes a definition from the registry
func (r *ComponentRegistry) Remove(name string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	def, exists := r.components[name]
	if !exists {
		return
	}

	delete(r.components, name)
	r.notify(types.EventTypeRemoved, def)
}

// RemoveByPath removes every definition loaded from path and returns their
// names.
func (r *ComponentRegistry) RemoveByPath(path string) []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var removed []string
	for name, def := range r.components {
		if def.SourcePath == path {
			delete(r.components, name)
			removed = append(removed, name)
			r.notify(types.EventTypeRemoved, def)
		}
	}
	sort.Strings(removed)
	return removed
}

// Clear removes every definition, emitting a removal event for each.
func (r *ComponentRegistry) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for name, def := range r.components {
		delete(r.components, name)
		r.notify(types.EventTypeRemoved, def)
	}
}

// Watch returns a channel that receives component events
func (r *ComponentRegistry) Watch() <-chan types.ComponentEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan types.ComponentEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *ComponentRegistry) UnWatch(ch <-chan types.ComponentEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered definitions
func (r *ComponentRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.components)
}

// notify must be called with the write lock held.
func (r *ComponentRegistry) notify(eventType types.EventType, def *types.Definition) {
	event := types.ComponentEvent{
		Type:       eventType,
		Definition: def,
		Timestamp:  time.Now(),
	}

	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
