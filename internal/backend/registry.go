// Package backend holds the named engine loaders available to the process.
// Concrete loaders live in subpackages (openai, anthropic, llama).
package backend

import (
	"fmt"
	"sort"
	"sync"

	"nlpd/internal/engine"
)

// Info pairs a backend name with the capabilities it can load.
type Info struct {
	Name         string              `json:"name"`
	Capabilities []engine.Capability `json:"capabilities"`
}

// Registry holds registered loaders by name.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]engine.Loader
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]engine.Loader)}
}

// Register adds a loader under name, replacing any previous one.
func (r *Registry) Register(name string, l engine.Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[name] = l
}

// Get returns the loader registered under name.
func (r *Registry) Get(name string) (engine.Loader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loaders[name]
	if !ok {
		return nil, fmt.Errorf("backend %q is not registered", name)
	}
	return l, nil
}

// Check verifies that a spec names a registered backend able to serve its
// capability. Used to reject bad configuration at startup.
func (r *Registry) Check(spec engine.Spec) error {
	l, err := r.Get(spec.Backend)
	if err != nil {
		return fmt.Errorf("%s: %w", spec.Key(), err)
	}
	if !l.Supports(spec.Capability) {
		return fmt.Errorf("%s: %w", spec.Key(), &engine.UnsupportedCapabilityError{Backend: spec.Backend, Capability: spec.Capability})
	}
	return nil
}

// List returns every backend sorted by name for a stable API response.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]Info, 0, len(r.loaders))
	for name, l := range r.loaders {
		info := Info{Name: name}
		for _, c := range engine.Capabilities() {
			if l.Supports(c) {
				info.Capabilities = append(info.Capabilities, c)
			}
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
