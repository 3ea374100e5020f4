package engine

import (
	"fmt"
	"sort"
	"sync"

	"survkit/internal/config"
	"survkit/internal/logging"
)

// Registry holds engine descriptors by ID.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Descriptor
}

// NewRegistry creates a registry holding descs. Later duplicates win.
func NewRegistry(descs ...Descriptor) *Registry {
	r := &Registry{engines: make(map[string]Descriptor, len(descs))}
	for _, d := range descs {
		r.engines[d.ID] = d.clone()
	}
	return r
}

// Default returns a registry preloaded with Builtins.
func Default() *Registry {
	return NewRegistry(Builtins()...)
}

// Register adds d, failing if an engine with the same ID exists.
func (r *Registry) Register(d Descriptor) error {
	if d.ID == "" {
		return fmt.Errorf("engine descriptor has empty id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.engines[d.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, d.ID)
	}
	r.engines[d.ID] = d.clone()
	return nil
}

// Put adds or replaces d.
func (r *Registry) Put(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[d.ID] = d.clone()
}

// Get returns the descriptor for id.
func (r *Registry) Get(id string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.engines[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownEngine, id)
	}
	return d.clone(), nil
}

// List returns all descriptors sorted by ID.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.engines))
	for _, d := range r.engines {
		out = append(out, d.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ApplyConfig merges config engine entries into the registry. An entry whose
// ID is already registered overrides only the fields it sets; params are
// merged key by key. Unknown IDs are added as new engines.
func (r *Registry) ApplyConfig(entries []config.EngineConfig) error {
	for _, ec := range entries {
		d, err := FromConfig(ec)
		if err != nil {
			return err
		}

		existing, err := r.Get(ec.ID)
		if err != nil {
			logging.Engine("registered engine %s (%s) from config", d.ID, d.Package)
			r.Put(d)
			continue
		}

		logging.Get(logging.CategoryConfig).Debugw("overriding engine from config", "engine", ec.ID)
		if ec.Package != "" {
			existing.Package = ec.Package
		}
		if ec.Strata != "" {
			if d.Strata != existing.Strata {
				logging.EngineWarn("engine %s strata policy overridden: %s -> %s", ec.ID, existing.Strata, d.Strata)
			}
			existing.Strata = d.Strata
		}
		if len(ec.Predicts) > 0 {
			existing.Predicts = d.Predicts
		}
		if ec.PathParam != "" {
			existing.PathParam = ec.PathParam
		}
		if len(ec.Params) > 0 && existing.ParamMap == nil {
			existing.ParamMap = make(map[string]string, len(ec.Params))
		}
		for k, v := range ec.Params {
			existing.ParamMap[k] = v
		}
		r.Put(existing)
	}
	return nil
}
