package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages all available catalogs
type Registry struct {
	mu            sync.RWMutex
	catalogs      map[string]Catalog
	priorities    map[string]int
	enabledStatus map[string]bool
	configs       map[string]map[string]interface{}
}

// NewRegistry creates a new catalog registry
func NewRegistry() *Registry {
	return &Registry{
		catalogs:      make(map[string]Catalog),
		priorities:    make(map[string]int),
		enabledStatus: make(map[string]bool),
		configs:       make(map[string]map[string]interface{}),
	}
}

// Register adds a catalog to the registry
func (r *Registry) Register(name string, catalog Catalog, priority int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.catalogs[name]; exists {
		return fmt.Errorf("catalog %s already registered", name)
	}

	if err := ValidateCapabilities(catalog.Capabilities()); err != nil {
		return fmt.Errorf("invalid catalog capabilities for %s: %w", name, err)
	}

	r.catalogs[name] = catalog
	r.priorities[name] = priority
	r.enabledStatus[name] = false // Disabled by default

	return nil
}

// Get returns a catalog by name
func (r *Registry) Get(name string) (Catalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalog, exists := r.catalogs[name]
	return catalog, exists
}

// List returns all registered catalogs sorted by priority
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedLocked(func(string) bool { return true })
}

// Enabled returns the enabled catalogs sorted by priority
func (r *Registry) Enabled() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedLocked(func(name string) bool { return r.enabledStatus[name] })
}

func (r *Registry) sortedLocked(keep func(string) bool) []string {
	names := make([]string, 0, len(r.catalogs))
	for name := range r.catalogs {
		if keep(name) {
			names = append(names, name)
		}
	}

	sort.Slice(names, func(i, j int) bool {
		if r.priorities[names[i]] == r.priorities[names[j]] {
			return names[i] < names[j]
		}
		return r.priorities[names[i]] > r.priorities[names[j]]
	})

	return names
}

// Enable enables a catalog
func (r *Registry) Enable(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	catalog, exists := r.catalogs[name]
	if !exists {
		return fmt.Errorf("catalog %s not found", name)
	}

	if catalog.Capabilities().RequiresAuth {
		if config, hasConfig := r.configs[name]; !hasConfig || len(config) == 0 {
			return fmt.Errorf("catalog %s requires configuration", name)
		}
	}

	r.enabledStatus[name] = true
	return nil
}

// IsEnabled reports whether the named catalog is enabled
func (r *Registry) IsEnabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabledStatus[name]
}

// Configure sets configuration for a catalog
func (r *Registry) Configure(name string, config map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	catalog, exists := r.catalogs[name]
	if !exists {
		return fmt.Errorf("catalog %s not found", name)
	}

	if err := catalog.Configure(config); err != nil {
		return fmt.Errorf("failed to configure catalog %s: %w", name, err)
	}

	r.configs[name] = config

	return nil
}

// Default returns the enabled catalog with the highest priority
func (r *Registry) Default() (Catalog, bool) {
	enabled := r.Enabled()
	if len(enabled) == 0 {
		return nil, false
	}
	return r.Get(enabled[0])
}

// ForID returns the enabled catalog that issued the given external identifier
func (r *Registry) ForID(id string) (Catalog, bool) {
	for _, name := range r.Enabled() {
		catalog, ok := r.Get(name)
		if ok && catalog.OwnsID(id) {
			return catalog, true
		}
	}
	return nil, false
}
