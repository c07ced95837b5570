package gfx

import (
	"fmt"
	"slices"
	"sort"
	"sync"
)

// BackendFactory creates a backend instance. It is called at most once per
// registration; the instance is reused by every device on that backend.
type BackendFactory func() Backend

// Well-known backend names, in default selection priority.
const (
	BackendWGPU   = "wgpu"
	BackendGL     = "gl"
	BackendSoftGL = "softgl"
)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]BackendFactory)
	instances  = make(map[string]Backend)
	// Hardware first, the software GL last.
	backendPriority = []string{BackendWGPU, BackendGL, BackendSoftGL}
)

// RegisterBackend registers a backend factory under name. Backend packages
// call it from init. Registering a name again replaces the previous factory.
func RegisterBackend(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
	delete(instances, name)
}

// UnregisterBackend removes a backend from the registry.
func UnregisterBackend(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
	delete(instances, name)
}

// IsBackendRegistered reports whether name is registered.
func IsBackendRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Backends returns the registered backend names in selection priority:
// well-known names first, then the rest sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return orderedNames()
}

func orderedNames() []string {
	names := make([]string, 0, len(factories))
	for _, name := range backendPriority {
		if _, ok := factories[name]; ok {
			names = append(names, name)
		}
	}
	var rest []string
	for name := range factories {
		if !slices.Contains(backendPriority, name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// LookupBackend returns the backend registered under name.
func LookupBackend(name string) (Backend, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	return lookupLocked(name)
}

func lookupLocked(name string) (Backend, error) {
	if b, ok := instances[name]; ok {
		return b, nil
	}
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	b := factory()
	if b == nil {
		return nil, fmt.Errorf("%w: %q factory returned nil", ErrBackendNotAvailable, name)
	}
	instances[name] = b
	return b, nil
}

// DefaultBackend returns the highest-priority registered backend.
func DefaultBackend() (Backend, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, name := range orderedNames() {
		if b, err := lookupLocked(name); err == nil {
			return b, nil
		}
	}
	return nil, ErrBackendNotAvailable
}
