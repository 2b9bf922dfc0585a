package registry

import "sync"

// The process-wide default registry. Application code should accept a
// *Registry explicitly where feasible; the ambient default exists for
// top-level wiring.
var (
	defaultMu  sync.RWMutex
	defaultReg = New()
)

// Default returns the process-wide default registry.
func Default() *Registry {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultReg
}

// SetDefault replaces the process-wide default registry. A nil registry is
// ignored.
func SetDefault(r *Registry) {
	if r == nil {
		return
	}
	defaultMu.Lock()
	defaultReg = r
	defaultMu.Unlock()
}

// ClearCached clears the given cache group on the default registry.
func ClearCached(group string) { Default().ClearCached(group) }

// ClearAllCached clears every cached-scoped factory on the default
// registry, sparing singletons.
func ClearAllCached() { Default().ClearAllCached() }

// Reset empties the default registry. Test-teardown escape hatch.
func Reset() { Default().Reset() }
