package registry

import (
	"sync"
	"sync/atomic"
)

// factory is the type-erased slot stored at each key. It owns the creation
// closure, the cached instance when the scope caches, and the current
// scope. The registry map owns the factory; Registration handles share it
// to mutate the scope after registration.
type factory struct {
	create func() any

	mu       sync.RWMutex
	scope    Scope
	instance any
	cached   bool

	resolves atomic.Int64
}

func newFactory(create func() any) *factory {
	return &factory{create: create, scope: Transient}
}

// newValueFactory wraps an already-constructed instance: singleton scope
// with the cache pre-populated.
func newValueFactory(v any) *factory {
	return &factory{
		create:   func() any { return v },
		scope:    Singleton,
		instance: v,
		cached:   true,
	}
}

// resolve produces or reuses an instance per the current scope. For
// caching scopes the creation runs under the factory lock, so concurrent
// first access collapses to a single creation and losing callers return
// the winner's instance. Transient creations run unlocked.
func (f *factory) resolve() (v any, cacheHit bool) {
	f.resolves.Add(1)

	f.mu.RLock()
	if !f.scope.ShouldCache() {
		f.mu.RUnlock()
		return f.create(), false
	}
	if f.cached {
		v = f.instance
		f.mu.RUnlock()
		return v, true
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	// Re-check under the write lock: the cache may have been populated, or
	// the scope switched, while we waited.
	if !f.scope.ShouldCache() {
		return f.create(), false
	}
	if f.cached {
		return f.instance, true
	}
	v = f.create()
	f.instance = v
	f.cached = true
	return v, false
}

// setScope replaces the scope. It takes effect on the next resolution and
// neither clears nor populates the cache; an instance cached under the old
// scope stays in place, unconsulted, until a caching scope applies again.
func (f *factory) setScope(s Scope) {
	f.mu.Lock()
	f.scope = s
	f.mu.Unlock()
}

func (f *factory) currentScope() Scope {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.scope
}

// clearCached drops the cached instance if the factory is cached-scoped
// and, unless all is set, belongs to the given group. Singleton factories
// are never cleared. Reports whether an instance was actually dropped.
func (f *factory) clearCached(group string, all bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.scope.IsCached() {
		return false
	}
	if !all && f.scope.group != group {
		return false
	}
	if !f.cached {
		return false
	}
	f.instance = nil
	f.cached = false
	return true
}

// snapshot returns the current scope and cache status.
func (f *factory) snapshot() (Scope, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.scope, f.cached
}
