package registry

import "fmt"

type scopeKind int

const (
	kindTransient scopeKind = iota
	kindSingleton
	kindCached
)

// Scope is the lifecycle policy of a factory: it decides whether resolved
// instances are cached and how the cache is invalidated. Exactly one scope
// applies to a factory at any instant.
type Scope struct {
	kind  scopeKind
	group string
}

// Built-in scopes. Transient factories produce a fresh instance on every
// resolution. Singleton factories cache the first instance for the
// registry's lifetime and are never touched by cache clears.
var (
	Transient = Scope{kind: kindTransient}
	Singleton = Scope{kind: kindSingleton}
)

// Cached returns a scope that caches the first instance until explicitly
// invalidated. The group tag addresses group invalidation; an empty group
// is a valid ungrouped cached scope.
func Cached(group string) Scope {
	return Scope{kind: kindCached, group: group}
}

// ShouldCache reports whether resolutions under this scope retain the
// produced instance.
func (s Scope) ShouldCache() bool { return s.kind != kindTransient }

// IsTransient reports whether this is the transient scope.
func (s Scope) IsTransient() bool { return s.kind == kindTransient }

// IsSingleton reports whether this is the singleton scope.
func (s Scope) IsSingleton() bool { return s.kind == kindSingleton }

// IsCached reports whether this is a cached scope, in any group.
func (s Scope) IsCached() bool { return s.kind == kindCached }

// Group returns the cache group tag. It is empty for non-cached scopes.
func (s Scope) Group() string { return s.group }

// String renders the scope for diagnostics.
func (s Scope) String() string {
	switch s.kind {
	case kindSingleton:
		return "singleton"
	case kindCached:
		if s.group == "" {
			return "cached"
		}
		return fmt.Sprintf("cached(%s)", s.group)
	default:
		return "transient"
	}
}
