package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skillsenselab/wirekit/errors"
	"github.com/skillsenselab/wirekit/logger"
)

// Registry is a thread-safe mapping from identity keys to factories. The
// zero value is not usable; construct instances with New.
type Registry struct {
	id  string
	log *logger.Logger

	mu        sync.RWMutex
	factories map[Key]*factory
	observers []Observer
}

// Option configures a Registry.
type Option func(*Registry)

// WithObserver attaches observers that receive an Event per operation.
func WithObserver(obs ...Observer) Option {
	return func(r *Registry) {
		r.observers = append(r.observers, obs...)
	}
}

// WithLogger sets the logger used for registration and cache maintenance
// logs.
func WithLogger(log *logger.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		id:        uuid.NewString(),
		factories: make(map[Key]*factory),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get("registry")
	}
	return r
}

// ID returns the registry's unique identifier, used for log and event
// correlation.
func (r *Registry) ID() string { return r.id }

// AddObserver attaches an observer after construction.
func (r *Registry) AddObserver(obs Observer) {
	r.mu.Lock()
	r.observers = append(r.observers, obs)
	r.mu.Unlock()
}

// register inserts f at key, silently overwriting any prior registration.
// Last write wins; overwriting is a deliberate policy enabling test
// overrides and re-configuration.
func (r *Registry) register(key Key, f *factory) *Registration {
	r.mu.Lock()
	_, replaced := r.factories[key]
	r.factories[key] = f
	r.mu.Unlock()

	scope := f.currentScope()
	r.log.Debug("factory registered", map[string]interface{}{
		logger.FieldRegistry: r.id,
		logger.FieldKey:      key.String(),
		logger.FieldScope:    scope.String(),
	})
	r.emit(Event{Op: OpRegister, Key: key, Scope: scope, Replaced: replaced})
	return &Registration{registry: r, key: key, factory: f}
}

// resolve locates the factory at key and produces or reuses an instance.
// It does not emit events; callers wrap it to report the final outcome,
// including coercion failures at the typed boundary.
func (r *Registry) resolve(key Key) (v any, cacheHit bool, scope Scope, err error) {
	if !key.IsValid() {
		return nil, false, Scope{}, errors.InvalidKey("nil type identity")
	}
	r.mu.RLock()
	f, ok := r.factories[key]
	r.mu.RUnlock()
	if !ok {
		return nil, false, Scope{}, errors.NotRegistered(key.String())
	}
	v, cacheHit = f.resolve()
	return v, cacheHit, f.currentScope(), nil
}

// Lookup resolves the factory at key without type coercion. Most callers
// should prefer the generic Resolve, MustResolve, and TryResolve helpers.
func (r *Registry) Lookup(key Key) (any, error) {
	start := time.Now()
	v, hit, scope, err := r.resolve(key)
	if err != nil {
		r.emit(Event{Op: OpResolve, Key: key, Err: err, Duration: time.Since(start)})
		return nil, err
	}
	r.emit(Event{Op: OpResolve, Key: key, Scope: scope, CacheHit: hit, Duration: time.Since(start)})
	return v, nil
}

// Has reports whether a factory is registered at key.
func (r *Registry) Has(key Key) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[key]
	return ok
}

// Len returns the number of registered keys.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}

// ClearCached drops the cached instance of every factory whose scope is
// Cached with exactly the given group. Other cached groups and all
// singleton factories are unaffected. Clearing an unknown group is a
// no-op.
func (r *Registry) ClearCached(group string) {
	r.clearCaches(group, false)
}

// ClearAllCached drops the cached instance of every Cached-scoped factory
// regardless of group, still sparing singletons.
func (r *Registry) ClearAllCached() {
	r.clearCaches("", true)
}

func (r *Registry) clearCaches(group string, all bool) {
	r.mu.RLock()
	factories := make([]*factory, 0, len(r.factories))
	for _, f := range r.factories {
		factories = append(factories, f)
	}
	r.mu.RUnlock()

	cleared := 0
	for _, f := range factories {
		if f.clearCached(group, all) {
			cleared++
		}
	}

	r.log.Debug("caches cleared", map[string]interface{}{
		logger.FieldRegistry: r.id,
		logger.FieldGroup:    group,
		"cleared":            cleared,
	})
	r.emit(Event{Op: OpClearCache, Group: group, Count: cleared})
}

// Reset empties the mapping; every factory becomes unreachable. Intended
// for test teardown, not production use. Resolutions racing a reset may
// observe either the old or the new state.
func (r *Registry) Reset() {
	r.mu.Lock()
	dropped := len(r.factories)
	r.factories = make(map[Key]*factory)
	r.mu.Unlock()

	r.log.Debug("registry reset", map[string]interface{}{
		logger.FieldRegistry: r.id,
		"dropped":            dropped,
	})
	r.emit(Event{Op: OpReset, Count: dropped})
}

// Info describes one registration for introspection.
type Info struct {
	Key      Key
	Scope    Scope
	Cached   bool
	Resolves int64
}

// Keys returns all registered keys ordered by their rendered form.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	keys := make([]Key, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Snapshot returns introspection info for every registration, ordered by
// rendered key. Alias keys created via Implements appear as their own
// entries sharing the underlying factory's state.
func (r *Registry) Snapshot() []Info {
	r.mu.RLock()
	infos := make([]Info, 0, len(r.factories))
	for k, f := range r.factories {
		scope, cached := f.snapshot()
		infos = append(infos, Info{Key: k, Scope: scope, Cached: cached, Resolves: f.resolves.Load()})
	}
	r.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key.String() < infos[j].Key.String() })
	return infos
}

// Inspect returns introspection info for a single key.
func (r *Registry) Inspect(key Key) (Info, bool) {
	r.mu.RLock()
	f, ok := r.factories[key]
	r.mu.RUnlock()
	if !ok {
		return Info{}, false
	}
	scope, cached := f.snapshot()
	return Info{Key: key, Scope: scope, Cached: cached, Resolves: f.resolves.Load()}, true
}

// emit delivers ev to the attached observers outside any registry lock.
func (r *Registry) emit(ev Event) {
	r.mu.RLock()
	if len(r.observers) == 0 {
		r.mu.RUnlock()
		return
	}
	observers := make([]Observer, len(r.observers))
	copy(observers, r.observers)
	r.mu.RUnlock()

	ev.Registry = r.id
	for _, obs := range observers {
		obs.Observe(ev)
	}
}
