package registry

import (
	"fmt"
	"time"

	"github.com/skillsenselab/wirekit/errors"
)

// MustResolve resolves the unnamed registration for T, panicking on a miss
// or a type mismatch. The panic value is a *errors.Error: a missing or
// mistyped core dependency is a programming defect to surface loudly and
// early.
//
// Example:
//
//	log := registry.MustResolve[Logger](r)
func MustResolve[T any](r *Registry) T {
	return MustResolveNamed[T](r, "")
}

// MustResolveNamed resolves the registration at (T, name), panicking on
// failure.
func MustResolveNamed[T any](r *Registry, name string) T {
	v, err := ResolveNamed[T](r, name)
	if err != nil {
		panic(err)
	}
	return v
}

// Resolve resolves the unnamed registration for T, returning an error on a
// miss or a type mismatch.
//
// Example:
//
//	store, err := registry.Resolve[SnapshotStore](r)
//	if err != nil {
//	    return fmt.Errorf("wiring snapshot store: %w", err)
//	}
func Resolve[T any](r *Registry) (T, error) {
	return ResolveNamed[T](r, "")
}

// ResolveNamed resolves the registration at (T, name).
func ResolveNamed[T any](r *Registry, name string) (T, error) {
	var zero T
	key := NamedKeyOf[T](name)
	start := time.Now()

	v, hit, scope, err := r.resolve(key)
	if err == nil {
		if typed, ok := v.(T); ok {
			r.emit(Event{Op: OpResolve, Key: key, Scope: scope, CacheHit: hit, Duration: time.Since(start)})
			return typed, nil
		}
		err = errors.TypeMismatch(key.String(), TypeOf[T]().String(), fmt.Sprintf("%T", v))
	}
	r.emit(Event{Op: OpResolve, Key: key, Err: err, Duration: time.Since(start)})
	return zero, err
}

// TryResolve resolves the unnamed registration for T, returning false when
// the key is absent or the value cannot be coerced. It never faults.
//
// Example:
//
//	if metrics, ok := registry.TryResolve[MetricsSink](r); ok {
//	    metrics.Record(ev)
//	}
func TryResolve[T any](r *Registry) (T, bool) {
	return TryResolveNamed[T](r, "")
}

// TryResolveNamed resolves the registration at (T, name) without faulting.
func TryResolveNamed[T any](r *Registry, name string) (T, bool) {
	v, err := ResolveNamed[T](r, name)
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}
