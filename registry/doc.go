// Package registry provides the wirekit dependency-injection runtime.
//
// A Registry maps an identity key (a Go type plus an optional name) to a
// factory that produces instances of the service, with a configurable
// lifecycle scope: transient (a fresh instance per resolution), singleton
// (one instance for the registry's lifetime), or cached (one instance until
// explicitly invalidated, individually or by group).
//
// # Registration
//
//	registry.Register[Clock](r, func() Clock { return SystemClock{} })
//	registry.Register[Logger](r, func() Logger { return NewConsoleLogger() }).
//	    Scope(registry.Singleton)
//
// # Resolution
//
//	log := registry.MustResolve[Logger](r)
//	clock, ok := registry.TryResolve[Clock](r)
//
// Resolution is safe for concurrent use. A caching factory invokes its
// creation closure at most once per cache window; concurrent first access
// collapses to a single creation and every caller observes the winner's
// instance. Creation closures must not resolve their own key, directly or
// through a chain of Provide dependencies, or the resolution deadlocks.
package registry
