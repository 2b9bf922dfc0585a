package registry

import "reflect"

// Registration is the fluent handle returned by a registration call. It
// holds a shared reference to the factory, so scope changes and alias keys
// configured through any handle affect the one underlying registration.
type Registration struct {
	registry *Registry
	key      Key
	factory  *factory
}

// Key returns the identity key this handle is bound to.
func (reg *Registration) Key() Key { return reg.key }

// Scope sets the factory's lifecycle scope in place. The change takes
// effect on the next resolution; a previously cached instance is neither
// cleared nor reused until a caching scope applies again. Returns the
// same handle for chaining.
func (reg *Registration) Scope(s Scope) *Registration {
	reg.factory.setScope(s)
	return reg
}

// Implements re-indexes the same factory under an additional key built
// from t and the original name, so one registration satisfies several
// declared identities with shared cache state. Returns a new handle bound
// to the alias key, preserving chainability.
func (reg *Registration) Implements(t reflect.Type) *Registration {
	alias := Key{Type: t, Name: reg.key.Name}
	return reg.registry.register(alias, reg.factory)
}

// As is the generic form of Implements: it declares that the registration
// also satisfies T.
//
//	h := registry.Register[*ConsoleLogger](r, newConsoleLogger)
//	registry.As[Logger](h).Scope(registry.Singleton)
func As[T any](reg *Registration) *Registration {
	return reg.Implements(TypeOf[T]())
}
