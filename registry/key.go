package registry

import (
	"fmt"
	"reflect"
)

// Key is the immutable identity of a registry slot: a service type plus an
// optional disambiguating name. Two keys address the same slot iff both the
// type and the name match exactly; an empty name matches only an empty name.
// There is no subtype-aware lookup: registering a concrete type does not
// make its interfaces resolvable unless they are declared via Implements.
type Key struct {
	Type reflect.Type
	Name string
}

// TypeOf returns the reflect.Type token for T. It works for interface
// types as well as concrete ones.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// KeyOf builds the unnamed key for T.
func KeyOf[T any]() Key {
	return Key{Type: TypeOf[T]()}
}

// NamedKeyOf builds the key for T qualified by name.
func NamedKeyOf[T any](name string) Key {
	return Key{Type: TypeOf[T](), Name: name}
}

// KeyFor builds a key from a runtime type token and an optional name.
func KeyFor(t reflect.Type, name string) Key {
	return Key{Type: t, Name: name}
}

// IsValid reports whether the key carries a type identity.
func (k Key) IsValid() bool { return k.Type != nil }

// String renders the key for diagnostics, e.g. "pkg.Logger" or
// "pkg.Logger[name=audit]".
func (k Key) String() string {
	if k.Type == nil {
		return "<invalid>"
	}
	if k.Name == "" {
		return k.Type.String()
	}
	return fmt.Sprintf("%s[name=%s]", k.Type.String(), k.Name)
}
