package registry

// Register registers a creation closure for T under the unnamed key with
// transient scope. Any prior registration at the key is overwritten.
//
// Example:
//
//	registry.Register[Clock](r, func() Clock { return SystemClock{} })
func Register[T any](r *Registry, create func() T) *Registration {
	return RegisterNamed[T](r, "", create)
}

// RegisterNamed registers a creation closure for T under the key (T, name).
func RegisterNamed[T any](r *Registry, name string, create func() T) *Registration {
	f := newFactory(func() any { return create() })
	return r.register(NamedKeyOf[T](name), f)
}

// RegisterValue registers an already-constructed instance for T. The
// registration gets singleton scope with the cache pre-populated, so every
// resolution returns v.
func RegisterValue[T any](r *Registry, v T) *Registration {
	return RegisterNamedValue[T](r, "", v)
}

// RegisterNamedValue registers an already-constructed instance under
// (T, name).
func RegisterNamedValue[T any](r *Registry, name string, v T) *Registration {
	return r.register(NamedKeyOf[T](name), newValueFactory(v))
}

// Provide registers a factory for T whose arguments are themselves
// resolved from the registry. The deps list gives the argument keys in the
// order the build function expects them. Arguments resolve lazily, when
// the factory first creates an instance, so they must be registered before
// first use; a missing argument is the fatal resolution fault.
//
// Example:
//
//	registry.Provide[*Server](r,
//	    []registry.Key{registry.KeyOf[Config](), registry.KeyOf[Logger]()},
//	    func(args []any) *Server {
//	        return NewServer(args[0].(Config), args[1].(Logger))
//	    })
func Provide[T any](r *Registry, deps []Key, build func(args []any) T) *Registration {
	return ProvideNamed[T](r, "", deps, build)
}

// ProvideNamed registers an argument-resolving factory under (T, name).
func ProvideNamed[T any](r *Registry, name string, deps []Key, build func(args []any) T) *Registration {
	argKeys := make([]Key, len(deps))
	copy(argKeys, deps)
	create := func() any {
		args := make([]any, len(argKeys))
		for i, dep := range argKeys {
			v, err := r.Lookup(dep)
			if err != nil {
				panic(err)
			}
			args[i] = v
		}
		return build(args)
	}
	return r.register(NamedKeyOf[T](name), newFactory(create))
}
