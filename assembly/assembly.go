package assembly

import (
	"github.com/skillsenselab/wirekit/registry"
)

// Assembly is a unit of registration work. Assemblies group related
// registrations (a feature, a subsystem, a shared infrastructure slice)
// so applications can compose them declaratively in New.
type Assembly interface {
	// Assemble registers constructors and values into the registry.
	// Returning an error aborts startup before any service starts.
	Assemble(r *registry.Registry) error
}

// AssembleFunc adapts a plain function to the Assembly interface.
type AssembleFunc func(r *registry.Registry) error

// Assemble calls f.
func (f AssembleFunc) Assemble(r *registry.Registry) error {
	return f(r)
}
