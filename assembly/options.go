package assembly

import (
	"time"

	"github.com/skillsenselab/wirekit/config"
	"github.com/skillsenselab/wirekit/logger"
	"github.com/skillsenselab/wirekit/registry"
)

// Option configures the Assembler during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

// managedKey records a registration to start under lifecycle
// management, together with its start dependencies.
type managedKey struct {
	key  registry.Key
	deps []registry.Key
}

// appOptions collects all option values before applying to Assembler.
type appOptions struct {
	logger          *logger.Logger
	registry        *registry.Registry
	gracefulTimeout *time.Duration
	observers       []registry.Observer
	managed         []managedKey
	configOpts      []config.Option
}

// resolveOptions applies all options and returns the collected values.
func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is auto-initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithRegistry sets a pre-built registry for the application.
// If not set, a fresh registry named after the service is created.
// Configured observers are attached either way.
func WithRegistry(r *registry.Registry) Option {
	return func(o *appOptions) {
		o.registry = r
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithObserver attaches an additional registry observer after the
// built-in logging, metrics, and tracing observers.
func WithObserver(obs registry.Observer) Option {
	return func(o *appOptions) {
		o.observers = append(o.observers, obs)
	}
}

// WithManagedKey places a registration under lifecycle management with
// the given start dependencies. Equivalent to calling Manage before Run.
func WithManagedKey(key registry.Key, deps ...registry.Key) Option {
	return func(o *appOptions) {
		o.managed = append(o.managed, managedKey{key: key, deps: deps})
	}
}

// WithConfigOptions forwards loader options to config.Load, for example
// an explicit config file or a filesystem override in tests.
func WithConfigOptions(opts ...config.Option) Option {
	return func(o *appOptions) {
		o.configOpts = append(o.configOpts, opts...)
	}
}
