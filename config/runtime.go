package config

import (
	"github.com/skillsenselab/wirekit/errors"
	"github.com/skillsenselab/wirekit/inspect"
	"github.com/skillsenselab/wirekit/logger"
	"github.com/skillsenselab/wirekit/observability"
	"github.com/skillsenselab/wirekit/util"
	"github.com/skillsenselab/wirekit/validation"
)

// Environments accepted by Runtime.Validate.
var validEnvironments = []string{"development", "staging", "production", "test"}

// Runtime is the shared runtime block every wirekit application
// carries: service identity plus the logging, tracing, metrics and
// inspection sub-configurations. Application config types embed it
// with mapstructure:",squash" so the block sits at the top level of
// the YAML file.
type Runtime struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging logger.Config              `yaml:"logging" mapstructure:"logging"`
	Tracing observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
	Inspect inspect.Config             `yaml:"inspect" mapstructure:"inspect"`
}

// Provider is the interface application configuration types satisfy.
// Embedding Runtime promotes all three methods; types that need extra
// defaulting or validation override the method and call the embedded
// one themselves.
type Provider interface {
	GetRuntime() *Runtime
	ApplyDefaults()
	Validate() error
}

// GetRuntime returns the runtime block itself. Promotion through
// embedding is what lets any application config act as a Provider.
func (r *Runtime) GetRuntime() *Runtime { return r }

// ApplyDefaults fills unset fields and propagates the service identity
// into the tracing and metrics sub-configurations before their own
// defaults run.
func (r *Runtime) ApplyDefaults() {
	if r.Environment == "" {
		r.Environment = "development"
	}

	r.Logging.ApplyDefaults()
	if r.Debug && r.Logging.Level == "info" {
		r.Logging.Level = "debug"
	}

	r.Tracing.ServiceName = util.Coalesce(r.Tracing.ServiceName, r.Name)
	r.Tracing.ServiceVersion = util.Coalesce(r.Tracing.ServiceVersion, r.Version)
	r.Tracing.Environment = util.Coalesce(r.Tracing.Environment, r.Environment)
	r.Tracing.ApplyDefaults()

	r.Metrics.ServiceName = util.Coalesce(r.Metrics.ServiceName, r.Name)
	r.Metrics.ServiceVersion = util.Coalesce(r.Metrics.ServiceVersion, r.Version)
	r.Metrics.Environment = util.Coalesce(r.Metrics.Environment, r.Environment)
	r.Metrics.ApplyDefaults()

	r.Inspect.ApplyDefaults()
}

// Validate checks the runtime block and every sub-configuration.
func (r *Runtime) Validate() error {
	v := validation.New()
	v.Required("name", r.Name)
	v.OneOf("environment", r.Environment, validEnvironments)
	if err := v.Validate(); err != nil {
		return err
	}

	if err := r.Logging.Validate(); err != nil {
		return errors.ConfigInvalid("logging configuration invalid").WithCause(err)
	}
	if err := r.Tracing.Validate(); err != nil {
		return err
	}
	if err := r.Metrics.Validate(); err != nil {
		return err
	}
	return r.Inspect.Validate()
}
