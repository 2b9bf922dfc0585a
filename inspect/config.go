package inspect

import (
	"github.com/skillsenselab/wirekit/validation"
)

// DefaultAddr is the diagnostics listen address used when none is
// configured.
const DefaultAddr = ":9440"

// Config controls the diagnostics server.
type Config struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Addr    string `yaml:"addr" mapstructure:"addr"`
}

// ApplyDefaults fills the listen address.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
}

// Validate checks the configuration. A disabled server is always
// valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	v := validation.New()
	v.Required("inspect.addr", c.Addr)
	v.HostPort("inspect.addr", c.Addr)
	return v.Validate()
}
