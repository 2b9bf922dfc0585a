// Package config loads application configuration from YAML files and
// environment variables into typed structs.
//
// Loading resolves, in order: a YAML file for the service, an optional
// .env file, and process environment variables. Environment variables
// override file values. After unmarshalling, Load applies defaults and
// validates the result when the target implements the corresponding
// interfaces.
//
// A configuration type embeds Runtime to pick up the shared runtime
// block (service identity, logging, tracing, metrics, inspection):
//
//	type AppConfig struct {
//		config.Runtime `mapstructure:",squash"`
//
//		Database DatabaseConfig `yaml:"database" mapstructure:"database"`
//	}
//
//	var cfg AppConfig
//	if err := config.Load("billing", &cfg); err != nil {
//		log.Fatal(err)
//	}
//
// File resolution searches ./config/<name>.yaml, ./<name>.yaml and
// ./config.yaml (plus .yml variants). An explicit file set with
// WithConfigFile skips the search. Environment variables are bound
// automatically: LOGGING_LEVEL=debug sets logging.level, and with
// WithEnvPrefix("BILLING") only BILLING_-prefixed variables are
// considered, with the prefix stripped before binding.
package config
