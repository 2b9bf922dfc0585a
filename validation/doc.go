// Package validation provides input validation for configuration and
// registration metadata.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Struct tag validation is
// recommended for configuration types.
//
// # Struct Tag Validation
//
//	type InspectConfig struct {
//	    Addr string `validate:"required,hostname_port"`
//	}
//	err := validation.Struct(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("level", cfg.Level)
//	v.OneOf("format", cfg.Format, []string{"json", "console"})
//	err := v.Validate()
package validation
