// Package assembly orchestrates application startup for wirekit
// services.
//
// It loads typed configuration, initializes logging and telemetry,
// builds the registry with observers attached, runs registration
// units, starts managed services in dependency order, and shuts
// everything down gracefully on OS signals.
//
// # Quick Start
//
//	type AppConfig struct {
//		config.Runtime `mapstructure:",squash"`
//	}
//
//	var cfg AppConfig
//	app, err := assembly.New("billing", "1.2.0", &cfg,
//		assembly.AssembleFunc(func(r *registry.Registry) error {
//			registry.Register(r, NewDatabase).Scope(registry.Singleton)
//			registry.Register(r, NewServer).Scope(registry.Singleton)
//			return nil
//		}),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	app.Manage(registry.KeyOf[*Database]())
//	app.Manage(registry.KeyOf[*Server](), registry.KeyOf[*Database]())
//
//	if err := app.Run(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//
// Run blocks until SIGINT/SIGTERM and then stops managed services in
// reverse order within the graceful timeout. RunTask executes a finite
// function with the same infrastructure for CLI tools and batch jobs.
package assembly
