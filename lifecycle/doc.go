// Package lifecycle starts and stops registry-managed services in
// dependency order and aggregates their health.
//
// A Manager is bound to a registry. Add declares which keys are
// managed and which other keys each one depends on:
//
//	mgr := lifecycle.NewManager(reg)
//	mgr.Add(registry.KeyOf[*Database]())
//	mgr.Add(registry.KeyOf[*Cache](), registry.KeyOf[*Database]())
//	mgr.Add(registry.KeyOf[*Server](), registry.KeyOf[*Database](), registry.KeyOf[*Cache]())
//
//	if err := mgr.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer mgr.Stop(context.Background())
//
// Start resolves each managed key through the registry and, when the
// instance implements Starter, calls Start. Services start level by
// level: everything a service depends on is running before the service
// itself starts. If any start fails, services already started are
// stopped again in reverse order and the error is returned.
//
// Stop walks the started services in reverse start order, giving each
// Stopper a bounded amount of time. Managed keys are usually
// registered as singletons; the manager stops the same instances it
// resolved at start.
//
// Services that implement HealthReporter contribute to HealthAll,
// which folds individual statuses into an overall Report.
package lifecycle
