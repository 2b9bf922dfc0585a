// Package inspect serves runtime diagnostics for a wirekit
// application over HTTP.
//
// The server exposes read-only JSON endpoints:
//
//	GET /registrations   every registry key with scope and cache state
//	GET /health          aggregated managed-service health
//	GET /ready           readiness derived from the same health report
//	GET /version         build identity
//	GET /info            service identity, uptime and registry counts
//
// It is wired by the assembler when inspection is enabled in the
// runtime configuration, but can also run standalone:
//
//	srv := inspect.New(inspect.Config{Enabled: true, Addr: ":9440"}, reg,
//		inspect.WithServiceName("billing"),
//		inspect.WithHealthSource(mgr),
//	)
//	if err := srv.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer srv.Stop(context.Background())
package inspect
