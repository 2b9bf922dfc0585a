// Package observability provides OpenTelemetry tracing and metrics for the
// wirekit runtime, plus registry observers that translate resolution
// events into telemetry.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "my.operation")
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("my-service"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("my-service"))
//
// Registry wiring:
//
//	r := registry.New(registry.WithObserver(
//	    observability.NewLogObserver(nil),
//	    observability.NewMetricsObserver(metrics),
//	    observability.NewTraceObserver(observability.Tracer("my-service")),
//	))
package observability
