// Package observability wires OpenTelemetry tracing and metrics into the
// HTTP client.
//
// Exporters:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("restclient"))
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("restclient"))
//	defer mp.Shutdown(ctx)
//
// Per-request instrumentation:
//
//	inst, err := observability.NewInstrumentation(otel.GetTracerProvider(), otel.GetMeterProvider())
//	ctx, obs := inst.StartRequest(ctx, "orders", "GET", u)
//	defer obs.End(ctx, status, observability.OutcomeSuccess, err)
package observability
