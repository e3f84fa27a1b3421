package observability

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTestInstrumentation(t *testing.T) (*Instrumentation, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	inst, err := NewInstrumentation(tp, mp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return inst, sr, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	s, ok := data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", data)
	}
	var total int64
	for _, dp := range s.DataPoints {
		total += dp.Value
	}
	return total
}

func TestDefaultConfigs(t *testing.T) {
	tc := DefaultTracerConfig("restclient")
	if tc.ServiceName != "restclient" || tc.Endpoint != "localhost:4318" || tc.SampleRate != 1.0 || !tc.Insecure {
		t.Errorf("unexpected tracer defaults: %+v", tc)
	}

	mc := DefaultMeterConfig("restclient")
	if mc.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", mc.Interval)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, sdktrace.AlwaysSample().Description()},
		{0, sdktrace.NeverSample().Description()},
		{0.5, sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.5)).Description()},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}

func TestNewMetrics_Noop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordRequestStart(ctx, "c")
	metrics.RecordRequestEnd(ctx, "c", "GET", OutcomeSuccess, 200, time.Millisecond)
	metrics.RecordBreakerTransition(ctx, "c", "closed", "open")
}

func TestStartRequest_RecordsSpanAndMetrics(t *testing.T) {
	inst, sr, reader := newTestInstrumentation(t)

	ctx, obs := inst.StartRequest(context.Background(), "orders", http.MethodGet, "http://x/orders/1",
		attribute.String(AttrMode, "sync"))
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		t.Fatal("expected a span in the returned context")
	}
	obs.End(ctx, 200, OutcomeSuccess, nil)

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != SpanHTTPRequest {
		t.Errorf("expected span %s, got %s", SpanHTTPRequest, span.Name())
	}
	if span.SpanKind() != trace.SpanKindClient {
		t.Errorf("expected client span, got %v", span.SpanKind())
	}

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs["http.request.method"].AsString() != "GET" {
		t.Errorf("expected method GET, got %v", attrs["http.request.method"])
	}
	if attrs["http.response.status_code"].AsInt64() != 200 {
		t.Errorf("expected status 200, got %v", attrs["http.response.status_code"])
	}
	if attrs[AttrMode].AsString() != "sync" {
		t.Errorf("expected mode sync, got %v", attrs[AttrMode])
	}

	data := collect(t, reader)
	if got := sumOf(t, data["http.client.request.total"]); got != 1 {
		t.Errorf("expected 1 request, got %d", got)
	}
	if got := sumOf(t, data["http.client.request.active"]); got != 0 {
		t.Errorf("expected 0 active, got %d", got)
	}
}

func TestEnd_ErrorAndFallback(t *testing.T) {
	inst, sr, reader := newTestInstrumentation(t)

	ctx, obs := inst.StartRequest(context.Background(), "orders", http.MethodGet, "http://x")
	obs.End(ctx, 0, OutcomeFallback, errors.New("connection refused"))

	span := sr.Ended()[0]
	if span.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", span.Status().Code)
	}
	if len(span.Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}

	data := collect(t, reader)
	if got := sumOf(t, data["http.client.fallback.total"]); got != 1 {
		t.Errorf("expected 1 fallback, got %d", got)
	}
}

func TestRecordBreakerTransition(t *testing.T) {
	inst, _, reader := newTestInstrumentation(t)

	inst.Metrics().RecordBreakerTransition(context.Background(), "orders", "closed", "open")

	data := collect(t, reader)
	if got := sumOf(t, data["http.client.breaker.transitions"]); got != 1 {
		t.Errorf("expected 1 transition, got %d", got)
	}
}

func TestInjectHeaders(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "parent")
	defer span.End()

	h := http.Header{}
	InjectHeaders(ctx, h)

	if h.Get("Traceparent") == "" {
		t.Error("expected a traceparent header")
	}
}
