package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Outcome classifies how a request ended.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeFallback    Outcome = "fallback"
	OutcomeRejected    Outcome = "rejected"
	OutcomeFailure     Outcome = "failure"
	OutcomeDecodeError Outcome = "decode_error"
	OutcomeCancelled   Outcome = "cancelled"
)

// Instrumentation bundles the tracer and metrics a client reports to.
type Instrumentation struct {
	tracer  trace.Tracer
	metrics *Metrics
}

// NewInstrumentation builds instruments from the given providers.
func NewInstrumentation(tp trace.TracerProvider, mp metric.MeterProvider) (*Instrumentation, error) {
	metrics, err := NewMetrics(mp.Meter(InstrumentationName))
	if err != nil {
		return nil, err
	}
	return &Instrumentation{
		tracer:  tp.Tracer(InstrumentationName),
		metrics: metrics,
	}, nil
}

// Metrics returns the underlying instruments.
func (i *Instrumentation) Metrics() *Metrics {
	return i.metrics
}

// RequestObservation tracks one request from dispatch to completion.
type RequestObservation struct {
	client string
	method string
	start  time.Time
	span   trace.Span
	inst   *Instrumentation
}

// StartRequest opens a client span and marks the request in flight.
func (i *Instrumentation) StartRequest(ctx context.Context, client, method, url string, attrs ...attribute.KeyValue) (context.Context, *RequestObservation) {
	ctx, span := i.tracer.Start(ctx, SpanHTTPRequest,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", url),
			attribute.String(AttrClientName, client),
		),
		trace.WithAttributes(attrs...),
	)
	i.metrics.RecordRequestStart(ctx, client)
	return ctx, &RequestObservation{
		client: client,
		method: method,
		start:  time.Now(),
		span:   span,
		inst:   i,
	}
}

// End closes the span and records the request metrics. status is 0 when
// no response was received.
func (o *RequestObservation) End(ctx context.Context, status int, outcome Outcome, err error) {
	duration := time.Since(o.start)

	if status > 0 {
		o.span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	o.span.SetAttributes(
		attribute.String(AttrOutcome, string(outcome)),
		attribute.Bool(AttrFallback, outcome == OutcomeFallback),
	)
	if err != nil {
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, err.Error())
	}
	o.span.End()

	o.inst.metrics.RecordRequestEnd(ctx, o.client, o.method, outcome, status, duration)
}

// Span returns the request span.
func (o *RequestObservation) Span() trace.Span {
	return o.span
}
