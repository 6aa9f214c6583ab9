package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/torosent/lobsters-trawler/internal/workload"
)

// Scope is what one client needs to trace its operations. The zero value
// records nothing and injects nothing.
type Scope struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// NewScope returns a Scope starting spans on tracer. With propagate set,
// Inject writes W3C traceparent headers.
func NewScope(tracer trace.Tracer, propagate bool) Scope {
	s := Scope{tracer: tracer}
	if propagate {
		s.propagator = propagation.TraceContext{}
	}
	return s
}

func (s Scope) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// StartOperation starts the span of one benchmark operation.
func (s Scope) StartOperation(ctx context.Context, kind workload.Kind) (context.Context, trace.Span) {
	return s.start(ctx, "lobsters "+string(kind), attribute.String("lobsters.operation", string(kind)))
}

// StartLogin starts the span of a fixture login. It nests under the
// operation span carried by ctx.
func (s Scope) StartLogin(ctx context.Context, user workload.UserID) (context.Context, trace.Span) {
	return s.start(ctx, "lobsters login", attribute.Int64("lobsters.user", int64(user)))
}

// Inject writes the trace context of ctx into req when propagation is on.
func (s Scope) Inject(ctx context.Context, req *http.Request) {
	if s.propagator == nil || req == nil {
		return
	}
	s.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))
}

// End records the observed status and err on span and ends it. A zero
// status means no response arrived.
func End(span trace.Span, status int, err error) {
	if status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
