// Package tracing exports one client span per benchmark operation, with the
// fixture logins it triggers nested underneath, to an OTLP collector.
package tracing

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// DefaultServiceName is reported when Run.Service is empty.
const DefaultServiceName = "lobsters-trawler"

const tracerName = "github.com/torosent/lobsters-trawler/internal/lobsters"

// Options select the collector and the sampling policy. Values are expected
// to be validated by the caller.
type Options struct {
	Endpoint   string // host:port or URL of the collector; empty disables export
	Protocol   string // "grpc" (default) or "http"
	Insecure   bool
	SampleRate float64 // fraction of operations traced, in [0, 1]
	Propagate  bool    // send traceparent to the target
}

// Run identifies one benchmark run on every exported span.
type Run struct {
	ID      string
	Service string
	Target  string
	Scale   float64
}

// Attributes returns the resource attributes describing r.
func (r Run) Attributes() []attribute.KeyValue {
	service := r.Service
	if service == "" {
		service = DefaultServiceName
	}
	attrs := []attribute.KeyValue{semconv.ServiceName(service)}
	if r.ID != "" {
		attrs = append(attrs, attribute.String("benchmark.run_id", r.ID))
	}
	if r.Target != "" {
		attrs = append(attrs, attribute.String("lobsters.target", r.Target))
	}
	if r.Scale > 0 {
		attrs = append(attrs, attribute.Float64("benchmark.scale", r.Scale))
	}
	return attrs
}

// Provider owns the SDK tracer provider of a run. A nil or disabled Provider
// hands out a Scope that records nothing.
type Provider struct {
	tp    *sdktrace.TracerProvider
	scope Scope
}

// Init starts exporting spans for run. With no endpoint it returns a
// disabled Provider.
func Init(ctx context.Context, opt Options, run Run) (*Provider, error) {
	if strings.TrimSpace(opt.Endpoint) == "" {
		return &Provider{}, nil
	}
	exporter, err := newExporter(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("tracing exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(semconv.SchemaURL, run.Attributes()...)),
		sdktrace.WithSampler(sdktrace.ParentBased(samplerFor(opt.SampleRate))),
	)
	return NewProvider(tp, opt.Propagate), nil
}

// NewProvider wraps an existing tracer provider.
func NewProvider(tp *sdktrace.TracerProvider, propagate bool) *Provider {
	return &Provider{tp: tp, scope: NewScope(tp.Tracer(tracerName), propagate)}
}

// Scope returns the tracer and propagation policy handed to each client.
func (p *Provider) Scope() Scope {
	if p == nil {
		return Scope{}
	}
	return p.scope
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

func samplerFor(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

func newExporter(ctx context.Context, opt Options) (sdktrace.SpanExporter, error) {
	endpoint := strings.TrimSpace(opt.Endpoint)
	isURL := strings.Contains(endpoint, "://")

	switch strings.ToLower(opt.Protocol) {
	case "", "grpc":
		var opts []otlptracegrpc.Option
		if isURL {
			opts = append(opts, otlptracegrpc.WithEndpointURL(endpoint))
		} else {
			opts = append(opts, otlptracegrpc.WithEndpoint(endpoint))
		}
		if opt.Insecure {
			opts = append(opts,
				otlptracegrpc.WithInsecure(),
				otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			)
		}
		return otlptracegrpc.New(ctx, opts...)
	case "http":
		var opts []otlptracehttp.Option
		if isURL {
			opts = append(opts, otlptracehttp.WithEndpointURL(endpoint))
		} else {
			opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
		}
		if opt.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", opt.Protocol)
	}
}
