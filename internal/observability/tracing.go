package observability

import (
	"context"
	"fmt"
	"io"
	"os"

	"clubhouse/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName    = "clubhouse-api"
	ServiceVersion = "1.0.0"
)

// Tracer is used by the HTTP middleware and StartSpan. It is a no-op
// until InitTracing installs a provider.
var Tracer trace.Tracer = otel.Tracer(ServiceName)

// Span attribute keys shared by the services.
var (
	AttrClubID      = attribute.Key("club.id")
	AttrRequestID   = attribute.Key("club_request.id")
	AttrRequestVerb = attribute.Key("club_request.action")
)

// InitTracing installs a tracer provider according to TRACING_* settings and
// returns its shutdown func. With tracing off it returns a no-op.
func InitTracing(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.TracingEnabled {
		return func(context.Context) error { return nil }, nil
	}
	exporter, err := newExporter(ctx, cfg, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("tracing exporter %q: %w", cfg.TracingExporter, err)
	}
	tp, err := newTracerProvider(ctx, cfg, exporter)
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	Tracer = tp.Tracer(ServiceName)
	return tp.Shutdown, nil
}

// newExporter picks stdout for local runs and OTLP/HTTP for collectors.
// Plain HTTP to the collector is only used outside production.
func newExporter(ctx context.Context, cfg *config.Config, stdout io.Writer) (sdktrace.SpanExporter, error) {
	switch cfg.TracingExporter {
	case "otlp":
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
		if !cfg.IsProduction() {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	case "", "stdout":
		return stdouttrace.New(stdouttrace.WithWriter(stdout), stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("unknown exporter, want stdout or otlp")
	}
}

func newTracerProvider(ctx context.Context, cfg *config.Config, exporter sdktrace.SpanExporter) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Env),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.TracingSamplerRatio)),
	), nil
}

// samplerFor keeps whole traces together by following the parent decision.
func samplerFor(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

// StartSpan opens an internal span around a service operation. Call the
// returned func with the operation's error to close it.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	ctx, span := Tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
