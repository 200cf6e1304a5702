package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"clubhouse/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestInitTracingDisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), &config.Config{TracingEnabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewExporter(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	exp, err := newExporter(ctx, &config.Config{TracingExporter: "stdout"}, &buf)
	require.NoError(t, err)
	require.NoError(t, exp.Shutdown(ctx))

	exp, err = newExporter(ctx, &config.Config{TracingExporter: "otlp", OTLPEndpoint: "localhost:4318", Env: "development"}, &buf)
	require.NoError(t, err)
	require.NoError(t, exp.Shutdown(ctx))

	_, err = newExporter(ctx, &config.Config{TracingExporter: "zipkin"}, &buf)
	assert.Error(t, err)
}

func TestSamplerFollowsRatio(t *testing.T) {
	params := sdktrace.SamplingParameters{ParentContext: context.Background(), TraceID: trace.TraceID{1}, Name: "x"}

	assert.Equal(t, sdktrace.RecordAndSample, samplerFor(1).ShouldSample(params).Decision)
	assert.Equal(t, sdktrace.Drop, samplerFor(0).ShouldSample(params).Decision)
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestStartSpanRecordsErrors(t *testing.T) {
	ctx := context.Background()
	exporter := tracetest.NewInMemoryExporter()
	tp, err := newTracerProvider(ctx, &config.Config{Env: "test", TracingSamplerRatio: 1}, exporter)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	prev := Tracer
	Tracer = tp.Tracer(ServiceName)
	t.Cleanup(func() { Tracer = prev })

	_, finish := StartSpan(ctx, "ClubService.DeleteClub", AttrClubID.Int64(7))
	finish(errors.New("club is gone"))
	_, finish = StartSpan(ctx, "ClubRequestService.Resolve", AttrRequestVerb.String("approve"))
	finish(nil)
	require.NoError(t, tp.ForceFlush(ctx))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "ClubService.DeleteClub", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, AttrClubID.Int64(7))
	assert.Equal(t, codes.Unset, spans[1].Status.Code)
	name, ok := spans[1].Resource.Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, ServiceName, name.AsString())
}
