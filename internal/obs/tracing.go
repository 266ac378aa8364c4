package obs

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// DefaultServiceName is reported when TracingConfig leaves ServiceName empty.
const DefaultServiceName = "quotepay-api"

// TracingConfig controls tracer provider initialisation. Spans are exported
// over OTLP/HTTP; an empty Endpoint defers to the OTEL_EXPORTER_OTLP_* env.
type TracingConfig struct {
	ServiceName   string
	Environment   string
	Endpoint      string
	SamplingRatio float64
}

func (c TracingConfig) withDefaults() TracingConfig {
	c.ServiceName = strings.TrimSpace(c.ServiceName)
	if c.ServiceName == "" {
		c.ServiceName = DefaultServiceName
	}
	if strings.TrimSpace(c.Environment) == "" {
		c.Environment = "development"
	}
	if c.SamplingRatio <= 0 || c.SamplingRatio > 1 {
		c.SamplingRatio = 1
	}
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	return c
}

// InitTracer installs a batching OTLP tracer provider with a parent-based
// ratio sampler and returns its shutdown function.
func InitTracer(ctx context.Context, cfg TracingConfig) (func(context.Context) error, error) {
	cfg = cfg.withDefaults()
	var opts []otlptracehttp.Option
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRatio))),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}
