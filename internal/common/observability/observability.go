package observability

import (
	"context"
	"errors"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"journal-classifier/internal/common/logger"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	itemCounter    otelmetric.Int64Counter
	batchDuration  otelmetric.Float64Histogram
}

type options struct {
	registerer     prom.Registerer
	jaegerEndpoint string
	spanProcessors []sdktrace.SpanProcessor
}

type Option func(*options)

// WithRegisterer sends otel metrics to reg instead of the default registry.
func WithRegisterer(reg prom.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithJaegerEndpoint exports spans to a Jaeger collector. Empty disables export.
func WithJaegerEndpoint(endpoint string) Option {
	return func(o *options) { o.jaegerEndpoint = endpoint }
}

// WithSpanProcessor registers an extra span processor, e.g. a recorder in tests.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) { o.spanProcessors = append(o.spanProcessors, sp) }
}

// New builds meter and tracer providers. Exporter failures are logged and the
// affected signal degrades to a no-op.
func New(serviceName string, log logger.Logger, opts ...Option) *Observability {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	o := &Observability{}
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	var promOpts []prometheus.Option
	if cfg.registerer != nil {
		promOpts = append(promOpts, prometheus.WithRegisterer(cfg.registerer))
	}
	exporter, err := prometheus.New(promOpts...)
	if err != nil {
		log.Warn("failed to create Prometheus exporter", map[string]interface{}{"error": err})
	} else {
		o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
		o.meter = o.meterProvider.Meter(serviceName)

		o.itemCounter, _ = o.meter.Int64Counter(
			"items_processed",
			otelmetric.WithDescription("Number of batch items resolved"),
		)
		o.batchDuration, _ = o.meter.Float64Histogram(
			"batch_duration",
			otelmetric.WithDescription("Batch run duration"),
			otelmetric.WithUnit("ms"),
		)
	}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.jaegerEndpoint != "" {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.jaegerEndpoint)))
		if err != nil {
			log.Warn("failed to create Jaeger exporter", map[string]interface{}{
				"endpoint": cfg.jaegerEndpoint,
				"error":    err,
			})
		} else {
			tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
		}
	}
	for _, sp := range cfg.spanProcessors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(sp))
	}
	o.tracerProvider = sdktrace.NewTracerProvider(tpOpts...)
	o.tracer = o.tracerProvider.Tracer(serviceName)

	return o
}

// NewNoop returns an instance that records nothing.
func NewNoop() *Observability {
	return &Observability{}
}

// StartSpan starts a span. On a no-op instance it returns a detached no-op
// span, so ending it never ends a parent span carried by ctx.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return ctx, noop.Span{}
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordItemProcessed(ctx context.Context, status string) {
	if o != nil && o.itemCounter != nil {
		o.itemCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordBatchDuration(ctx context.Context, duration time.Duration, items int) {
	if o != nil && o.batchDuration != nil {
		o.batchDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.Int("items", items),
		))
	}
}

// Shutdown flushes pending spans and metrics.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.tracerProvider != nil {
		errs = append(errs, o.tracerProvider.Shutdown(ctx))
	}
	if o.meterProvider != nil {
		errs = append(errs, o.meterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
